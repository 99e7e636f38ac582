// internal/record/parse.go
package record

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mwiater/latlens/internal/logging"
)

// documentSchema pins the only accepted upload shape: an object with a
// "responses" array. Element contents are coerced leniently afterwards.
const documentSchema = `{
	"type": "object",
	"required": ["responses"],
	"properties": {
		"responses": {"type": "array"}
	}
}`

// ParseDocument validates the upload document shape and coerces each element
// into a Record. Malformed elements that are not JSON objects are dropped;
// malformed fields within an object are dropped to absent, never fatal.
func ParseDocument(data []byte) ([]Record, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid file: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("invalid file: expected an object with a 'responses' array")
	}

	var doc struct {
		Responses []json.RawMessage `json:"responses"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid file: %w", err)
	}

	records := make([]Record, 0, len(doc.Responses))
	skipped := 0
	for _, raw := range doc.Responses {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			skipped++
			continue
		}
		records = append(records, coerce(fields))
	}
	if skipped > 0 {
		logging.LogEvent("[PARSE] Dropped %d non-object elements of %d", skipped, len(doc.Responses))
	}
	return records, nil
}

// coerce maps one raw element onto a Record, dropping any field that does not
// have the expected type.
func coerce(fields map[string]any) Record {
	r := Record{
		ID:               asString(fields["id"]),
		Timestamp:        asString(fields["timestamp"]),
		ResponseTimeMs:   asNumber(fields["response_time_ms"]),
		Model:            asString(fields["model"]),
		Status:           asStatus(fields["status"]),
		PromptTokens:     asNumber(fields["prompt_tokens"]),
		CompletionTokens: asNumber(fields["completion_tokens"]),
		TotalTokens:      asNumber(fields["total_tokens"]),
		CostUSD:          asNumber(fields["cost_usd"]),
		Temperature:      asNumber(fields["temperature"]),
		MaxTokens:        asNumber(fields["max_tokens"]),
		PromptTemplate:   asString(fields["prompt_template"]),
		Output:           asString(fields["output"]),
	}

	if r.TotalTokens == nil {
		r.TotalTokens = deriveTotalTokens(r.PromptTokens, r.CompletionTokens)
	}

	if metrics, ok := fields["evaluation_metrics"].(map[string]any); ok {
		r.Evaluation = &Evaluation{
			RelevanceScore:  asNumber(metrics["relevance_score"]),
			FactualAccuracy: asNumber(metrics["factual_accuracy"]),
			CoherenceScore:  asNumber(metrics["coherence_score"]),
			ResponseQuality: asNumber(metrics["response_quality"]),
		}
	}

	switch errVal := fields["error"].(type) {
	case string:
		r.Error = &CallError{Message: errVal}
	case map[string]any:
		r.Error = &CallError{
			Type:    asString(errVal["type"]),
			Message: asString(errVal["message"]),
		}
	}

	return r
}

// deriveTotalTokens sums prompt and completion tokens when either is present.
// A zero sum stays absent so downstream aggregates do not read it as data.
func deriveTotalTokens(prompt, completion *float64) *float64 {
	if prompt == nil && completion == nil {
		return nil
	}
	var sum float64
	if prompt != nil {
		sum += *prompt
	}
	if completion != nil {
		sum += *completion
	}
	if sum == 0 {
		return nil
	}
	return &sum
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asNumber(v any) *float64 {
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

func asStatus(v any) Status {
	switch Status(asString(v)) {
	case StatusSuccess:
		return StatusSuccess
	case StatusError:
		return StatusError
	case StatusTimeout:
		return StatusTimeout
	default:
		return ""
	}
}
