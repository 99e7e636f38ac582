// internal/record/record.go
// Package record defines the call-log record model and the tolerant parsing
// of uploaded JSON documents into it.
package record

// Status is the outcome of a logged LLM call.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// Record is a single logged LLM call. Every field is optional; absent numeric
// fields stay nil and are excluded from aggregates rather than read as zero.
type Record struct {
	ID               string      `json:"id,omitempty"`
	Timestamp        string      `json:"timestamp,omitempty"`
	ResponseTimeMs   *float64    `json:"response_time_ms,omitempty"`
	Model            string      `json:"model,omitempty"`
	Status           Status      `json:"status,omitempty"`
	PromptTokens     *float64    `json:"prompt_tokens,omitempty"`
	CompletionTokens *float64    `json:"completion_tokens,omitempty"`
	TotalTokens      *float64    `json:"total_tokens,omitempty"`
	CostUSD          *float64    `json:"cost_usd,omitempty"`
	Temperature      *float64    `json:"temperature,omitempty"`
	MaxTokens        *float64    `json:"max_tokens,omitempty"`
	PromptTemplate   string      `json:"prompt_template,omitempty"`
	Output           string      `json:"output,omitempty"`
	Evaluation       *Evaluation `json:"evaluation_metrics,omitempty"`
	Error            *CallError  `json:"error,omitempty"`
}

// Evaluation carries optional per-call quality scores. Scales are not
// enforced; scores are compared as-is.
type Evaluation struct {
	RelevanceScore  *float64 `json:"relevance_score,omitempty"`
	FactualAccuracy *float64 `json:"factual_accuracy,omitempty"`
	CoherenceScore  *float64 `json:"coherence_score,omitempty"`
	ResponseQuality *float64 `json:"response_quality,omitempty"`
}

// CallError is the normalized error payload of a failed call. Uploads may
// carry either a bare string (mapped to Message) or an object.
type CallError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

// Latency returns the call latency and whether it is present.
func (r Record) Latency() (float64, bool) {
	if r.ResponseTimeMs == nil {
		return 0, false
	}
	return *r.ResponseTimeMs, true
}

// Quality returns the response_quality score and whether it is present.
func (r Record) Quality() (float64, bool) {
	if r.Evaluation == nil || r.Evaluation.ResponseQuality == nil {
		return 0, false
	}
	return *r.Evaluation.ResponseQuality, true
}
