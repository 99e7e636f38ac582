// internal/record/parse_test.go
package record

import (
	"strings"
	"testing"
)

func TestParseDocumentRejectsWrongShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "top-level array", data: `[{"id":"a"}]`},
		{name: "missing responses", data: `{"results":[]}`},
		{name: "responses not an array", data: `{"responses":{"id":"a"}}`},
		{name: "not json", data: `responses`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseDocument([]byte(tt.data)); err == nil {
				t.Fatalf("expected error for %s", tt.name)
			} else if !strings.Contains(err.Error(), "invalid file") {
				t.Fatalf("unexpected error message: %v", err)
			}
		})
	}
}

func TestParseDocumentEmptyResponses(t *testing.T) {
	t.Parallel()

	records, err := ParseDocument([]byte(`{"responses":[]}`))
	if err != nil {
		t.Fatalf("ParseDocument error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestParseDocumentDropsNonObjectElements(t *testing.T) {
	t.Parallel()

	data := `{"responses":[{"id":"a"}, 42, "nope", {"id":"b"}]}`
	records, err := ParseDocument([]byte(data))
	if err != nil {
		t.Fatalf("ParseDocument error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "a" || records[1].ID != "b" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestParseDocumentCoercion(t *testing.T) {
	t.Parallel()

	data := `{"responses":[{
		"id": "r1",
		"timestamp": "2024-03-01T10:00:00Z",
		"response_time_ms": 850,
		"model": "gpt-4",
		"status": "success",
		"prompt_tokens": 100,
		"completion_tokens": 50,
		"cost_usd": 0.012,
		"evaluation_metrics": {"response_quality": 8.5}
	}]}`

	records, err := ParseDocument([]byte(data))
	if err != nil {
		t.Fatalf("ParseDocument error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]

	if r.ID != "r1" || r.Model != "gpt-4" || r.Status != StatusSuccess {
		t.Fatalf("scalar fields: %+v", r)
	}
	if lat, ok := r.Latency(); !ok || lat != 850 {
		t.Fatalf("Latency=(%v,%v) want (850,true)", lat, ok)
	}
	// total_tokens absent in the upload is derived from the parts.
	if r.TotalTokens == nil || *r.TotalTokens != 150 {
		t.Fatalf("TotalTokens=%v want 150", r.TotalTokens)
	}
	if q, ok := r.Quality(); !ok || q != 8.5 {
		t.Fatalf("Quality=(%v,%v) want (8.5,true)", q, ok)
	}
}

func TestParseDocumentMalformedFieldsDropToAbsent(t *testing.T) {
	t.Parallel()

	data := `{"responses":[{
		"id": 42,
		"response_time_ms": "fast",
		"status": "exploded",
		"prompt_tokens": 0,
		"completion_tokens": 0,
		"model": ["gpt-4"]
	}]}`

	records, err := ParseDocument([]byte(data))
	if err != nil {
		t.Fatalf("ParseDocument error: %v", err)
	}
	r := records[0]

	if r.ID != "" {
		t.Fatalf("numeric id should drop to absent, got %q", r.ID)
	}
	if r.ResponseTimeMs != nil {
		t.Fatalf("string latency should drop to absent, got %v", *r.ResponseTimeMs)
	}
	if r.Status != "" {
		t.Fatalf("unknown status should drop to absent, got %q", r.Status)
	}
	if r.Model != "" {
		t.Fatalf("array model should drop to absent, got %q", r.Model)
	}
	// Token parts summing to zero never materialize a total.
	if r.TotalTokens != nil {
		t.Fatalf("zero-sum total tokens should stay absent, got %v", *r.TotalTokens)
	}
}

func TestParseDocumentErrorShapes(t *testing.T) {
	t.Parallel()

	data := `{"responses":[
		{"id":"a","error":"connection reset"},
		{"id":"b","error":{"type":"timeout","message":"deadline exceeded"}},
		{"id":"c","error":42}
	]}`

	records, err := ParseDocument([]byte(data))
	if err != nil {
		t.Fatalf("ParseDocument error: %v", err)
	}

	if records[0].Error == nil || records[0].Error.Message != "connection reset" || records[0].Error.Type != "" {
		t.Fatalf("string error: %+v", records[0].Error)
	}
	if records[1].Error == nil || records[1].Error.Type != "timeout" || records[1].Error.Message != "deadline exceeded" {
		t.Fatalf("object error: %+v", records[1].Error)
	}
	if records[2].Error != nil {
		t.Fatalf("numeric error should drop to absent, got %+v", records[2].Error)
	}
}
