// internal/report/report_test.go
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/latlens/internal/engine"
	"github.com/mwiater/latlens/internal/record"
)

func ptr(v float64) *float64 { return &v }

func sampleRecords() []record.Record {
	return []record.Record{
		{Model: "gpt-4", Status: record.StatusSuccess, ResponseTimeMs: ptr(400)},
		{Model: "gpt-4", Status: record.StatusError, ResponseTimeMs: ptr(800)},
		{Model: "claude-3", Status: record.StatusSuccess, ResponseTimeMs: ptr(600)},
		{Status: record.StatusSuccess},
	}
}

func TestSummarizeModels(t *testing.T) {
	t.Parallel()

	summaries := summarizeModels(sampleRecords())
	if len(summaries) != 3 {
		t.Fatalf("expected 3 model groups, got %d", len(summaries))
	}

	// First-seen order.
	if summaries[0].Model != "gpt-4" || summaries[1].Model != "claude-3" || summaries[2].Model != "(unknown)" {
		t.Fatalf("unexpected group order: %+v", summaries)
	}

	gpt := summaries[0]
	if gpt.Count != 2 || gpt.ErrPct != 50 {
		t.Fatalf("gpt-4 summary: %+v", gpt)
	}
	if gpt.MedianLatencyMs == nil || *gpt.MedianLatencyMs != 600 {
		t.Fatalf("gpt-4 median=%v want 600", gpt.MedianLatencyMs)
	}

	// The unknown group has no latency sample, so its median stays absent.
	unknown := summaries[2]
	if unknown.Count != 1 || unknown.MedianLatencyMs != nil {
		t.Fatalf("unknown summary: %+v", unknown)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	analysis := Build("calls.json", sampleRecords(), engine.Snapshot{Seq: 1}, engine.DefaultSettings())
	path := filepath.Join(t.TempDir(), "nested", "analysis.json")

	if err := WriteJSON(path, analysis); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read analysis: %v", err)
	}
	var decoded Analysis
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if decoded.Source != "calls.json" || len(decoded.PerModel) != 3 {
		t.Fatalf("unexpected decoded analysis: %+v", decoded)
	}
}

func TestGenerateHTML(t *testing.T) {
	t.Parallel()

	analysis := Build("calls.json", sampleRecords(), engine.Snapshot{Seq: 1}, engine.DefaultSettings())
	html, err := GenerateHTML(analysis)
	if err != nil {
		t.Fatalf("GenerateHTML error: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"latlens: Latency Distribution Report",
		`"per_model"`,
		"gpt-4",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered page missing %q", want)
		}
	}
}
