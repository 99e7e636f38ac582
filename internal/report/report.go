// internal/report/report.go
// Package report renders a one-shot analysis as JSON and as a standalone
// HTML page.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/mwiater/latlens/internal/engine"
	"github.com/mwiater/latlens/internal/record"
	"github.com/mwiater/latlens/internal/stats"
)

// Analysis bundles everything a report consumer needs from one computation.
type Analysis struct {
	Source         string          `json:"source"`
	GeneratedAtUTC time.Time       `json:"generated_at_utc"`
	Settings       engine.Settings `json:"settings"`
	Snapshot       engine.Snapshot `json:"snapshot"`
	PerModel       []ModelSummary  `json:"per_model,omitempty"`
}

// ModelSummary is the per-model breakdown shown beneath the aggregate stats.
type ModelSummary struct {
	Model           string   `json:"model"`
	Count           int      `json:"count"`
	MedianLatencyMs *float64 `json:"median_latency_ms,omitempty"`
	ErrPct          float64  `json:"err_pct"`
}

// Build assembles an analysis from a record set and the snapshot computed
// over it.
func Build(source string, records []record.Record, snapshot engine.Snapshot, settings engine.Settings) Analysis {
	return Analysis{
		Source:         source,
		GeneratedAtUTC: time.Now().UTC(),
		Settings:       settings,
		Snapshot:       snapshot,
		PerModel:       summarizeModels(records),
	}
}

// summarizeModels rolls the full record set up by model name, in first-seen
// order. Records with no model are grouped under the placeholder name.
func summarizeModels(records []record.Record) []ModelSummary {
	order := make([]string, 0)
	grouped := make(map[string][]record.Record)
	for _, r := range records {
		name := r.Model
		if name == "" {
			name = "(unknown)"
		}
		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], r)
	}

	summaries := make([]ModelSummary, 0, len(order))
	for _, name := range order {
		group := grouped[name]
		latencies := make([]float64, 0, len(group))
		errorCount := 0
		for _, r := range group {
			if lat, ok := r.Latency(); ok {
				latencies = append(latencies, lat)
			}
			if r.Status == record.StatusError {
				errorCount++
			}
		}
		summary := ModelSummary{
			Model:  name,
			Count:  len(group),
			ErrPct: stats.ErrRatioPct(errorCount, len(group)),
		}
		if median, ok := stats.Quantile(latencies, 0.5); ok {
			summary.MedianLatencyMs = &median
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// WriteJSON writes the analysis as indented JSON, creating parent
// directories as needed.
func WriteJSON(path string, analysis Analysis) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create directory for %s: %w", path, err)
		}
	}

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal analysis JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write analysis JSON %s: %w", path, err)
	}
	return nil
}

type reportData struct {
	Title        string
	AnalysisJSON template.JS
}

// GenerateHTML renders a self-contained HTML page with the analysis payload
// inlined; the page draws the histogram client-side from that payload.
func GenerateHTML(analysis Analysis) (string, error) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return "", err
	}

	data := reportData{
		Title:        "latlens: Latency Distribution Report",
		AnalysisJSON: template.JS(payload),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var reportTemplate = template.Must(template.New("latency-report").Parse(reportTemplateHTML))

const reportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 960px; color: #1e293b; }
  h1 { font-size: 1.4rem; }
  .stats { display: flex; flex-wrap: wrap; gap: 1rem; margin: 1rem 0; }
  .stat { border: 1px solid #e2e8f0; border-radius: 8px; padding: .6rem 1rem; }
  .stat .label { font-size: .75rem; color: #64748b; }
  .stat .value { font-size: 1.1rem; font-weight: 600; }
  .bar-row { display: flex; align-items: center; gap: .5rem; font-size: .75rem; }
  .bar-row .range { width: 11rem; text-align: right; color: #64748b; }
  .bar-row .bar { background: #3b82f6; height: .8rem; border-radius: 2px; }
  .bar-row.over .bar { background: #ef4444; }
  table { border-collapse: collapse; margin-top: 1.5rem; font-size: .85rem; }
  th, td { border: 1px solid #e2e8f0; padding: .3rem .7rem; text-align: right; }
  th:first-child, td:first-child { text-align: left; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="stats" id="stats"></div>
<div id="histogram"></div>
<table id="models"><thead><tr><th>Model</th><th>Calls</th><th>Median ms</th><th>Err %</th></tr></thead><tbody></tbody></table>
<script>
const analysis = {{.AnalysisJSON}};
const fmt = (v, d) => (v === undefined || v === null) ? "—" : v.toFixed(d);
const stats = analysis.snapshot.stats;
const cards = [
  ["n", stats.n], ["err %", fmt(stats.errPct, 1)],
  ["p50 ms", fmt(stats.p50, 0)], ["p95 ms", fmt(stats.p95, 0)], ["p99 ms", fmt(stats.p99, 0)],
  ["over SLO %", fmt(stats.overSloPct, 1)],
  ["total cost $", fmt(stats.totalCost, 4)], ["avg $/1k", fmt(stats.avgCostPer1k, 4)]
];
document.getElementById("stats").innerHTML = cards
  .map(([label, value]) => '<div class="stat"><div class="label">' + label + '</div><div class="value">' + value + "</div></div>")
  .join("");
const bins = analysis.snapshot.histBins || [];
const maxPct = Math.max(1, ...bins.map(b => b.pct));
document.getElementById("histogram").innerHTML = bins
  .map(b => '<div class="bar-row' + (b.startMs > analysis.settings.sloMs ? " over" : "") + '">' +
    '<span class="range">' + b.startMs.toFixed(0) + "–" + b.endMs.toFixed(0) + " ms</span>" +
    '<div class="bar" style="width:' + (b.pct / maxPct * 70) + '%"></div>' +
    "<span>" + b.count + "</span></div>")
  .join("");
document.querySelector("#models tbody").innerHTML = (analysis.per_model || [])
  .map(m => "<tr><td>" + m.model + "</td><td>" + m.count + "</td><td>" +
    fmt(m.median_latency_ms, 0) + "</td><td>" + fmt(m.err_pct, 1) + "</td></tr>")
  .join("");
</script>
</body>
</html>
`
