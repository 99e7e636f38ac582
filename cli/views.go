// cli/views.go
package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/latlens/internal/engine"
	"github.com/mwiater/latlens/internal/record"
	"github.com/mwiater/latlens/internal/store"
	"github.com/mwiater/latlens/internal/util"
)

const (
	defaultGridWidth = 100
	chartHeight      = 8
	gridHeightMin    = 5
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")).Padding(0, 1)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	statLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	barOverStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	barSelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

func gridColumns(width int) []table.Column {
	_ = width
	return []table.Column{
		{Title: "Timestamp (1)", Width: 17},
		{Title: "Model (2)", Width: 22},
		{Title: "Status (3)", Width: 9},
		{Title: "Latency (4)", Width: 11},
		{Title: "Tokens (5)", Width: 10},
		{Title: "Cost (6)", Width: 10},
		{Title: "Quality (7)", Width: 9},
	}
}

// resize redistributes vertical space between the chart, grid, and detail.
func (m *model) resize() {
	gridHeight := m.height - chartHeight - 10
	if gridHeight < gridHeightMin {
		gridHeight = gridHeightMin
	}
	m.grid.SetHeight(gridHeight)
	detailWidth := m.width - 4
	if detailWidth < 20 {
		detailWidth = 20
	}
	m.detail.Width = detailWidth
	m.detail.Height = m.height - 6
}

// sortedVisible returns the visible record indices in presentation order.
// The engine keeps visibleIndices in original order; sorting is applied here
// because it affects only how the grid reads, never which rows are counted.
func (m *model) sortedVisible() []int {
	indices := append([]int(nil), m.state.VisibleIndices...)
	spec := m.state.Sort
	if spec == nil {
		return indices
	}

	records := m.state.Records
	desc := spec.Dir == "desc"
	sort.SliceStable(indices, func(a, b int) bool {
		return recordBefore(records[indices[a]], records[indices[b]], spec.Key, desc)
	})
	return indices
}

// recordBefore orders two records on one key. Records missing the key sort
// after records that have it in either direction; only the value comparison
// flips for descending sort.
func recordBefore(a, b record.Record, key engine.SortKey, desc bool) bool {
	switch key {
	case engine.SortByTimestamp, engine.SortByModel, engine.SortByStatus:
		av, bv := stringKey(a, key), stringKey(b, key)
		switch {
		case av == bv:
			return false
		case av == "":
			return false
		case bv == "":
			return true
		case desc:
			return av > bv
		default:
			return av < bv
		}
	default:
		av, aok := numericKey(a, key)
		bv, bok := numericKey(b, key)
		switch {
		case !aok:
			return false
		case !bok:
			return true
		case av == bv:
			return false
		case desc:
			return av > bv
		default:
			return av < bv
		}
	}
}

func stringKey(r record.Record, key engine.SortKey) string {
	switch key {
	case engine.SortByTimestamp:
		return r.Timestamp
	case engine.SortByModel:
		return r.Model
	case engine.SortByStatus:
		return string(r.Status)
	}
	return ""
}

func numericKey(r record.Record, key engine.SortKey) (float64, bool) {
	switch key {
	case engine.SortByLatency:
		return r.Latency()
	case engine.SortByTotalTokens:
		if r.TotalTokens == nil {
			return 0, false
		}
		return *r.TotalTokens, true
	case engine.SortByCost:
		if r.CostUSD == nil {
			return 0, false
		}
		return *r.CostUSD, true
	case engine.SortByQuality:
		return r.Quality()
	}
	return 0, false
}

// refreshGrid rebuilds the table rows from the current visible set.
func (m *model) refreshGrid() {
	indices := m.sortedVisible()
	rows := make([]table.Row, 0, len(indices))
	for _, idx := range indices {
		r := m.state.Records[idx]
		rows = append(rows, table.Row{
			util.FormatTimestamp(r.Timestamp, m.state.Settings.TimeZone),
			orDash(util.TruncateRunes(r.Model, 22)),
			orDash(string(r.Status)),
			util.FormatNumber(r.ResponseTimeMs, 0),
			util.FormatNumber(r.TotalTokens, 0),
			util.FormatCost(r.CostUSD),
			qualityCell(r),
		})
	}
	m.grid.SetRows(rows)
}

func orDash(s string) string {
	if s == "" {
		return util.Placeholder
	}
	return s
}

func qualityCell(r record.Record) string {
	if q, ok := r.Quality(); ok {
		return util.FormatFloat(q, 2)
	}
	return util.Placeholder
}

// openDetail shows the full record behind a grid row.
func (m *model) openDetail(idx int) {
	if idx < 0 || idx >= len(m.state.Records) {
		return
	}
	m.state = store.Reduce(m.state, store.SelectRecord{Index: idx})
	m.detail.SetContent(renderDetail(m.state.Records[idx], m.state.Settings.TimeZone, m.detail.Width))
	m.detail.GotoTop()
	m.showDetail = true
}

// renderDetail lays out one record's fields plus its wrapped output text.
func renderDetail(r record.Record, timeZone string, width int) string {
	var b strings.Builder
	write := func(label, value string) {
		fmt.Fprintf(&b, "%-18s %s\n", label, value)
	}
	write("ID", orDash(r.ID))
	write("Timestamp", util.FormatTimestamp(r.Timestamp, timeZone))
	write("Model", orDash(r.Model))
	write("Status", orDash(string(r.Status)))
	write("Latency ms", util.FormatNumber(r.ResponseTimeMs, 0))
	write("Prompt tokens", util.FormatNumber(r.PromptTokens, 0))
	write("Completion tokens", util.FormatNumber(r.CompletionTokens, 0))
	write("Total tokens", util.FormatNumber(r.TotalTokens, 0))
	write("Cost", util.FormatCost(r.CostUSD))
	write("Temperature", util.FormatNumber(r.Temperature, 2))
	write("Max tokens", util.FormatNumber(r.MaxTokens, 0))
	write("Prompt template", orDash(r.PromptTemplate))
	if r.Evaluation != nil {
		write("Relevance", util.FormatNumber(r.Evaluation.RelevanceScore, 2))
		write("Factual accuracy", util.FormatNumber(r.Evaluation.FactualAccuracy, 2))
		write("Coherence", util.FormatNumber(r.Evaluation.CoherenceScore, 2))
		write("Quality", util.FormatNumber(r.Evaluation.ResponseQuality, 2))
	}
	if r.Error != nil {
		write("Error type", orDash(r.Error.Type))
		write("Error message", orDash(r.Error.Message))
	}
	if r.Output != "" {
		b.WriteString("\nOutput:\n")
		b.WriteString(util.WrapToWidth(r.Output, width))
		b.WriteString("\n")
	}
	return b.String()
}

// View renders the whole screen from store state.
func (m *model) View() string {
	if m.showDetail {
		header := titleStyle.Render("Record detail") + dimStyle.Render("  (esc to close, arrows to scroll)")
		return header + "\n\n" + m.detail.View()
	}

	var sections []string

	if m.state.Err != "" {
		sections = append(sections, errorStyle.Render("Error: "+m.state.Err)+dimStyle.Render("  (esc to dismiss)"))
	}

	title := titleStyle.Render(fmt.Sprintf("latlens — %s", m.source))
	status := fmt.Sprintf("%d records, %d visible", len(m.state.Records), len(m.state.VisibleIndices))
	if m.state.Computing && len(m.state.Records) > 0 {
		status += "  " + m.spinner.View() + " updating"
	}
	sections = append(sections, title+"  "+dimStyle.Render(status))

	sections = append(sections, m.renderControls())

	if len(m.state.HistBins) > 0 {
		sections = append(sections, m.renderHistogram())
	} else if len(m.state.Records) == 0 {
		sections = append(sections, dimStyle.Render("No data loaded."))
	}

	sections = append(sections, m.renderStats())

	if len(m.state.Records) > 0 {
		sections = append(sections, m.grid.View())
	}

	sections = append(sections, dimStyle.Render(
		"tab focus · 1-7 sort · m model · enter select/apply · + add range · c clear ranges · r recompute · q quit"))

	return strings.Join(sections, "\n\n")
}

func (m *model) renderControls() string {
	modelLabel := "Model: " + m.modelOptions[util.Min(m.modelIdx, len(m.modelOptions)-1)]
	parts := []string{
		m.decorate(focusSLO, m.sloInput.View()),
		m.decorate(focusBins, m.binsInput.View()),
		m.decorate(focusBinWidth, m.binWidthInput.View()),
		dimStyle.Render(modelLabel),
	}
	if len(m.state.Filters.LatencyRanges) > 0 {
		var ranges []string
		for _, rng := range m.state.Filters.LatencyRanges {
			ranges = append(ranges, fmt.Sprintf("%.0f–%.0f ms", rng.Min, rng.Max))
		}
		parts = append(parts, barSelStyle.Render("["+strings.Join(ranges, ", ")+"]"))
	}
	return strings.Join(parts, "   ")
}

func (m *model) decorate(field focusField, view string) string {
	if m.focus == field {
		return focusStyle.Render("▸") + view
	}
	return " " + view
}

// renderHistogram draws the bins as fixed-height columns, with bins beyond
// the SLO boundary in red and the current selection highlighted.
func (m *model) renderHistogram() string {
	bins := m.state.HistBins
	maxPct := 0.0
	for _, b := range bins {
		if b.Pct > maxPct {
			maxPct = b.Pct
		}
	}
	if maxPct == 0 {
		maxPct = 1
	}

	selLo, selHi := m.histCursor, m.histCursor
	if m.histAnchor >= 0 {
		if m.histAnchor < selLo {
			selLo = m.histAnchor
		}
		if m.histAnchor > selHi {
			selHi = m.histAnchor
		}
	}

	heights := make([]int, len(bins))
	for i, b := range bins {
		h := int(b.Pct / maxPct * chartHeight)
		if b.Count > 0 && h == 0 {
			h = 1
		}
		heights[i] = h
	}

	var rows []string
	for level := chartHeight; level >= 1; level-- {
		var row strings.Builder
		for i, b := range bins {
			glyph := " "
			if heights[i] >= level {
				glyph = "█"
			}
			switch {
			case m.focus == focusHistogram && i >= selLo && i <= selHi && glyph == "█":
				glyph = barSelStyle.Render(glyph)
			case b.StartMs >= m.state.Settings.SLOMs && glyph == "█":
				glyph = barOverStyle.Render(glyph)
			case glyph == "█":
				glyph = barStyle.Render(glyph)
			}
			row.WriteString(glyph)
		}
		rows = append(rows, row.String())
	}

	if m.focus == focusHistogram {
		var cursor strings.Builder
		for i := range bins {
			switch {
			case i == m.histCursor:
				cursor.WriteString(focusStyle.Render("^"))
			case i >= selLo && i <= selHi:
				cursor.WriteString("─")
			default:
				cursor.WriteString(" ")
			}
		}
		rows = append(rows, cursor.String())
	}

	legend := fmt.Sprintf("%.0f ms%s%.0f ms", bins[0].StartMs,
		strings.Repeat(" ", util.Max(1, len(bins)-12)), bins[len(bins)-1].EndMs)
	rows = append(rows, dimStyle.Render(legend))
	return strings.Join(rows, "\n")
}

func (m *model) renderStats() string {
	s := m.state.Stats
	return statLineStyle.Render(fmt.Sprintf(
		"n=%d  err=%.1f%%  p50=%s  p95=%s  p99=%s  >SLO=%s%%  cost=$%.4f  avg/1k=%s",
		s.N, s.ErrPct,
		util.FormatNumber(s.P50, 0), util.FormatNumber(s.P95, 0), util.FormatNumber(s.P99, 0),
		util.FormatNumber(s.OverSLOPct, 1), s.TotalCost, util.FormatNumber(s.AvgCostPer1k, 4)))
}
