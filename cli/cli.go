// cli/cli.go
// Package cli provides the interactive terminal view for latlens: the latency
// histogram with SLO/percentile overlays, live-tunable binning and filters,
// and the sortable record grid. All derived data comes from the analytics
// engine through the bridge; this package only renders store state and
// dispatches actions.
package cli

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/latlens/internal/appconfig"
	"github.com/mwiater/latlens/internal/bridge"
	"github.com/mwiater/latlens/internal/engine"
	"github.com/mwiater/latlens/internal/filter"
	"github.com/mwiater/latlens/internal/record"
	"github.com/mwiater/latlens/internal/store"
)

// Config represents the shared application configuration for the CLI.
type Config = appconfig.Config

// focusField tracks which control currently receives key input.
type focusField int

const (
	focusGrid focusField = iota
	focusSLO
	focusBins
	focusBinWidth
	focusHistogram
)

// engineMsg carries one engine result into the Bubble Tea update loop.
type engineMsg struct {
	out engine.Outbound
}

// model is the main application model for the Bubble Tea UI.
type model struct {
	cfg    *Config
	source string

	state  store.State
	bridge *bridge.Bridge

	grid          table.Model
	sloInput      textinput.Model
	binsInput     textinput.Model
	binWidthInput textinput.Model
	spinner       spinner.Model
	detail        viewport.Model

	focus         focusField
	showDetail    bool
	modelOptions  []string
	modelIdx      int
	histCursor    int
	histAnchor    int // -1 when no selection is being extended
	width, height int
}

// newModel creates and initializes a model over a parsed record set.
func newModel(cfg *Config, source string, records []record.Record) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	settings := cfg.Settings()

	slo := textinput.New()
	slo.Prompt = "SLO ms: "
	slo.CharLimit = 8
	slo.Width = 8
	slo.SetValue(strconv.FormatFloat(settings.SLOMs, 'f', -1, 64))

	bins := textinput.New()
	bins.Prompt = "Bins: "
	bins.CharLimit = 3
	bins.Width = 5
	bins.SetValue(strconv.Itoa(settings.DesiredBins))

	binWidth := textinput.New()
	binWidth.Prompt = "Width ms: "
	binWidth.Placeholder = "auto"
	binWidth.CharLimit = 8
	binWidth.Width = 8

	grid := table.New(
		table.WithColumns(gridColumns(defaultGridWidth)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	grid.SetStyles(styles)

	state := store.Initial()
	state.Settings = settings
	state = store.Reduce(state, store.LoadRecords{Records: records})

	return &model{
		cfg:          cfg,
		source:       source,
		state:        state,
		grid:         grid,
		sloInput:     slo,
		binsInput:    bins,
		binWidthInput: binWidth,
		spinner:      s,
		detail:       viewport.New(80, 16),
		modelOptions: modelOptions(records),
		histAnchor:   -1,
	}
}

// modelOptions collects the distinct model names for the cycling filter,
// "All" first.
func modelOptions(records []record.Record) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range records {
		if r.Model == "" {
			continue
		}
		if _, ok := seen[r.Model]; !ok {
			seen[r.Model] = struct{}{}
			names = append(names, r.Model)
		}
	}
	sort.Strings(names)
	return append([]string{"All"}, names...)
}

// Init sends the initial settings and record set to the engine.
func (m *model) Init() tea.Cmd {
	m.bridge.SendSettings(m.state.Settings)
	m.bridge.SendRecords(m.state.Records)
	m.state = store.Reduce(m.state, store.SetComputing{Computing: true})
	return m.spinner.Tick
}

// Update is the Bubble Tea message handler.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case engineMsg:
		return m.handleEngine(msg.out)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleEngine folds one engine result into the store and refreshes the grid.
func (m *model) handleEngine(out engine.Outbound) (tea.Model, tea.Cmd) {
	switch result := out.(type) {
	case engine.ResultsMsg:
		m.state = store.Reduce(m.state, store.ApplyResults{Snapshot: result.Snapshot})
	case engine.ErrorMsg:
		m.state = store.Reduce(m.state, store.EngineError{Message: result.Message})
	}
	m.state = store.Reduce(m.state, store.SetComputing{Computing: false})
	m.clampHistCursor()
	m.refreshGrid()
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showDetail {
		switch key {
		case "esc", "q", "enter":
			m.showDetail = false
			m.state = store.Reduce(m.state, store.SelectRecord{Index: -1})
			return m, nil
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	if input := m.focusedInput(); input != nil {
		switch key {
		case "enter":
			m.commitInput()
			return m, nil
		case "esc":
			m.revertInput()
			m.setFocus(focusGrid)
			return m, nil
		case "tab":
			m.commitInput()
			m.cycleFocus()
			return m, nil
		}
		var cmd tea.Cmd
		*input, cmd = input.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "esc":
		if m.state.Err != "" {
			m.state = store.Reduce(m.state, store.ClearError{})
			return m, nil
		}
	case "tab":
		m.cycleFocus()
		return m, nil
	case "m":
		m.cycleModelFilter()
		return m, nil
	case "r":
		m.compute(func() { m.bridge.Recompute() })
		return m, nil
	case "c":
		m.applyLatencyRanges(nil)
		return m, nil
	}

	switch m.focus {
	case focusHistogram:
		return m.handleHistogramKey(key)
	case focusGrid:
		return m.handleGridKey(msg, key)
	}
	return m, nil
}

func (m *model) handleHistogramKey(key string) (tea.Model, tea.Cmd) {
	bins := m.state.HistBins
	if len(bins) == 0 {
		return m, nil
	}
	switch key {
	case "left", "h":
		m.histCursor--
		m.histAnchor = -1
	case "right", "l":
		m.histCursor++
		m.histAnchor = -1
	case "shift+left", "H":
		if m.histAnchor < 0 {
			m.histAnchor = m.histCursor
		}
		m.histCursor--
	case "shift+right", "L":
		if m.histAnchor < 0 {
			m.histAnchor = m.histCursor
		}
		m.histCursor++
	case "enter":
		m.applyLatencyRanges([]filter.Range{m.selectedRange()})
	case "+":
		ranges := append(append([]filter.Range(nil), m.state.Filters.LatencyRanges...), m.selectedRange())
		m.applyLatencyRanges(ranges)
	}
	m.clampHistCursor()
	return m, nil
}

func (m *model) handleGridKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	if col, ok := sortKeyFor(key); ok {
		m.toggleSort(col)
		return m, nil
	}
	if key == "enter" {
		rows := m.sortedVisible()
		cursor := m.grid.Cursor()
		if cursor >= 0 && cursor < len(rows) {
			m.openDetail(rows[cursor])
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

// selectedRange is the inclusive latency interval covered by the current
// histogram selection (anchor..cursor, either order).
func (m *model) selectedRange() filter.Range {
	bins := m.state.HistBins
	lo, hi := m.histCursor, m.histCursor
	if m.histAnchor >= 0 {
		if m.histAnchor < lo {
			lo = m.histAnchor
		}
		if m.histAnchor > hi {
			hi = m.histAnchor
		}
	}
	return filter.Range{Min: bins[lo].StartMs, Max: bins[hi].EndMs}
}

func (m *model) applyLatencyRanges(ranges []filter.Range) {
	if ranges == nil {
		ranges = []filter.Range{}
	}
	m.state = store.Reduce(m.state, store.PatchFilters{LatencyRanges: ranges})
	m.histAnchor = -1
	m.compute(func() { m.bridge.SendFilters(m.state.Filters) })
}

func (m *model) cycleModelFilter() {
	if len(m.modelOptions) == 0 {
		return
	}
	m.modelIdx = (m.modelIdx + 1) % len(m.modelOptions)
	models := []string{}
	if m.modelIdx > 0 {
		models = []string{m.modelOptions[m.modelIdx]}
	}
	m.state = store.Reduce(m.state, store.PatchFilters{Models: models})
	m.compute(func() { m.bridge.SendFilters(m.state.Filters) })
}

// sortKeyFor maps the numeric hotkeys to grid columns.
func sortKeyFor(key string) (engine.SortKey, bool) {
	switch key {
	case "1":
		return engine.SortByTimestamp, true
	case "2":
		return engine.SortByModel, true
	case "3":
		return engine.SortByStatus, true
	case "4":
		return engine.SortByLatency, true
	case "5":
		return engine.SortByTotalTokens, true
	case "6":
		return engine.SortByCost, true
	case "7":
		return engine.SortByQuality, true
	}
	return "", false
}

// nextSort cycles asc -> desc -> off for the chosen column; picking another
// column starts it ascending.
func nextSort(current *engine.SortSpec, key engine.SortKey) *engine.SortSpec {
	switch {
	case current == nil || current.Key != key:
		return &engine.SortSpec{Key: key, Dir: "asc"}
	case current.Dir == "asc":
		return &engine.SortSpec{Key: key, Dir: "desc"}
	default:
		return nil
	}
}

func (m *model) toggleSort(key engine.SortKey) {
	next := nextSort(m.state.Sort, key)
	m.state = store.Reduce(m.state, store.SetSort{Sort: next})
	m.compute(func() { m.bridge.SendSort(next) })
	m.refreshGrid()
}

// compute dispatches the computing flag and fires one bridge send.
func (m *model) compute(send func()) {
	m.state = store.Reduce(m.state, store.SetComputing{Computing: true})
	send()
}

func (m *model) focusedInput() *textinput.Model {
	switch m.focus {
	case focusSLO:
		return &m.sloInput
	case focusBins:
		return &m.binsInput
	case focusBinWidth:
		return &m.binWidthInput
	}
	return nil
}

func (m *model) cycleFocus() {
	order := []focusField{focusGrid, focusSLO, focusBins, focusBinWidth, focusHistogram}
	for i, f := range order {
		if f == m.focus {
			m.setFocus(order[(i+1)%len(order)])
			return
		}
	}
	m.setFocus(focusGrid)
}

func (m *model) setFocus(focus focusField) {
	m.sloInput.Blur()
	m.binsInput.Blur()
	m.binWidthInput.Blur()
	m.focus = focus
	if input := m.focusedInput(); input != nil {
		input.Focus()
	}
}

// commitInput validates the focused control and pushes a settings patch to
// the store and engine. Invalid input reverts to the last good value.
func (m *model) commitInput() {
	switch m.focus {
	case focusSLO:
		value, err := strconv.ParseFloat(strings.TrimSpace(m.sloInput.Value()), 64)
		if err != nil || value <= 0 {
			m.revertInput()
			return
		}
		m.state = store.Reduce(m.state, store.PatchSettings{SLOMs: &value})
	case focusBins:
		value, err := strconv.Atoi(strings.TrimSpace(m.binsInput.Value()))
		if err != nil || value < 1 || value > 120 {
			m.revertInput()
			return
		}
		// Choosing a bin count clears any explicit width override.
		m.state = store.Reduce(m.state, store.PatchSettings{DesiredBins: &value, ClearBinWidth: true})
		m.binWidthInput.SetValue("")
	case focusBinWidth:
		raw := strings.TrimSpace(m.binWidthInput.Value())
		if raw == "" {
			m.state = store.Reduce(m.state, store.PatchSettings{ClearBinWidth: true})
		} else {
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil || value <= 0 {
				m.revertInput()
				return
			}
			m.state = store.Reduce(m.state, store.PatchSettings{BinWidthMs: &value})
		}
	default:
		return
	}
	m.compute(func() { m.bridge.SendSettings(m.state.Settings) })
}

// revertInput restores a control's text from the authoritative store value.
func (m *model) revertInput() {
	switch m.focus {
	case focusSLO:
		m.sloInput.SetValue(strconv.FormatFloat(m.state.Settings.SLOMs, 'f', -1, 64))
	case focusBins:
		m.binsInput.SetValue(strconv.Itoa(m.state.Settings.DesiredBins))
	case focusBinWidth:
		if m.state.Settings.BinWidthMs == nil {
			m.binWidthInput.SetValue("")
		} else {
			m.binWidthInput.SetValue(strconv.FormatFloat(*m.state.Settings.BinWidthMs, 'f', -1, 64))
		}
	}
}

func (m *model) clampHistCursor() {
	if m.histCursor < 0 {
		m.histCursor = 0
	}
	if n := len(m.state.HistBins); n > 0 && m.histCursor >= n {
		m.histCursor = n - 1
	}
	if m.histAnchor >= len(m.state.HistBins) {
		m.histAnchor = -1
	}
}

// StartExplorer runs the interactive view over an already parsed record set.
// It owns the bridge lifecycle: one engine per session, torn down on exit.
func StartExplorer(cfg *Config, source string, records []record.Record) error {
	m := newModel(cfg, source, records)

	p := tea.NewProgram(m, tea.WithAltScreen())
	b := bridge.New(func(out engine.Outbound) {
		p.Send(engineMsg{out: out})
	})
	m.bridge = b
	b.Start()
	defer b.Stop()

	if _, err := p.Run(); err != nil {
		log.Printf("Error running program: %v", err)
		return fmt.Errorf("explorer: %w", err)
	}
	return nil
}
