// internal/engine/engine.go
// Package engine owns the analytics state (records, filters, sort, settings)
// and recomputes a consistent result snapshot on every update. Handle is
// synchronous so the core stays testable without goroutines; Run wraps it in
// a mailbox loop for off-main-goroutine use.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mwiater/latlens/internal/filter"
	"github.com/mwiater/latlens/internal/histogram"
	"github.com/mwiater/latlens/internal/logging"
	"github.com/mwiater/latlens/internal/record"
	"github.com/mwiater/latlens/internal/stats"
)

// Engine holds the analytics state. It is not safe for concurrent use; a
// single goroutine drives it through Handle or Run.
type Engine struct {
	records  []record.Record
	filters  filter.Spec
	sort     *SortSpec
	settings Settings

	seq            uint64
	lastComputedMs int64
}

// New returns an engine with default settings and no records.
func New() *Engine {
	return &Engine{settings: DefaultSettings()}
}

// Handle applies one inbound message and recomputes, returning either a
// ResultsMsg or an ErrorMsg. A failed recompute leaves state intact, so the
// next valid update can still succeed.
func (e *Engine) Handle(msg Inbound) Outbound {
	switch m := msg.(type) {
	case LoadMsg:
		// Copy so the record set crosses the engine boundary by value.
		e.records = append([]record.Record(nil), m.Records...)
		e.filters = filter.Spec{}
		e.sort = nil
	case SetFiltersMsg:
		e.filters = m.Filters
	case SetSortMsg:
		e.sort = m.Sort
	case SetSettingsMsg:
		e.settings = m.Settings
	case RecomputeMsg:
		// No state change; recompute with current parameters.
	}
	return e.recompute()
}

// Run drains inbound messages until the context is cancelled or the channel
// closes, emitting one outbound message per inbound.
func (e *Engine) Run(ctx context.Context, in <-chan Inbound, out chan<- Outbound) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			result := e.Handle(msg)
			select {
			case out <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}

// recompute runs one full computation, converting any panic on the compute
// path into a typed error result instead of tearing the engine down.
func (e *Engine) recompute() (out Outbound) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogEvent("[ENGINE] Recompute failed: %v", r)
			out = ErrorMsg{Message: fmt.Sprintf("compute failed: %v", r)}
		}
	}()

	start := time.Now()
	snapshot := e.compute()
	logging.LogEvent("[ENGINE] Recompute seq=%d records=%d visible=%d in %s",
		snapshot.Seq, len(e.records), len(snapshot.VisibleIndices), time.Since(start))
	return ResultsMsg{Snapshot: snapshot}
}

func (e *Engine) compute() Snapshot {
	visible := filter.Evaluate(e.records, e.filters)

	visibleLatencies := make([]float64, 0, len(visible))
	for _, idx := range visible {
		if lat, ok := finiteLatency(e.records[idx]); ok {
			visibleLatencies = append(visibleLatencies, lat)
		}
	}

	hist := histogram.Build(visibleLatencies, e.settings.DesiredBins, e.settings.BinWidthMs)

	// Dataset-level aggregates run over the full unfiltered record set: they
	// characterize the whole upload, while the histogram and n describe the
	// current slice.
	allLatencies := make([]float64, 0, len(e.records))
	costs := make([]float64, 0, len(e.records))
	errorCount := 0
	for _, r := range e.records {
		if lat, ok := finiteLatency(r); ok {
			allLatencies = append(allLatencies, lat)
		}
		if r.CostUSD != nil {
			costs = append(costs, *r.CostUSD)
		}
		if r.Status == record.StatusError {
			errorCount++
		}
	}

	totalCost := stats.TotalCost(costs)
	aggregates := Stats{
		N:         len(visibleLatencies),
		ErrPct:    stats.ErrRatioPct(errorCount, len(e.records)),
		P50:       hist.P50,
		P95:       hist.P95,
		P99:       hist.P99,
		TotalCost: totalCost,
	}
	if avg, ok := stats.AvgCostPer1k(totalCost, len(allLatencies)); ok {
		aggregates.AvgCostPer1k = &avg
	}
	if over, ok := stats.OverSLOPct(allLatencies, e.settings.SLOMs); ok {
		aggregates.OverSLOPct = &over
	}

	e.seq++
	return Snapshot{
		VisibleIndices: visible,
		HistBins:       hist.Bins,
		Stats:          aggregates,
		ComputedAtMs:   e.stampComputedAt(),
		Seq:            e.seq,
	}
}

// stampComputedAt returns a wall-clock millisecond timestamp that never
// repeats or goes backwards across recomputes.
func (e *Engine) stampComputedAt() int64 {
	now := time.Now().UnixMilli()
	if now <= e.lastComputedMs {
		now = e.lastComputedMs + 1
	}
	e.lastComputedMs = now
	return now
}

func finiteLatency(r record.Record) (float64, bool) {
	lat, ok := r.Latency()
	if !ok || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return 0, false
	}
	return lat, true
}
