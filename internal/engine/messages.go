// internal/engine/messages.go
package engine

import (
	"github.com/mwiater/latlens/internal/filter"
	"github.com/mwiater/latlens/internal/histogram"
	"github.com/mwiater/latlens/internal/record"
)

// SortKey names a sortable record grid column.
type SortKey string

const (
	SortByTimestamp   SortKey = "timestamp"
	SortByModel       SortKey = "model"
	SortByLatency     SortKey = "response_time_ms"
	SortByTotalTokens SortKey = "total_tokens"
	SortByCost        SortKey = "cost_usd"
	SortByQuality     SortKey = "response_quality"
	SortByStatus      SortKey = "status"
)

// SortSpec orders the record grid. It affects presentation only; visible
// indices keep their original order.
type SortSpec struct {
	Key SortKey `json:"key"`
	Dir string  `json:"dir"` // "asc" or "desc"
}

// Settings are the live-tunable display parameters. Locale and TimeZone are
// presentation-only and never feed engine numerics. A positive BinWidthMs
// overrides the DesiredBins-derived bin width.
type Settings struct {
	Locale      string   `json:"locale"`
	TimeZone    string   `json:"timeZone"`
	SLOMs       float64  `json:"sloMs"`
	DesiredBins int      `json:"desiredBins"`
	BinWidthMs  *float64 `json:"binWidthMs,omitempty"`
}

// DefaultSettings returns the settings applied before any user input.
func DefaultSettings() Settings {
	return Settings{
		Locale:      "en-US",
		TimeZone:    "UTC",
		SLOMs:       800,
		DesiredBins: 40,
	}
}

// Stats is the aggregate block of a result snapshot. ErrPct and TotalCost
// are always defined (their denominators are record counts); pointer fields
// are nil when their input sample is empty rather than coerced to zero.
type Stats struct {
	N            int      `json:"n"`
	ErrPct       float64  `json:"errPct"`
	P50          *float64 `json:"p50,omitempty"`
	P95          *float64 `json:"p95,omitempty"`
	P99          *float64 `json:"p99,omitempty"`
	TotalCost    float64  `json:"totalCost"`
	AvgCostPer1k *float64 `json:"avgCostPer1k,omitempty"`
	OverSLOPct   *float64 `json:"overSloPct,omitempty"`
}

// Snapshot is one complete, internally consistent computation result. Seq and
// ComputedAtMs increase monotonically across recomputes so consumers can
// discard results that arrive after a newer one.
type Snapshot struct {
	VisibleIndices []int           `json:"visibleIndices"`
	HistBins       []histogram.Bin `json:"histBins"`
	Stats          Stats           `json:"stats"`
	ComputedAtMs   int64           `json:"computedAtMs"`
	Seq            uint64          `json:"seq"`
}

// Inbound is the sealed set of messages the engine accepts. Every inbound
// message triggers exactly one recompute and yields exactly one outbound.
type Inbound interface{ inbound() }

// LoadMsg replaces the record set and resets filters and sort, since derived
// selections must never outlive the dataset they were made against.
type LoadMsg struct {
	Records []record.Record `json:"records"`
}

// SetFiltersMsg replaces the filter specification.
type SetFiltersMsg struct {
	Filters filter.Spec `json:"filters"`
}

// SetSortMsg replaces the sort specification; nil clears it.
type SetSortMsg struct {
	Sort *SortSpec `json:"sort"`
}

// SetSettingsMsg replaces the display settings.
type SetSettingsMsg struct {
	Settings Settings `json:"settings"`
}

// RecomputeMsg forces a recompute with no state change.
type RecomputeMsg struct{}

func (LoadMsg) inbound()        {}
func (SetFiltersMsg) inbound()  {}
func (SetSortMsg) inbound()     {}
func (SetSettingsMsg) inbound() {}
func (RecomputeMsg) inbound()   {}

// Outbound is the sealed set of engine results.
type Outbound interface{ outbound() }

// ResultsMsg delivers a completed snapshot.
type ResultsMsg struct {
	Snapshot Snapshot `json:"payload"`
}

// ErrorMsg reports a failed recompute. It carries a human-readable message
// only; the engine keeps its state and stays usable.
type ErrorMsg struct {
	Message string `json:"message"`
}

func (ResultsMsg) outbound() {}
func (ErrorMsg) outbound()   {}
