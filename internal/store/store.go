// internal/store/store.go
// Package store holds the UI state as an immutable value and a pure reducer
// over it. The store performs no derived computation itself; derived fields
// arrive wholesale from the analytics engine and are overwritten, never
// merged, so two computations' outputs cannot mix.
package store

import (
	"github.com/mwiater/latlens/internal/engine"
	"github.com/mwiater/latlens/internal/filter"
	"github.com/mwiater/latlens/internal/histogram"
	"github.com/mwiater/latlens/internal/record"
)

// State is one immutable version of the UI state. Reduce returns a new value
// for every action; callers never mutate a State in place.
type State struct {
	Records  []record.Record
	Filters  filter.Spec
	Sort     *engine.SortSpec
	Settings engine.Settings

	VisibleIndices []int
	HistBins       []histogram.Bin
	Stats          engine.Stats
	LastComputeMs  int64
	LastSeq        uint64

	Err       string // dismissible banner message, empty when none
	Computing bool
	Selected  int // index into Records for the detail view, -1 when closed
}

// Initial returns the state before any data is loaded.
func Initial() State {
	return State{
		Settings: engine.DefaultSettings(),
		Selected: -1,
	}
}

// Action is the sealed set of state transitions.
type Action interface{ action() }

// LoadRecords replaces the record set and resets every derived field along
// with filters, sort, and any error: derived data must never outlive the
// record set it was computed from.
type LoadRecords struct {
	Records []record.Record
}

// PatchFilters merges into the filter spec. Nil slices leave their dimension
// untouched; empty non-nil slices clear it. Quality and DateRange are applied
// only when their Set flag is true, so they can be cleared explicitly.
type PatchFilters struct {
	Models        []string
	Status        []record.Status
	LatencyRanges []filter.Range
	Quality       *filter.Bounds
	SetQuality    bool
	DateRange     *filter.DateRange
	SetDateRange  bool
}

// SetSort replaces the sort spec; nil clears it.
type SetSort struct {
	Sort *engine.SortSpec
}

// PatchSettings merges into the display settings. Nil fields leave their
// setting untouched; ClearBinWidth removes an explicit bin width.
type PatchSettings struct {
	Locale        *string
	TimeZone      *string
	SLOMs         *float64
	DesiredBins   *int
	BinWidthMs    *float64
	ClearBinWidth bool
}

// ApplyResults installs a snapshot's derived fields. Snapshots whose Seq is
// not greater than the last applied one are discarded: an older computation
// finishing late must not overwrite a newer one.
type ApplyResults struct {
	Snapshot engine.Snapshot
}

// EngineError surfaces a computation failure. The last-good derived fields
// stay on screen until a later computation succeeds.
type EngineError struct {
	Message string
}

// ClearError dismisses the error banner.
type ClearError struct{}

// SetComputing flags an in-flight computation for the UI spinner.
type SetComputing struct {
	Computing bool
}

// SelectRecord opens the detail view on a record index; -1 closes it.
type SelectRecord struct {
	Index int
}

func (LoadRecords) action()   {}
func (PatchFilters) action()  {}
func (SetSort) action()       {}
func (PatchSettings) action() {}
func (ApplyResults) action()  {}
func (EngineError) action()   {}
func (ClearError) action()    {}
func (SetComputing) action()  {}
func (SelectRecord) action()  {}

// Reduce applies one action to a state value and returns the next state.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case LoadRecords:
		next := state
		next.Records = a.Records
		next.Filters = filter.Spec{}
		next.Sort = nil
		next.VisibleIndices = nil
		next.HistBins = nil
		next.Stats = engine.Stats{}
		next.LastComputeMs = 0
		next.Err = ""
		next.Selected = -1
		return next

	case PatchFilters:
		next := state
		filters := state.Filters
		if a.Models != nil {
			filters.Models = a.Models
		}
		if a.Status != nil {
			filters.Status = a.Status
		}
		if a.LatencyRanges != nil {
			filters.LatencyRanges = a.LatencyRanges
		}
		if a.SetQuality {
			filters.Quality = a.Quality
		}
		if a.SetDateRange {
			filters.DateRange = a.DateRange
		}
		next.Filters = filters
		return next

	case SetSort:
		next := state
		next.Sort = a.Sort
		return next

	case PatchSettings:
		next := state
		settings := state.Settings
		if a.Locale != nil {
			settings.Locale = *a.Locale
		}
		if a.TimeZone != nil {
			settings.TimeZone = *a.TimeZone
		}
		if a.SLOMs != nil {
			settings.SLOMs = *a.SLOMs
		}
		if a.DesiredBins != nil {
			settings.DesiredBins = *a.DesiredBins
		}
		if a.BinWidthMs != nil {
			settings.BinWidthMs = a.BinWidthMs
		}
		if a.ClearBinWidth {
			settings.BinWidthMs = nil
		}
		next.Settings = settings
		return next

	case ApplyResults:
		if a.Snapshot.Seq <= state.LastSeq {
			return state
		}
		next := state
		next.VisibleIndices = a.Snapshot.VisibleIndices
		next.HistBins = a.Snapshot.HistBins
		next.Stats = a.Snapshot.Stats
		next.LastComputeMs = a.Snapshot.ComputedAtMs
		next.LastSeq = a.Snapshot.Seq
		return next

	case EngineError:
		next := state
		next.Err = a.Message
		return next

	case ClearError:
		next := state
		next.Err = ""
		return next

	case SetComputing:
		next := state
		next.Computing = a.Computing
		return next

	case SelectRecord:
		next := state
		next.Selected = a.Index
		return next
	}
	return state
}
