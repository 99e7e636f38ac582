// internal/filter/filter.go
// Package filter selects the visible subset of a record set. A record is
// visible when it passes every configured predicate; unset predicates are
// vacuously true.
package filter

import (
	"time"

	"github.com/mwiater/latlens/internal/record"
)

// Range is one inclusive latency interval in milliseconds.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Bounds constrains the response_quality score. Either end may be open.
type Bounds struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// DateRange constrains the record timestamp. Either end may be open.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Spec is a conjunction of independently optional predicates. Latency ranges
// are the one disjunctive dimension: a record passes when its latency falls
// in ANY configured range.
type Spec struct {
	Models        []string        `json:"models,omitempty"`
	Status        []record.Status `json:"status,omitempty"`
	LatencyRanges []Range         `json:"latencyRanges,omitempty"`
	Quality       *Bounds         `json:"quality,omitempty"`
	DateRange     *DateRange      `json:"dateRange,omitempty"`
}

// Evaluate returns the indices of records that pass every active predicate,
// in original order. Consumers index back into the record set positionally,
// so the order is never re-sorted here.
func Evaluate(records []record.Record, spec Spec) []int {
	modelSet := toSet(spec.Models)
	statusSet := make(map[record.Status]struct{}, len(spec.Status))
	for _, s := range spec.Status {
		statusSet[s] = struct{}{}
	}

	indices := make([]int, 0, len(records))
	for i, r := range records {
		if len(modelSet) > 0 {
			if _, ok := modelSet[r.Model]; !ok {
				continue
			}
		}
		if len(statusSet) > 0 {
			if _, ok := statusSet[r.Status]; !ok {
				continue
			}
		}
		if len(spec.LatencyRanges) > 0 && !passesLatency(r, spec.LatencyRanges) {
			continue
		}
		if spec.Quality != nil && !passesQuality(r, *spec.Quality) {
			continue
		}
		if spec.DateRange != nil && !passesDate(r, *spec.DateRange) {
			continue
		}
		indices = append(indices, i)
	}
	return indices
}

// passesLatency requires a present latency falling inside at least one range.
// A record with no latency value cannot satisfy membership, so it fails.
func passesLatency(r record.Record, ranges []Range) bool {
	lat, ok := r.Latency()
	if !ok {
		return false
	}
	for _, rng := range ranges {
		if lat >= rng.Min && lat <= rng.Max {
			return true
		}
	}
	return false
}

func passesQuality(r record.Record, bounds Bounds) bool {
	if bounds.Min == nil && bounds.Max == nil {
		return true
	}
	quality, ok := r.Quality()
	if !ok {
		return false
	}
	if bounds.Min != nil && quality < *bounds.Min {
		return false
	}
	if bounds.Max != nil && quality > *bounds.Max {
		return false
	}
	return true
}

func passesDate(r record.Record, dr DateRange) bool {
	if dr.From == nil && dr.To == nil {
		return true
	}
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return false
	}
	if dr.From != nil && ts.Before(*dr.From) {
		return false
	}
	if dr.To != nil && ts.After(*dr.To) {
		return false
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
