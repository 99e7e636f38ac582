// internal/histogram/histogram.go
// Package histogram builds fixed-width latency histograms with percentile
// markers for the analytics engine.
package histogram

import (
	"math"

	"github.com/mwiater/latlens/internal/stats"
)

// MaxBins caps the number of bins a histogram may carry regardless of the
// requested bin count or width.
const MaxBins = 120

// Bin is one contiguous half-open latency interval. The last bin's upper
// bound is closed so the sample maximum lands inside the histogram.
type Bin struct {
	StartMs float64 `json:"startMs"`
	EndMs   float64 `json:"endMs"`
	Count   int     `json:"count"`
	Pct     float64 `json:"pct"`
}

// Result is a complete histogram over one latency sample, with percentile
// markers computed on the same sample. Percentiles are nil for an empty
// sample.
type Result struct {
	Bins []Bin    `json:"bins"`
	P50  *float64 `json:"p50,omitempty"`
	P95  *float64 `json:"p95,omitempty"`
	P99  *float64 `json:"p99,omitempty"`
}

// Build bins a latency sample. desiredBins is clamped into [1, MaxBins];
// a positive binWidthMs overrides it, with the bin count derived from the
// data range and still capped at MaxBins (recomputing the width from the cap
// when exceeded). Zero-count bins are retained so the full range renders
// without gaps.
func Build(latencies []float64, desiredBins int, binWidthMs *float64) Result {
	if len(latencies) == 0 {
		return Result{}
	}

	var out Result
	if p, ok := stats.Quantile(latencies, 0.5); ok {
		out.P50 = &p
	}
	if p, ok := stats.Quantile(latencies, 0.95); ok {
		out.P95 = &p
	}
	if p, ok := stats.Quantile(latencies, 0.99); ok {
		out.P99 = &p
	}

	minVal, maxVal, _ := stats.MinMax(latencies)
	if maxVal == minVal {
		// Widen a single-valued sample so binning stays well-defined.
		maxVal = minVal + 1
	}

	binCount, width := resolveBins(maxVal-minVal, desiredBins, binWidthMs)

	counts := make([]int, binCount)
	for _, v := range latencies {
		idx := int(math.Floor((v - minVal) / width))
		if idx >= binCount {
			idx = binCount - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}

	total := len(latencies)
	out.Bins = make([]Bin, binCount)
	for i := 0; i < binCount; i++ {
		start := minVal + float64(i)*width
		out.Bins[i] = Bin{
			StartMs: start,
			EndMs:   start + width,
			Count:   counts[i],
			Pct:     float64(counts[i]) / float64(total) * 100,
		}
	}
	return out
}

// resolveBins picks the effective bin count and width. Exactly one of the
// explicit width and the desired-bin-count path is in effect.
func resolveBins(span float64, desiredBins int, binWidthMs *float64) (int, float64) {
	if binWidthMs != nil && *binWidthMs > 0 {
		width := *binWidthMs
		binCount := int(math.Ceil(span / width))
		if binCount < 1 {
			binCount = 1
		}
		if binCount > MaxBins {
			binCount = MaxBins
			width = span / float64(binCount)
		}
		return binCount, width
	}

	binCount := desiredBins
	if binCount < 1 {
		binCount = 1
	}
	if binCount > MaxBins {
		binCount = MaxBins
	}
	return binCount, span / float64(binCount)
}
