// internal/histogram/histogram_test.go
package histogram

import (
	"math"
	"testing"
)

func TestBuildEmptySample(t *testing.T) {
	t.Parallel()

	result := Build(nil, 40, nil)
	if len(result.Bins) != 0 {
		t.Fatalf("expected no bins, got %d", len(result.Bins))
	}
	if result.P50 != nil || result.P95 != nil || result.P99 != nil {
		t.Fatalf("expected nil percentiles for empty sample")
	}
}

func TestBuildCountsCoverSample(t *testing.T) {
	t.Parallel()

	latencies := []float64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}
	result := Build(latencies, 5, nil)

	if len(result.Bins) != 5 {
		t.Fatalf("bin count=%d want 5", len(result.Bins))
	}

	total := 0
	pctSum := 0.0
	for _, b := range result.Bins {
		total += b.Count
		pctSum += b.Pct
	}
	if total != len(latencies) {
		t.Fatalf("counts sum to %d want %d", total, len(latencies))
	}
	if math.Abs(pctSum-100) > 1e-9 {
		t.Fatalf("pct sums to %v want 100", pctSum)
	}

	// Bins tile the data range contiguously.
	if result.Bins[0].StartMs != 100 {
		t.Fatalf("first bin starts at %v want 100", result.Bins[0].StartMs)
	}
	if result.Bins[len(result.Bins)-1].EndMs != 1000 {
		t.Fatalf("last bin ends at %v want 1000", result.Bins[len(result.Bins)-1].EndMs)
	}
	for i := 1; i < len(result.Bins); i++ {
		if result.Bins[i].StartMs != result.Bins[i-1].EndMs {
			t.Fatalf("gap between bins %d and %d", i-1, i)
		}
	}
}

func TestBuildMaximumLandsInLastBin(t *testing.T) {
	t.Parallel()

	result := Build([]float64{0, 50, 100}, 2, nil)
	if got := result.Bins[len(result.Bins)-1].Count; got != 2 {
		t.Fatalf("last bin count=%d want 2 (50 and the sample max)", got)
	}
}

func TestBuildDesiredBinsClamped(t *testing.T) {
	t.Parallel()

	latencies := make([]float64, 500)
	for i := range latencies {
		latencies[i] = float64(i)
	}

	if got := len(Build(latencies, 1000, nil).Bins); got != MaxBins {
		t.Fatalf("bin count=%d want %d", got, MaxBins)
	}
	if got := len(Build(latencies, 0, nil).Bins); got != 1 {
		t.Fatalf("bin count=%d want 1", got)
	}
	if got := len(Build(latencies, -3, nil).Bins); got != 1 {
		t.Fatalf("negative desired bins: count=%d want 1", got)
	}
}

func TestBuildSingleValueSample(t *testing.T) {
	t.Parallel()

	result := Build([]float64{500, 500, 500}, 10, nil)
	if len(result.Bins) != 10 {
		t.Fatalf("bin count=%d want 10", len(result.Bins))
	}
	if result.Bins[0].Count != 3 {
		t.Fatalf("first bin count=%d want 3", result.Bins[0].Count)
	}
	// The degenerate range widens to [v, v+1].
	if result.Bins[0].StartMs != 500 {
		t.Fatalf("first bin starts at %v want 500", result.Bins[0].StartMs)
	}
	if got := result.Bins[len(result.Bins)-1].EndMs; math.Abs(got-501) > 1e-9 {
		t.Fatalf("last bin ends at %v want 501", got)
	}
	if result.P50 == nil || *result.P50 != 500 {
		t.Fatalf("P50=%v want 500", result.P50)
	}
}

func TestBuildExplicitBinWidth(t *testing.T) {
	t.Parallel()

	width := 100.0
	result := Build([]float64{0, 250, 499}, 40, &width)
	if len(result.Bins) != 5 {
		t.Fatalf("bin count=%d want 5 (ceil(499/100))", len(result.Bins))
	}
	if result.Bins[0].EndMs != 100 {
		t.Fatalf("first bin ends at %v want 100", result.Bins[0].EndMs)
	}
}

func TestBuildBinWidthCappedAtMaxBins(t *testing.T) {
	t.Parallel()

	width := 1.0
	result := Build([]float64{0, 10000}, 40, &width)
	if len(result.Bins) != MaxBins {
		t.Fatalf("bin count=%d want %d", len(result.Bins), MaxBins)
	}
	// Width is recomputed from the cap so the bins still cover the range.
	last := result.Bins[len(result.Bins)-1]
	if math.Abs(last.EndMs-10000) > 1e-6 {
		t.Fatalf("last bin ends at %v want 10000", last.EndMs)
	}
}

func TestBuildRetainsZeroBins(t *testing.T) {
	t.Parallel()

	result := Build([]float64{0, 1000}, 10, nil)
	zero := 0
	for _, b := range result.Bins {
		if b.Count == 0 {
			zero++
		}
	}
	if zero != 8 {
		t.Fatalf("zero-count bins=%d want 8", zero)
	}
}

func TestBuildPercentiles(t *testing.T) {
	t.Parallel()

	result := Build([]float64{1, 2, 3, 4}, 4, nil)
	if result.P50 == nil || math.Abs(*result.P50-2.5) > 1e-9 {
		t.Fatalf("P50=%v want 2.5", result.P50)
	}
	if result.P95 == nil || math.Abs(*result.P95-3.85) > 1e-9 {
		t.Fatalf("P95=%v want 3.85", result.P95)
	}
	if result.P99 == nil || math.Abs(*result.P99-3.97) > 1e-9 {
		t.Fatalf("P99=%v want 3.97", result.P99)
	}
}
