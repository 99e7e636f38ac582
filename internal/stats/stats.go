// internal/stats/stats.go
// Package stats provides the pure numeric routines behind the analytics
// engine: quantile estimation, min/max, error and SLO ratios, and cost
// aggregation. Functions hold no state and never mutate their inputs.
package stats

import "sort"

// Quantile returns the linear-interpolation quantile of values for q in
// [0, 1]. The second return is false for an empty sample. A single-value
// sample returns that value for any q. Interpolation follows the R-7 rule:
// pos = (n-1)*q, result = v[floor(pos)] + frac*(v[floor(pos)+1]-v[floor(pos)]),
// with the interpolation term dropped when floor(pos)+1 is out of range.
func Quantile(values []float64, q float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := float64(len(sorted)-1) * q
	base := int(pos)
	rest := pos - float64(base)
	if base+1 < len(sorted) {
		return sorted[base] + rest*(sorted[base+1]-sorted[base]), true
	}
	return sorted[base], true
}

// MinMax returns the smallest and largest values of a sample. The third
// return is false for an empty sample.
func MinMax(values []float64) (float64, float64, bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal, true
}

// ErrRatioPct returns errorCount/recordCount as a percentage. An empty record
// set yields 0, not "no data": the denominator is the record count, which is
// always known, unlike a latency sample.
func ErrRatioPct(errorCount, recordCount int) float64 {
	if recordCount == 0 {
		return 0
	}
	return float64(errorCount) / float64(recordCount) * 100
}

// OverSLOPct returns the share of latencies strictly above sloMs as a
// percentage. The second return is false for an empty sample.
func OverSLOPct(latencies []float64, sloMs float64) (float64, bool) {
	if len(latencies) == 0 {
		return 0, false
	}
	violations := 0
	for _, lat := range latencies {
		if lat > sloMs {
			violations++
		}
	}
	return float64(violations) / float64(len(latencies)) * 100, true
}

// TotalCost sums a set of cost values. Records without a cost contribute
// nothing; callers pass only present values.
func TotalCost(costs []float64) float64 {
	var sum float64
	for _, c := range costs {
		sum += c
	}
	return sum
}

// AvgCostPer1k returns the average cost per thousand calls, defined only when
// at least one cost value was present (totalCost > 0) and the latency sample
// is non-empty.
func AvgCostPer1k(totalCost float64, sampleSize int) (float64, bool) {
	if totalCost <= 0 || sampleSize == 0 {
		return 0, false
	}
	return totalCost / float64(sampleSize) * 1000, true
}
