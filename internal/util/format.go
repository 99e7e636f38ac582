// internal/util/format.go
package util

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Placeholder is rendered wherever a value is absent.
const Placeholder = "—"

// FormatNumber renders a possibly absent number with fixed digits, or the
// placeholder when nil or non-finite.
func FormatNumber(n *float64, digits int) string {
	if n == nil || math.IsNaN(*n) || math.IsInf(*n, 0) {
		return Placeholder
	}
	return strconv.FormatFloat(*n, 'f', digits, 64)
}

// FormatFloat renders a plain number with fixed digits.
func FormatFloat(n float64, digits int) string {
	return strconv.FormatFloat(n, 'f', digits, 64)
}

// FormatCost renders a USD amount, or the placeholder when absent.
func FormatCost(n *float64) string {
	if n == nil {
		return Placeholder
	}
	return fmt.Sprintf("$%.4f", *n)
}

// FormatTimestamp renders an ISO-8601 instant in the given time zone using a
// two-digit date-time layout. Absent or unparseable inputs and unknown zones
// fall back gracefully rather than erroring.
func FormatTimestamp(iso, timeZone string) string {
	if iso == "" {
		return Placeholder
	}
	ts, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return Placeholder
	}
	if loc, err := time.LoadLocation(timeZone); err == nil {
		ts = ts.In(loc)
	}
	return ts.Format("01/02/06 15:04:05")
}
