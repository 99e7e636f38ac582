// internal/util/format_test.go
package util

import (
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     *float64
		digits int
		want   string
	}{
		{name: "nil", in: nil, digits: 0, want: Placeholder},
		{name: "nan", in: ptr(math.NaN()), digits: 0, want: Placeholder},
		{name: "inf", in: ptr(math.Inf(1)), digits: 0, want: Placeholder},
		{name: "integer", in: ptr(850), digits: 0, want: "850"},
		{name: "fixed digits", in: ptr(33.333333), digits: 1, want: "33.3"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatNumber(tt.in, tt.digits); got != tt.want {
				t.Fatalf("FormatNumber=%q want %q", got, tt.want)
			}
		})
	}
}

func TestFormatCost(t *testing.T) {
	t.Parallel()

	if got := FormatCost(nil); got != Placeholder {
		t.Fatalf("FormatCost(nil)=%q want placeholder", got)
	}
	if got := FormatCost(ptr(0.1234)); got != "$0.1234" {
		t.Fatalf("FormatCost=%q want $0.1234", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		iso  string
		zone string
		want string
	}{
		{name: "empty", iso: "", zone: "UTC", want: Placeholder},
		{name: "unparseable", iso: "yesterday", zone: "UTC", want: Placeholder},
		{name: "utc", iso: "2024-03-01T12:30:45Z", zone: "UTC", want: "03/01/24 12:30:45"},
		{name: "unknown zone falls back", iso: "2024-03-01T12:30:45Z", zone: "Mars/Olympus", want: "03/01/24 12:30:45"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatTimestamp(tt.iso, tt.zone); got != tt.want {
				t.Fatalf("FormatTimestamp(%q,%q)=%q want %q", tt.iso, tt.zone, got, tt.want)
			}
		})
	}
}
