package stats

import (
	"math"
	"strconv"
	"strings"
)

// DefaultTrendingHours is the trending window applied when the caller
// omits the hours parameter or supplies something unparseable.
const DefaultTrendingHours = 24

// ParseHoursOrDefault coerces a raw hours query value to a number.
// Missing values and values that do not fully parse as a finite number
// (e.g. "12abc", "NaN", "Inf") fall back to DefaultTrendingHours; they
// are never an error. Non-positive values are returned as-is, the
// resulting empty window is handled downstream.
func ParseHoursOrDefault(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTrendingHours
	}

	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return DefaultTrendingHours
	}

	return hours
}
