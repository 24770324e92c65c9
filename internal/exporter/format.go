package exporter

import (
	"math"
	"strconv"
)

// FormatFloat renders a provider value with the shortest exact
// representation; NaN becomes an empty cell
func FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatInt formats an int64 value for CSV output
func FormatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
