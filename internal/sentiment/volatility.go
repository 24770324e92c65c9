package sentiment

import "math"

// Volatility bucket scores. High volatility reads as fear.
const (
	volScoreHigh     = 0.0
	volScoreElevated = 25.0
	volScoreNormal   = 50.0
	volScoreCalm     = 75.0
)

// VolatilityBucket classifies a volatility level against its trailing
// 80th/50th/20th percentiles. Each lower bound is inclusive.
func VolatilityBucket(level, p80, p50, p20 float64) float64 {
	if math.IsNaN(level) || math.IsNaN(p80) || math.IsNaN(p50) || math.IsNaN(p20) {
		return NeutralVolatility
	}
	switch {
	case level >= p80:
		return volScoreHigh
	case level >= p50:
		return volScoreElevated
	case level >= p20:
		return volScoreNormal
	default:
		return volScoreCalm
	}
}

// VolatilityScores scores each day's volatility level against the quantiles
// of its trailing window. Days without a full window score 50.
func VolatilityScores(levels []float64, window int) []float64 {
	q := RollingQuantiles(levels, window, 0.8, 0.5, 0.2)
	out := make([]float64, len(levels))
	for i, level := range levels {
		out[i] = VolatilityBucket(level, q[0][i], q[1][i], q[2][i])
	}
	return out
}
