package sentiment

// ValuationScores ranks the AH premium within its trailing window. A
// historically high premium reads as greed. Days without a full window are
// NaN and stay NaN downstream.
func ValuationScores(premium []float64, window int) []float64 {
	return RollingPercentRank(premium, window)
}
