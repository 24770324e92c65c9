package sentiment

import "math"

const (
	zClip          = 3.0
	flowBaseMax    = 50.0
	streakStep     = 0.5
	streakBonusCap = 25.0
)

// RollingZScore returns (value - mean) / std over the trailing window,
// clipped to [-3, 3]. A zero deviation over a zero std is undefined; a
// non-zero deviation over a zero std saturates at the clip bound.
func RollingZScore(values []float64, window int) []float64 {
	mean, std := RollingMeanStd(values, window)
	out := nanSlice(len(values))
	for i, v := range values {
		if math.IsNaN(mean[i]) || math.IsNaN(v) {
			continue
		}
		diff := v - mean[i]
		if std[i] == 0 {
			switch {
			case diff > 0:
				out[i] = zClip
			case diff < 0:
				out[i] = -zClip
			}
			continue
		}
		out[i] = clip(diff/std[i], -zClip, zClip)
	}
	return out
}

// Streaks scans the flow in date order and returns a signed run length per
// day: a positive day extends a positive run or restarts at +1, any other
// day extends a negative run or restarts at -1. Undefined days (before the
// first observation) get 0 and leave the running count untouched.
func Streaks(values []float64) []int {
	out := make([]int, len(values))
	current := 0
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v > 0 {
			if current >= 0 {
				current++
			} else {
				current = 1
			}
		} else {
			if current <= 0 {
				current--
			} else {
				current = -1
			}
		}
		out[i] = current
	}
	return out
}

// StreakBonus returns the signed adjustment for a streak: half a point per
// day, capped at 25, positive for inflow runs.
func StreakBonus(streak int) float64 {
	bonus := math.Min(math.Abs(float64(streak))*streakStep, streakBonusCap)
	switch {
	case streak > 0:
		return bonus
	case streak < 0:
		return -bonus
	default:
		return 0
	}
}

// FlowBase maps a clipped z-score onto [0, 50]
func FlowBase(z float64) float64 {
	return (z + zClip) / (2 * zClip) * flowBaseMax
}

// FlowScores computes the capital-flow component: rolling z-score base plus
// the streak bonus, clipped to [0, 100]. The score is undefined wherever
// the z-score is.
func FlowScores(netBuy []float64, window int) (z []float64, streak []int, score []float64) {
	z = RollingZScore(netBuy, window)
	streak = Streaks(netBuy)
	score = nanSlice(len(netBuy))
	for i := range netBuy {
		if math.IsNaN(z[i]) {
			continue
		}
		score[i] = clip(FlowBase(z[i])+StreakBonus(streak[i]), 0, 100)
	}
	return z, streak, score
}
