package sentiment

import (
	"math"

	"github.com/markcheno/go-talib"
)

const trendHalf = 50.0

// TrendSignals holds the intermediate trend series.
type TrendSignals struct {
	Momentum      []float64 // rate of change over the window, NaN until defined
	MovingAverage []float64 // trailing simple moving average
	MomentumScore []float64 // percentile of momentum over full history, halved: [0, 50]
	MAScore       []float64 // 50 when the level is above its moving average, else 0
	Score         []float64 // MomentumScore + MAScore: [0, 100]
}

// TrendScores combines momentum and moving-average position of the
// benchmark level. Undefined momentum counts as the midpoint (25); an
// undefined moving average counts as "not above" (0).
func TrendScores(levels []float64, window int) TrendSignals {
	momentum := applyOnRuns(levels, window, func(seg []float64) []float64 {
		return talib.Rocp(seg, window)
	})
	sma := applyOnRuns(levels, window-1, func(seg []float64) []float64 {
		return talib.Sma(seg, window)
	})

	ranks := PercentRank(momentum)
	sig := TrendSignals{
		Momentum:      momentum,
		MovingAverage: sma,
		MomentumScore: make([]float64, len(levels)),
		MAScore:       make([]float64, len(levels)),
		Score:         make([]float64, len(levels)),
	}
	for i, level := range levels {
		mom := NeutralMomentum
		if !math.IsNaN(ranks[i]) {
			mom = ranks[i] / 100 * trendHalf
		}
		ma := 0.0
		if !math.IsNaN(sma[i]) && level > sma[i] {
			ma = trendHalf
		}
		sig.MomentumScore[i] = mom
		sig.MAScore[i] = ma
		sig.Score[i] = mom + ma
	}
	return sig
}
