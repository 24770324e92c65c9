package sentiment

import "math"

// ComponentWeights contains the fixed weights of the four components.
type ComponentWeights struct {
	Valuation  float64 `json:"valuation"`
	Flow       float64 `json:"flow"`
	Volatility float64 `json:"volatility"`
	Trend      float64 `json:"trend"`
}

// Weights are the composite weights: AH premium 25%, southbound flow 30%,
// volatility 30%, trend 15%.
var Weights = ComponentWeights{
	Valuation:  0.25,
	Flow:       0.30,
	Volatility: 0.30,
	Trend:      0.15,
}

// Sum returns the total weight
func (w ComponentWeights) Sum() float64 {
	return w.Valuation + w.Flow + w.Volatility + w.Trend
}

// IsValid checks that the weights are non-negative and sum to one
func (w ComponentWeights) IsValid() bool {
	return w.Valuation >= 0 && w.Flow >= 0 && w.Volatility >= 0 && w.Trend >= 0 &&
		math.Abs(w.Sum()-1.0) < 1e-9
}

// Blend returns the unclipped weighted sum of one day's component scores.
// Any undefined input makes the result undefined.
func (w ComponentWeights) Blend(valuation, flow, volatility, trend float64) float64 {
	return w.Valuation*valuation + w.Flow*flow + w.Volatility*volatility + w.Trend*trend
}

// Composite blends the four component series and clips each day to [0, 100].
func Composite(valuation, flow, volatility, trend []float64) []float64 {
	out := nanSlice(len(valuation))
	for i := range out {
		out[i] = clip(Weights.Blend(valuation[i], flow[i], volatility[i], trend[i]), 0, 100)
	}
	return out
}

// Sentiment bands of the composite.
const (
	BandExtremeFear  = "extreme fear"
	BandFear         = "fear"
	BandNeutral      = "neutral"
	BandGreed        = "greed"
	BandExtremeGreed = "extreme greed"
	BandUndefined    = "undefined"
)

// BandEdges are the upper bounds of the first four bands.
var BandEdges = [4]float64{20, 40, 60, 80}

// Band labels a composite score
func Band(score float64) string {
	switch {
	case math.IsNaN(score):
		return BandUndefined
	case score < BandEdges[0]:
		return BandExtremeFear
	case score < BandEdges[1]:
		return BandFear
	case score < BandEdges[2]:
		return BandNeutral
	case score < BandEdges[3]:
		return BandGreed
	default:
		return BandExtremeGreed
	}
}
