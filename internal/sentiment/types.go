package sentiment

import (
	"math"
	"time"
)

// Canonical column aliases used after input renaming.
const (
	ColDate      = "date"
	ColHSI       = "hsi"
	ColVHSI      = "vhsi"
	ColNetBuy    = "net_buy"
	ColAHPremium = "ah_premium"
	ColFearGreed = "fear_greed"
)

// Rolling window lengths, in observations.
const (
	VolatilityWindow = 252
	FlowWindow       = 252
	PremiumWindow    = 1000
	TrendWindow      = 20
)

// NeutralVolatility is the volatility score used while the window is incomplete.
const NeutralVolatility = 50.0

// NeutralMomentum is the momentum half-score used where momentum is undefined.
const NeutralMomentum = 25.0

// Point is one dated value of a source series.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is a named, dated sequence as read from one source file.
// Name is one of the canonical column aliases.
type Series struct {
	Name   string
	Points []Point
}

// Len returns the number of points in the series
func (s Series) Len() int {
	return len(s.Points)
}

// Defined returns the number of points carrying a value
func (s Series) Defined() int {
	n := 0
	for _, p := range s.Points {
		if !IsMissing(p.Value) {
			n++
		}
	}
	return n
}

// Observation is one row of the aligned table together with its composite.
// Missing values are NaN.
type Observation struct {
	Date      time.Time
	HSI       float64
	VHSI      float64
	NetBuy    float64
	AHPremium float64
	FearGreed float64
}

// Components holds every intermediate series of a scoring run, aligned to
// the frame's date axis.
type Components struct {
	Volatility    []float64
	FlowZ         []float64
	Streak        []int
	Flow          []float64
	Valuation     []float64
	Momentum      []float64
	MomentumScore []float64
	MAScore       []float64
	Trend         []float64
	Composite     []float64
}

// Result is the output of one scoring run.
type Result struct {
	Frame      *Frame
	Components Components
}

// Len returns the number of dated rows in the result
func (r *Result) Len() int {
	if r == nil || r.Frame == nil {
		return 0
	}
	return r.Frame.Len()
}

// Defined returns the number of rows with a defined composite
func (r *Result) Defined() int {
	if r == nil {
		return 0
	}
	return countDefined(r.Components.Composite)
}

// Observations returns the output rows in ascending date order
func (r *Result) Observations() []Observation {
	n := r.Len()
	out := make([]Observation, n)
	hsi := r.Frame.columnOrNaN(ColHSI)
	vhsi := r.Frame.columnOrNaN(ColVHSI)
	netBuy := r.Frame.columnOrNaN(ColNetBuy)
	ah := r.Frame.columnOrNaN(ColAHPremium)
	for i := 0; i < n; i++ {
		out[i] = Observation{
			Date:      r.Frame.Dates[i],
			HSI:       hsi[i],
			VHSI:      vhsi[i],
			NetBuy:    netBuy[i],
			AHPremium: ah[i],
			FearGreed: r.Components.Composite[i],
		}
	}
	return out
}

// IsMissing reports whether v represents an undefined value
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func clip(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(lo, math.Min(hi, v))
}
