// Package sentiment computes the Hong Kong equity fear & greed index.
//
// The index blends four daily signals into one score in [0, 100]:
//
//  1. Volatility: the VHSI level bucketed against its trailing 252-day
//     80th/50th/20th percentiles (high volatility reads as fear)
//  2. Capital flow: the 252-day z-score of southbound net buying plus a
//     signed bonus for consecutive same-direction days
//  3. Valuation: the 1000-day percentile rank of the AH premium index
//  4. Trend: 20-day momentum ranked over the full history plus the HSI's
//     position against its 20-day moving average
//
// The composite weights are 0.25 valuation, 0.30 flow, 0.30 volatility and
// 0.15 trend.
//
// # Architecture
//
//   - types.go: series, observations and component containers
//   - align.go: outer-join merge on date and the separate forward-fill pass
//   - rolling.go: trailing-window quantile, mean/std and percentile rank
//   - volatility.go, flow.go, valuation.go, trend.go: component scores
//   - composite.go: weights, blending and sentiment bands
//   - engine.go: validation and the end-to-end scoring run
//   - loader.go: CSV input with header aliasing
//   - output.go, summary.go: result tables and the latest reading
//
// # Missing values
//
// Undefined values are NaN throughout. Rolling windows that are incomplete
// or contain a NaN yield NaN. Volatility falls back to 50 and momentum to
// 25 in that case; valuation and flow stay undefined and so does the
// composite.
//
// # Usage Example
//
//	series, err := sentiment.LoadSources(ctx, "data", sentiment.Sources)
//	if err != nil {
//	    return err
//	}
//	result, err := sentiment.NewEngine(logger).Score(ctx, series...)
//	if err != nil {
//	    return err
//	}
//	if latest, ok := result.Latest(); ok {
//	    fmt.Print(latest)
//	}
package sentiment
