package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "hkpulse/internal/errors"
)

// RequiredSeries lists the canonical series the engine needs.
var RequiredSeries = []string{ColHSI, ColVHSI, ColNetBuy, ColAHPremium}

// Engine computes the fear & greed composite from aligned source series.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a scoring engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "sentiment_engine"))}
}

// Score aligns the given series and computes every component and the
// composite. All four required series must be present and carry at least
// one value.
func (e *Engine) Score(ctx context.Context, series ...Series) (*Result, error) {
	start := time.Now()

	if err := validateInputs(series); err != nil {
		e.logger.ErrorContext(ctx, "input validation failed", "error", err)
		return nil, err
	}

	frame, err := Merge(series...)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, apperrors.StageScoring, "merge series", err)
	}
	ForwardFill(frame)

	e.logger.InfoContext(ctx, "series aligned",
		"rows", frame.Len(),
		"first_date", frame.Dates[0].Format("2006-01-02"),
		"last_date", frame.Dates[frame.Len()-1].Format("2006-01-02"),
	)

	result := &Result{Frame: frame}
	result.Components = computeComponents(frame)

	e.logger.InfoContext(ctx, "scoring completed",
		"rows", frame.Len(),
		"defined_composite", countDefined(result.Components.Composite),
		"duration", time.Since(start),
	)
	return result, nil
}

func computeComponents(frame *Frame) Components {
	hsi := frame.Columns[ColHSI]
	vhsi := frame.Columns[ColVHSI]
	netBuy := frame.Columns[ColNetBuy]
	premium := frame.Columns[ColAHPremium]

	volatility := VolatilityScores(vhsi, VolatilityWindow)
	z, streak, flow := FlowScores(netBuy, FlowWindow)
	valuation := ValuationScores(premium, PremiumWindow)
	trend := TrendScores(hsi, TrendWindow)

	return Components{
		Volatility:    volatility,
		FlowZ:         z,
		Streak:        streak,
		Flow:          flow,
		Valuation:     valuation,
		Momentum:      trend.Momentum,
		MomentumScore: trend.MomentumScore,
		MAScore:       trend.MAScore,
		Trend:         trend.Score,
		Composite:     Composite(valuation, flow, volatility, trend.Score),
	}
}

func validateInputs(series []Series) error {
	present := make(map[string]Series, len(series))
	for _, s := range series {
		present[s.Name] = s
	}
	for _, name := range RequiredSeries {
		s, ok := present[name]
		if !ok {
			return apperrors.NewValidationError(apperrors.StageScoring, name, "required series missing")
		}
		if s.Len() == 0 {
			return apperrors.NewValidationError(apperrors.StageScoring, name, "series is empty")
		}
		if s.Defined() == 0 {
			return apperrors.NewValidationError(apperrors.StageScoring, name, "series has no defined values")
		}
	}
	if len(present) != len(series) {
		return apperrors.NewValidationError(apperrors.StageScoring, "", fmt.Sprintf("duplicate series among %d inputs", len(series)))
	}
	return nil
}

func countDefined(values []float64) int {
	n := 0
	for _, v := range values {
		if !IsMissing(v) {
			n++
		}
	}
	return n
}
