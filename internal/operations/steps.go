package operations

import (
	"context"
	"fmt"

	apperrors "hkpulse/internal/errors"
	"hkpulse/internal/marketdata"
	"hkpulse/internal/services"
)

// AcquisitionStep fetches the raw series
type AcquisitionStep struct {
	BaseStage
	service *services.AcquisitionService
}

// NewAcquisitionStep wraps an acquisition service
func NewAcquisitionStep(service *services.AcquisitionService) *AcquisitionStep {
	return &AcquisitionStep{
		BaseStage: NewBaseStage(apperrors.StageAcquisition, "Data Acquisition"),
		service:   service,
	}
}

// Execute fetches every series; partial failures are tolerated
func (s *AcquisitionStep) Execute(ctx context.Context, state *OperationState) error {
	report, err := s.service.Run(ctx)
	if report != nil {
		state.SetResult(s.ID(), report)
	}
	return err
}

// ScoringStep computes the index from the data directory
type ScoringStep struct {
	BaseStage
	service *services.ScoringService
}

// NewScoringStep wraps a scoring service
func NewScoringStep(service *services.ScoringService) *ScoringStep {
	return &ScoringStep{
		BaseStage: NewBaseStage(apperrors.StageScoring, "Scoring Engine"),
		service:   service,
	}
}

// Execute scores the acquired series
func (s *ScoringStep) Execute(ctx context.Context, state *OperationState) error {
	report, err := s.service.Run(ctx)
	if err != nil {
		return err
	}
	state.SetResult(s.ID(), report)
	return nil
}

// ChartStep renders the index chart
type ChartStep struct {
	BaseStage
	service *services.ChartService
}

// NewChartStep wraps a chart service
func NewChartStep(service *services.ChartService) *ChartStep {
	return &ChartStep{
		BaseStage: NewBaseStage(apperrors.StageVisualization, "Visualization"),
		service:   service,
	}
}

// Execute renders the chart
func (s *ChartStep) Execute(ctx context.Context, state *OperationState) error {
	report, err := s.service.Run(ctx)
	if err != nil {
		return err
	}
	state.SetResult(s.ID(), report)
	return nil
}

// FetchReport returns the acquisition result of a finished run
func FetchReport(state *OperationState) (*marketdata.FetchReport, error) {
	return resultAs[*marketdata.FetchReport](state, apperrors.StageAcquisition)
}

// ScoringReport returns the scoring result of a finished run
func ScoringReport(state *OperationState) (*services.ScoringReport, error) {
	return resultAs[*services.ScoringReport](state, apperrors.StageScoring)
}

// ChartReport returns the visualization result of a finished run
func ChartReport(state *OperationState) (*services.ChartReport, error) {
	return resultAs[*services.ChartReport](state, apperrors.StageVisualization)
}

func resultAs[T any](state *OperationState, stepID string) (T, error) {
	var zero T
	v, ok := state.GetResult(stepID)
	if !ok {
		return zero, fmt.Errorf("no result for step %s", stepID)
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected result type %T for step %s", v, stepID)
	}
	return out, nil
}
