package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hkpulse/internal/chart"
	"hkpulse/internal/config"
	apperrors "hkpulse/internal/errors"
)

// ChartReport describes one rendered chart
type ChartReport struct {
	Path   string
	Points int
	From   time.Time
	To     time.Time
}

// ChartService renders the scoring output from the configured start date
type ChartService struct {
	paths    *config.Paths
	start    time.Time
	renderer *chart.Renderer
	logger   *slog.Logger
}

// NewChartService creates a chart service from the chart configuration
func NewChartService(cfg config.ChartConfig, paths *config.Paths, logger *slog.Logger) (*ChartService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start, err := cfg.Start()
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("invalid chart start date %q", cfg.StartDate), err)
	}
	return &ChartService{
		paths:    paths,
		start:    start,
		renderer: chart.NewRenderer(chart.Options{Title: cfg.Title}, logger),
		logger:   logger.With(slog.String("service", "chart")),
	}, nil
}

// Run reads the index table and writes the chart file
func (s *ChartService) Run(ctx context.Context) (*ChartReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	points, err := chart.LoadResult(s.paths.IndexCSV)
	if err != nil {
		return nil, err
	}
	points = chart.FilterFrom(points, s.start)
	if len(points) == 0 {
		return nil, apperrors.NewValidationError(apperrors.StageVisualization, "",
			"no rows on or after "+s.start.Format(config.DateLayout))
	}

	if err := s.renderer.RenderFile(points, s.paths.ChartFile); err != nil {
		return nil, err
	}
	return &ChartReport{
		Path:   s.paths.ChartFile,
		Points: len(points),
		From:   points[0].Date,
		To:     points[len(points)-1].Date,
	}, nil
}
