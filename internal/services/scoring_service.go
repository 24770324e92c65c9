package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"hkpulse/internal/config"
	apperrors "hkpulse/internal/errors"
	"hkpulse/internal/exporter"
	"hkpulse/internal/infrastructure"
	"hkpulse/internal/sentiment"
)

// Workbook sheet names
const (
	SheetFearGreed  = "FearGreed"
	SheetComponents = "Components"
)

// ScoringReport describes one scoring run
type ScoringReport struct {
	Rows       int
	Defined    int
	Latest     sentiment.Summary
	HasLatest  bool
	IndexCSV   string
	Components string
	Workbook   string
	Duration   time.Duration
}

// ScoringService loads the acquired series, computes the index and writes
// the result tables.
type ScoringService struct {
	paths   *config.Paths
	sources []sentiment.Source
	engine  *sentiment.Engine
	writer  *exporter.CSVWriter
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewScoringService creates a scoring service reading from paths.DataDir
func NewScoringService(paths *config.Paths, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *ScoringService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoringService{
		paths:   paths,
		sources: sentiment.Sources,
		engine:  sentiment.NewEngine(logger),
		writer:  exporter.NewCSVWriter(nil, logger),
		metrics: metrics,
		logger:  logger.With(slog.String("service", "scoring")),
	}
}

// Run scores the data directory. No output is written when any input is
// missing or malformed.
func (s *ScoringService) Run(ctx context.Context) (*ScoringReport, error) {
	start := time.Now()
	logger := s.logger
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	series, err := sentiment.LoadSources(ctx, s.paths.DataDir, s.sources)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Score(ctx, series...)
	if err != nil {
		return nil, err
	}

	report := &ScoringReport{
		Rows:       result.Len(),
		Defined:    result.Defined(),
		IndexCSV:   s.paths.IndexCSV,
		Components: s.paths.ComponentsCSV,
		Workbook:   s.paths.Workbook,
	}

	if err := s.writer.WriteSimpleCSV(s.paths.IndexCSV, sentiment.ResultHeaders, result.Records()); err != nil {
		return nil, apperrors.NewStorageError(apperrors.StageScoring, "write index table", err)
	}
	if err := s.writer.WriteSimpleCSV(s.paths.ComponentsCSV, sentiment.ComponentHeaders, result.ComponentRecords()); err != nil {
		return nil, apperrors.NewStorageError(apperrors.StageScoring, "write component table", err)
	}
	if err := s.writer.WriteWorkbook(s.paths.Workbook, workbookSheets(result)); err != nil {
		return nil, apperrors.NewStorageError(apperrors.StageScoring, "write workbook", err)
	}

	report.Latest, report.HasLatest = result.Latest()
	report.Duration = time.Since(start)
	s.metrics.RecordScore(ctx, report.Rows, report.Latest.FearGreed, report.HasLatest)

	attrs := []any{
		slog.Int("rows", report.Rows),
		slog.Int("defined", report.Defined),
		slog.String("output", s.paths.IndexCSV),
		slog.Duration("duration", report.Duration),
	}
	if report.HasLatest {
		attrs = append(attrs,
			slog.String("latest_date", report.Latest.Date.Format(config.DateLayout)),
			slog.Float64("fear_greed", report.Latest.FearGreed),
			slog.String("band", report.Latest.Band))
	}
	logger.Info("Scoring complete", attrs...)
	return report, nil
}

func workbookSheets(result *sentiment.Result) []exporter.Sheet {
	return []exporter.Sheet{
		{Name: SheetFearGreed, Headers: sentiment.ResultHeaders, Rows: toCells(result.Records())},
		{Name: SheetComponents, Headers: sentiment.ComponentHeaders, Rows: toCells(result.ComponentRecords())},
	}
}

// toCells keeps the date as text and converts the rest to numbers so the
// sheet is usable for charting. Empty cells stay empty.
func toCells(records [][]string) [][]interface{} {
	rows := make([][]interface{}, len(records))
	for i, record := range records {
		row := make([]interface{}, len(record))
		for j, v := range record {
			if v == "" {
				continue
			}
			if j == 0 {
				row[j] = v
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				row[j] = v
				continue
			}
			row[j] = f
		}
		rows[i] = row
	}
	return rows
}
