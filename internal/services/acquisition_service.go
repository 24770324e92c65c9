package services

import (
	"context"
	"io"
	"log/slog"

	"hkpulse/internal/config"
	"hkpulse/internal/exporter"
	"hkpulse/internal/files"
	"hkpulse/internal/infrastructure"
	"hkpulse/internal/marketdata"
)

// AcquisitionService fetches every raw series into the data directory
type AcquisitionService struct {
	fetcher *marketdata.Fetcher
	logger  *slog.Logger
}

// NewAcquisitionService wires the provider client to the data files. A nil
// provider uses the Eastmoney client built from cfg.Provider; progress may
// be nil to suppress the progress bar.
func NewAcquisitionService(cfg *config.Config, paths *config.Paths, provider marketdata.Provider,
	metrics *infrastructure.PipelineMetrics, progress io.Writer, logger *slog.Logger) *AcquisitionService {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		provider = marketdata.NewClient(cfg.Provider, logger)
	}

	writer := exporter.NewCSVWriter(files.NewManager(logger), logger)
	opts := []marketdata.FetcherOption{marketdata.WithMetrics(metrics)}
	if progress != nil {
		opts = append(opts, marketdata.WithProgress(progress))
	}

	jobs := marketdata.DefaultJobs(provider, cfg.Provider, paths)
	return &AcquisitionService{
		fetcher: marketdata.NewFetcher(jobs, writer, logger, opts...),
		logger:  logger.With(slog.String("service", "acquisition")),
	}
}

// Run fetches all series. It fails only when no series was written.
func (s *AcquisitionService) Run(ctx context.Context) (*marketdata.FetchReport, error) {
	report, err := s.fetcher.FetchAll(ctx)
	if report != nil {
		for _, failed := range report.Failed() {
			s.logger.Warn("Series skipped",
				slog.String("series", failed.Series),
				slog.String("error", failed.Err.Error()))
		}
	}
	return report, err
}
