package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hkpulse/internal/config"
	apperrors "hkpulse/internal/errors"
	"hkpulse/internal/infrastructure"
	"hkpulse/internal/marketdata"
	"hkpulse/internal/operations"
	"hkpulse/internal/services"
)

// BuildTime is set at compile time
var BuildTime = "dev"

const shutdownTimeout = 10 * time.Second

// Options are the command-line overrides shared by every binary
type Options struct {
	ConfigFile string
	DataDir    string
	OutputDir  string
	StartDate  string
	LogLevel   string
	// Progress receives the acquisition progress bar; nil hides it
	Progress io.Writer
	// Provider replaces the Eastmoney client, mainly for tests
	Provider marketdata.Provider
}

// Application holds the configuration and the shared infrastructure of
// one process.
type Application struct {
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry

	progress io.Writer
	provider marketdata.Provider
}

// NewApplication loads configuration, applies the overrides and sets up
// logging, telemetry and the working directories.
func NewApplication(opts Options) (*Application, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = config.LoadFile(opts.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.DataDir != "" {
		cfg.Paths.DataDir = opts.DataDir
	}
	if opts.OutputDir != "" {
		cfg.Paths.OutputDir = opts.OutputDir
	}
	if opts.StartDate != "" {
		cfg.Chart.StartDate = opts.StartDate
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize logger", err)
	}

	paths := cfg.ResolvePaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewStorageError("", "failed to create directories", err)
	}

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize telemetry", err)
	}

	logger.Info("Application initialized",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("build_time", BuildTime),
		slog.String("data_dir", paths.DataDir),
		slog.String("output_dir", paths.OutputDir))

	return &Application{
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		Telemetry: tel,
		progress:  opts.Progress,
		provider:  opts.Provider,
	}, nil
}

// AcquisitionStep builds the data acquisition stage
func (a *Application) AcquisitionStep() operations.Step {
	svc := services.NewAcquisitionService(a.Config, a.Paths, a.provider, a.Telemetry.Metrics, a.progress, a.Logger)
	return operations.NewAcquisitionStep(svc)
}

// ScoringStep builds the scoring stage
func (a *Application) ScoringStep() operations.Step {
	return operations.NewScoringStep(services.NewScoringService(a.Paths, a.Telemetry.Metrics, a.Logger))
}

// ChartStep builds the visualization stage
func (a *Application) ChartStep() (operations.Step, error) {
	svc, err := services.NewChartService(a.Config.Chart, a.Paths, a.Logger)
	if err != nil {
		return nil, err
	}
	return operations.NewChartStep(svc), nil
}

// Run executes the steps until they finish or the process is interrupted
func (a *Application) Run(steps ...operations.Step) (*operations.OperationState, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := operations.NewRunner(a.Telemetry, a.Logger, steps...)
	return runner.Run(ctx)
}

// Close flushes telemetry and the log file
func (a *Application) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.Telemetry.Shutdown(ctx); err != nil {
		a.Logger.Error("Error shutting down telemetry", slog.String("error", err.Error()))
		firstErr = err
	}
	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Exit logs err with its stage and series and terminates the process
// with status 1.
func Exit(logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("Pipeline failed",
		slog.String("stage", apperrors.StageOf(err)),
		slog.String("series", apperrors.SeriesOf(err)),
		slog.String("error", err.Error()))
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
