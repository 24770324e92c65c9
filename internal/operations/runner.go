package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	apperrors "hkpulse/internal/errors"
	"hkpulse/internal/infrastructure"
)

// Runner executes steps in order and stops at the first failure. Every
// step runs inside its own span and is recorded in the stage metrics.
type Runner struct {
	steps   []Step
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewRunner creates a runner. tel may be nil.
func NewRunner(tel *infrastructure.Telemetry, logger *slog.Logger, steps ...Step) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		steps:  steps,
		tracer: tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName),
		logger: logger,
	}
	if tel != nil {
		r.tracer = tel.Tracer
		r.metrics = tel.Metrics
	}
	return r
}

// Run executes every step. The returned state is complete even when an
// error is returned.
func (r *Runner) Run(ctx context.Context) (*OperationState, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	state := NewOperationState(infrastructure.GetTraceID(ctx))
	state.Status = OperationStatusRunning

	ctx, span := r.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("run_id", state.ID)))
	defer span.End()

	r.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", state.ID),
		slog.Int("steps", len(r.steps)))

	var runErr error
	for _, step := range r.steps {
		if runErr != nil {
			skipped := NewStepState(step.ID(), step.Name())
			skipped.Skip("previous step failed")
			state.addStep(skipped)
			continue
		}
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("run cancelled before %s: %w", step.ID(), err)
			skipped := NewStepState(step.ID(), step.Name())
			skipped.Skip("cancelled")
			state.addStep(skipped)
			continue
		}
		runErr = r.runStep(ctx, state, step)
	}

	state.finish(runErr)
	r.metrics.RecordRuntime(ctx)

	if runErr != nil {
		infrastructure.RecordError(ctx, runErr)
		r.logger.ErrorContext(ctx, "operation_error",
			slog.String("operation_id", state.ID),
			slog.String("stage", apperrors.StageOf(runErr)),
			slog.String("series", apperrors.SeriesOf(runErr)),
			slog.String("error", runErr.Error()))
		return state, runErr
	}

	r.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", state.ID),
		slog.Duration("duration", time.Since(state.StartTime)))
	return state, nil
}

func (r *Runner) runStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := NewStepState(step.ID(), step.Name())
	state.addStep(stepState)

	ctx, span := r.tracer.Start(ctx, "stage."+step.ID(),
		trace.WithAttributes(attribute.String("stage", step.ID())))
	start := time.Now()
	defer infrastructure.SpanDuration(span, start)

	r.logger.InfoContext(ctx, "stage_start", slog.String("stage", step.ID()))
	stepState.Start()

	err := step.Execute(ctx, state)
	duration := time.Since(start)
	r.metrics.RecordStage(ctx, step.ID(), duration, err)

	if err != nil {
		stepState.Fail(err)
		infrastructure.RecordError(ctx, err)
		return err
	}

	stepState.Complete("")
	r.logger.InfoContext(ctx, "stage_complete",
		slog.String("stage", step.ID()),
		slog.Duration("duration", duration))
	return nil
}
