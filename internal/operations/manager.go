package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"creditrisk/internal/infrastructure"
)

// Manager executes the steps of an operation in order
type Manager struct {
	tracer *OperationTracer
	logger *slog.Logger
}

// NewManager creates a manager that reports to tel. A nil tel records nothing.
func NewManager(tel *infrastructure.Telemetry, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Manager{
		tracer: NewOperationTracer(tel),
		logger: infrastructure.WithComponent(logger, "operations"),
	}
}

// Tracer returns the tracer used for step spans and metrics
func (m *Manager) Tracer() *OperationTracer {
	return m.tracer
}

// Execute runs steps sequentially under the given operation name. The
// first failing step stops the run; every later step is marked skipped.
// The returned state is never nil, so callers can inspect partial results.
func (m *Manager) Execute(ctx context.Context, name string, steps []Step) (*OperationState, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	state := NewOperationState(infrastructure.GetRunID(ctx))
	for _, step := range steps {
		state.AddStep(NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperation(ctx, name, state)
	defer span.End()

	logger := m.logger.With(
		slog.String("operation", name),
		slog.String("run_id", state.ID))
	logger.InfoContext(ctx, "operation_start", slog.Int("step_count", len(steps)))

	state.Start()
	err := m.executeSequential(ctx, logger, name, state, steps)
	if err != nil {
		state.Fail(err)
		logger.ErrorContext(ctx, "operation_failed",
			slog.Duration("duration", state.Duration()),
			slog.String("error", err.Error()))
	} else {
		state.Complete()
		logger.InfoContext(ctx, "operation_completed",
			slog.Duration("duration", state.Duration()))
	}
	m.tracer.RecordOperationCompletion(span, state, err)

	return state, err
}

func (m *Manager) executeSequential(ctx context.Context, logger *slog.Logger, name string, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			logger.WarnContext(ctx, "operation_cancelled", slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		logger.InfoContext(ctx, "executing_step",
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, logger, name, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

func (m *Manager) executeStep(ctx context.Context, logger *slog.Logger, name string, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())
	if stepState == nil {
		return NewFatalError(fmt.Sprintf("state for step %s not found", step.ID()), nil)
	}

	if err := step.Validate(state); err != nil {
		logger.WarnContext(ctx, "step_validation_failed",
			slog.String("step", step.ID()),
			slog.String("error", err.Error()))
		stepState.Fail(err)
		return NewValidationError(step.ID(), "step preconditions not met", err)
	}

	stepCtx, span := m.tracer.TraceStep(ctx, name, step)
	defer span.End()

	stepState.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)
	m.tracer.RecordStepCompletion(stepCtx, span, name, step.ID(), duration, err)

	if err != nil {
		stepState.Fail(err)
		logger.ErrorContext(ctx, "step_failed",
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return WrapError(err, step.ID())
	}

	stepState.Complete()
	logger.InfoContext(ctx, "step_completed",
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}
