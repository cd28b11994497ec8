package operations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditrisk/internal/infrastructure"
	"creditrisk/internal/shared/testutil"
)

type funcStep struct {
	BaseStep
	run      func(ctx context.Context, state *OperationState) error
	validate func(state *OperationState) error
}

func newFuncStep(id string, run func(ctx context.Context, state *OperationState) error) *funcStep {
	return &funcStep{BaseStep: NewBaseStep(id, id), run: run}
}

func (s *funcStep) Execute(ctx context.Context, state *OperationState) error {
	if s.run == nil {
		return nil
	}
	return s.run(ctx, state)
}

func (s *funcStep) Validate(state *OperationState) error {
	if s.validate == nil {
		return nil
	}
	return s.validate(state)
}

func TestManager_ExecutesStepsInOrder(t *testing.T) {
	var order []string
	record := func(id string) *funcStep {
		return newFuncStep(id, func(ctx context.Context, state *OperationState) error {
			order = append(order, id)
			state.SetContext(id, true)
			return nil
		})
	}

	m := NewManager(infrastructure.NewNoopTelemetry(), testutil.DiscardLogger())
	state, err := m.Execute(context.Background(), "test", []Step{record("a"), record("b"), record("c")})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, OperationStatusCompleted, state.Status)
	for _, s := range state.Steps() {
		assert.Equal(t, StepStatusCompleted, s.GetStatus(), s.ID)
	}
	_, ok := state.GetContext("c")
	assert.True(t, ok)
}

func TestManager_UsesRunIDFromContext(t *testing.T) {
	ctx := infrastructure.WithRunID(context.Background(), "run-123")

	m := NewManager(nil, testutil.DiscardLogger())
	state, err := m.Execute(ctx, "test", []Step{newFuncStep("a", nil)})
	require.NoError(t, err)
	assert.Equal(t, "run-123", state.ID)
}

func TestManager_FailureSkipsRemainingSteps(t *testing.T) {
	boom := errors.New("boom")
	ran := false

	m := NewManager(infrastructure.NewNoopTelemetry(), testutil.DiscardLogger())
	state, err := m.Execute(context.Background(), "test", []Step{
		newFuncStep("a", nil),
		newFuncStep("b", func(context.Context, *OperationState) error { return boom }),
		newFuncStep("c", func(context.Context, *OperationState) error { ran = true; return nil }),
	})

	require.Error(t, err)
	assert.False(t, ran)
	assert.ErrorIs(t, err, boom)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "b", opErr.Step)
	assert.Equal(t, ErrorTypeExecution, opErr.Type)

	assert.Equal(t, OperationStatusFailed, state.Status)
	assert.Equal(t, StepStatusCompleted, state.GetStep("a").GetStatus())
	assert.Equal(t, StepStatusFailed, state.GetStep("b").GetStatus())
	assert.Equal(t, StepStatusSkipped, state.GetStep("c").GetStatus())
}

func TestManager_ValidateFailureStopsBeforeExecute(t *testing.T) {
	executed := false
	step := newFuncStep("a", func(context.Context, *OperationState) error { executed = true; return nil })
	step.validate = func(*OperationState) error { return errors.New("input missing") }

	m := NewManager(nil, testutil.DiscardLogger())
	_, err := m.Execute(context.Background(), "test", []Step{step})

	require.Error(t, err)
	assert.False(t, executed)
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrorTypeValidation, opErr.Type)
	assert.Contains(t, err.Error(), "input missing")
}

func TestManager_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	m := NewManager(nil, testutil.DiscardLogger())
	state, err := m.Execute(ctx, "test", []Step{
		newFuncStep("a", func(context.Context, *OperationState) error { cancel(); return nil }),
		newFuncStep("b", nil),
	})

	require.Error(t, err)
	assert.True(t, IsCancellation(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StepStatusSkipped, state.GetStep("b").GetStatus())
}

func TestManager_RecordsStepMetrics(t *testing.T) {
	tel := infrastructure.NewNoopTelemetry()
	m := NewManager(tel, testutil.DiscardLogger())

	_, err := m.Execute(context.Background(), "test", []Step{newFuncStep("a", nil)})
	require.NoError(t, err)

	families, err := tel.Registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["creditrisk_steps_total"], "registered families: %v", names)
}
