package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditrisk/internal/config"
	"creditrisk/internal/infrastructure"
	"creditrisk/internal/operations"
)

type stepFunc struct {
	operations.BaseStep
	fn func(ctx context.Context) error
}

func (s *stepFunc) Execute(ctx context.Context, state *operations.OperationState) error {
	return s.fn(ctx)
}

func newStep(id string, fn func(ctx context.Context) error) operations.Step {
	return &stepFunc{BaseStep: operations.NewBaseStep(id, id), fn: fn}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewApplication(t *testing.T) {
	var buf bytes.Buffer
	a, err := newApplication(config.Default(), &buf)
	require.NoError(t, err)

	assert.NotNil(t, a.Paths)
	assert.NotNil(t, a.Telemetry)
	assert.NotNil(t, a.Manager)
	assert.True(t, filepath.IsAbs(a.Paths.ProcessedFile))

	ctx := infrastructure.EnsureRunID(context.Background())
	state, err := a.Execute(ctx, "test", []operations.Step{
		newStep("one", func(context.Context) error { return nil }),
	})
	require.NoError(t, err)
	assert.Equal(t, infrastructure.GetRunID(ctx), state.ID)
	assert.Contains(t, buf.String(), `"operation_completed"`)

	require.NoError(t, a.Stop(context.Background()))
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "training:\n  test_ratio: 2\n")
	_, err := NewApplication(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestNewCommand(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "metrics.prom")
	path := writeConfig(t, "telemetry:\n  trace_exporter: none\n  metrics_file: "+metricsFile+"\n")

	tests := []struct {
		name    string
		run     RunFunc
		wantErr string
	}{
		{
			name: "success",
			run: func(ctx context.Context, a *Application) error {
				assert.NotEmpty(t, infrastructure.GetRunID(ctx))
				_, err := a.Execute(ctx, "test", []operations.Step{
					newStep("one", func(context.Context) error { return nil }),
				})
				return err
			},
		},
		{
			name: "run error is returned",
			run: func(ctx context.Context, a *Application) error {
				return errors.New("boom")
			},
			wantErr: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCommand("stage", "test stage", tt.run)
			cmd.SetArgs([]string{"--config", path})
			cmd.SetOut(&bytes.Buffer{})

			err := cmd.ExecuteContext(context.Background())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.FileExists(t, metricsFile)
		})
	}
}

func TestNewCommand_RejectsArgs(t *testing.T) {
	cmd := NewCommand("stage", "test stage", func(context.Context, *Application) error { return nil })
	cmd.SetArgs([]string{"extra"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestStringDefault(t *testing.T) {
	assert.Equal(t, "a", StringDefault("a", "b"))
	assert.Equal(t, "b", StringDefault("", "b"))
}
