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

	"github.com/spf13/cobra"

	"creditrisk/internal/config"
	"creditrisk/internal/infrastructure"
	"creditrisk/internal/operations"
	"creditrisk/pkg/contracts"
)

// ShutdownTimeout bounds the telemetry flush after a run
const ShutdownTimeout = 5 * time.Second

// Application holds what a stage command needs to run one operation
type Application struct {
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Manager   *operations.Manager
}

// NewApplication loads configuration from configFile (empty means the usual
// search locations) and initializes logging and telemetry.
func NewApplication(configFile string) (*Application, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	return newApplication(cfg, nil)
}

func newApplication(cfg *config.Config, console io.Writer) (*Application, error) {
	paths, err := cfg.GetPaths("")
	if err != nil {
		return nil, err
	}

	var logger *slog.Logger
	if console != nil {
		logger, err = infrastructure.NewLogger(cfg.Logging, console)
	} else {
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	paths.LogPathResolution(logger)

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("telemetry disabled", slog.String("error", err.Error()))
		tel = infrastructure.NewNoopTelemetry()
	}

	return &Application{
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		Telemetry: tel,
		Manager:   operations.NewManager(tel, logger),
	}, nil
}

// Execute runs steps as operation name
func (a *Application) Execute(ctx context.Context, name string, steps []operations.Step) (*operations.OperationState, error) {
	return a.Manager.Execute(ctx, name, steps)
}

// Stop flushes telemetry and closes the log file
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("telemetry shutdown failed", slog.String("error", err.Error()))
		firstErr = err
	}
	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// RunFunc runs one stage with a ready application
type RunFunc func(ctx context.Context, a *Application) error

// NewCommand builds the root command of a stage binary. The --config flag
// selects the YAML config file; run receives a context that is cancelled
// on SIGINT or SIGTERM and carries a fresh run ID.
func NewCommand(use, short string, run RunFunc) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Version:       contracts.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := NewApplication(configFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = infrastructure.EnsureRunID(ctx)

			runErr := run(ctx, a)
			if runErr != nil {
				infrastructure.WithError(a.Logger, runErr).ErrorContext(ctx, "stage_failed", slog.String("stage", use))
			}
			if err := a.Stop(context.Background()); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
	cmd.SetVersionTemplate(contracts.GetFullVersionString() + "\n")
	cmd.Flags().StringVar(&configFile, "config", "", "path to a YAML config file")

	return cmd
}

// Main executes cmd and exits non-zero with the error message on failure
func Main(cmd *cobra.Command) {
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name(), err)
		os.Exit(1)
	}
}

// StringDefault returns value, or def when value is empty
func StringDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
