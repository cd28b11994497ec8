package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"creditrisk/internal/config"
)

var (
	loggerMu   sync.Mutex
	logger     *slog.Logger
	loggerOnce sync.Once
	logFile    *os.File
)

type contextKey string

// RunIDContextKey is the key for storing the pipeline run ID in context
const RunIDContextKey contextKey = "run_id"

// InitializeLogger creates the process logger and installs it as the slog
// default. Later calls return the first logger.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	loggerOnce.Do(func() {
		var l *slog.Logger
		if l, err = createLogger(cfg, os.Stderr); err != nil {
			return
		}
		loggerMu.Lock()
		logger = l
		loggerMu.Unlock()
		slog.SetDefault(l)
	})
	return GetLogger(), err
}

// GetLogger returns the process logger, or slog's default before
// InitializeLogger ran
func GetLogger() *slog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// NewLogger builds a logger writing JSON to console according to cfg.
// It does not replace the process logger.
func NewLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, error) {
	return createLogger(cfg, console)
}

func createLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, error) {
	out, err := logWriter(cfg, console)
	if err != nil {
		return nil, err
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     parseLogLevel(cfg.Level),
	})
	return slog.New(&runHandler{Handler: handler}), nil
}

// logWriter resolves the output mode. File modes keep the file open until
// CloseLogFile.
func logWriter(cfg config.LoggingConfig, console io.Writer) (io.Writer, error) {
	mode := strings.ToLower(cfg.Output)
	if mode != "file" && mode != "both" {
		return console, nil
	}

	f, err := openLogFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	swapLogFile(f)

	if mode == "file" {
		return f, nil
	}
	return io.MultiWriter(console, f), nil
}

// runHandler adds run_id from the record's context
type runHandler struct {
	slog.Handler
}

func (h *runHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetRunID(ctx); id != "" {
		r.AddAttrs(slog.String("run_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *runHandler) WithGroup(name string) slog.Handler {
	return &runHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLogLevel accepts slog level names in any case plus "warning".
// Unknown names mean info.
func parseLogLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDContextKey, runID)
}

// GetRunID returns the run ID stored in ctx, or ""
func GetRunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RunIDContextKey).(string)
	return id
}

// CloseLogFile closes the log file opened by a file output mode, if any
func CloseLogFile() error {
	return swapLogFile(nil)
}

// ResetLoggerForTesting forgets the process logger so the next
// InitializeLogger call builds a new one.
func ResetLoggerForTesting() {
	CloseLogFile()
	loggerMu.Lock()
	logger = nil
	loggerMu.Unlock()
	loggerOnce = sync.Once{}
}

// swapLogFile installs f as the open log file and closes the previous one
func swapLogFile(f *os.File) error {
	loggerMu.Lock()
	prev := logFile
	logFile = f
	loggerMu.Unlock()

	if prev == nil {
		return nil
	}
	return prev.Close()
}

// openLogFile opens path for appending, creating it and its directory
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
