package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// LogRecord is one captured log call
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a slog.Handler that keeps every record in memory
type LogRecorder struct {
	mu      *sync.Mutex
	records *[]LogRecord
	attrs   []slog.Attr
}

// NewLogRecorder returns an empty recorder
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{mu: &sync.Mutex{}, records: &[]LogRecord{}}
}

// Logger returns a logger writing to r
func (r *LogRecorder) Logger() *slog.Logger {
	return slog.New(r)
}

// Enabled implements slog.Handler; every level is recorded
func (r *LogRecorder) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler
func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any, len(r.attrs)+rec.NumAttrs())
	for _, a := range r.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	*r.records = append(*r.records, LogRecord{
		Time:    rec.Time,
		Level:   rec.Level,
		Message: rec.Message,
		Attrs:   attrs,
	})
	return nil
}

// WithAttrs implements slog.Handler. Derived handlers share the record buffer.
func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogRecorder{
		mu:      r.mu,
		records: r.records,
		attrs:   append(append([]slog.Attr(nil), r.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (r *LogRecorder) WithGroup(string) slog.Handler {
	return r
}

// Records returns a copy of the captured records
func (r *LogRecorder) Records() []LogRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogRecord(nil), *r.records...)
}

// Find returns the records with the given message
func (r *LogRecorder) Find(message string) []LogRecord {
	var out []LogRecord
	for _, rec := range r.Records() {
		if rec.Message == message {
			out = append(out, rec)
		}
	}
	return out
}

// DiscardLogger returns a JSON logger writing nowhere
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
