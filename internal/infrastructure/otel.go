package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"creditrisk/internal/config"
	"creditrisk/pkg/contracts"
)

const (
	ServiceName = "creditrisk"
	MeterName   = "creditrisk"
)

// Telemetry holds the tracing and metrics providers of one command run.
// Metrics are kept in a private Prometheus registry and written to a
// textfile on Shutdown.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Metrics        *PipelineMetrics

	metricsFile string
	traceOut    io.Closer
	logger      *slog.Logger
}

// InitializeTelemetry sets up tracing and metrics for a command
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(contracts.Version),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	tel := &Telemetry{
		metricsFile: cfg.MetricsFile,
		logger:      logger,
	}

	if err := tel.initializeTracing(cfg, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := tel.initializeMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Debug("Telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metrics_file", cfg.MetricsFile))

	return tel, nil
}

// NewNoopTelemetry returns telemetry that records metrics in memory and
// discards spans
func NewNoopTelemetry() *Telemetry {
	tel, err := InitializeTelemetry(config.TelemetryConfig{TraceExporter: "none"}, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	if err != nil {
		// only reachable if instrument registration fails
		panic(fmt.Sprintf("noop telemetry: %v", err))
	}
	return tel
}

func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource) error {
	switch cfg.TraceExporter {
	case "", "none":
		t.Tracer = noop.NewTracerProvider().Tracer(MeterName)
		return nil
	case "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	var out io.Writer = os.Stdout
	if cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		t.traceOut = f
		out = f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	t.TracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	t.Tracer = t.TracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(contracts.Version))
	return nil
}

func (t *Telemetry) initializeMetrics(res *resource.Resource) error {
	t.Registry = prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(t.Registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.Meter = t.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(contracts.Version))

	t.Metrics, err = CreatePipelineMetrics(t.Meter)
	return err
}

// WriteMetrics writes the current registry contents in Prometheus text
// format. An empty path is a no-op.
func (t *Telemetry) WriteMetrics(path string) error {
	if path == "" || t.Registry == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// Shutdown writes the metrics textfile and stops the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if err := t.WriteMetrics(t.metricsFile); err != nil {
		errs = append(errs, err)
	}
	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if t.traceOut != nil {
		if err := t.traceOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}
	return nil
}

// PipelineMetrics holds the instruments recorded by the pipeline stages
type PipelineMetrics struct {
	RowsProcessed metric.Int64Counter
	StepsTotal    metric.Int64Counter
	StepDuration  metric.Float64Histogram
	ChecksTotal   metric.Int64Counter
	MappingGaps   metric.Int64Counter
	BytesFetched  metric.Int64Counter
}

// CreatePipelineMetrics registers the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rows, err := meter.Int64Counter(
		"creditrisk_rows_processed",
		metric.WithDescription("Rows handled by a pipeline stage"),
	)
	if err != nil {
		return nil, err
	}

	steps, err := meter.Int64Counter(
		"creditrisk_steps",
		metric.WithDescription("Pipeline steps executed"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"creditrisk_step_duration",
		metric.WithDescription("Pipeline step duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	checks, err := meter.Int64Counter(
		"creditrisk_checks",
		metric.WithDescription("Data validation checks evaluated"),
	)
	if err != nil {
		return nil, err
	}

	gaps, err := meter.Int64Counter(
		"creditrisk_mapping_gaps",
		metric.WithDescription("Cells whose categorical code had no mapping"),
	)
	if err != nil {
		return nil, err
	}

	fetched, err := meter.Int64Counter(
		"creditrisk_download",
		metric.WithDescription("Bytes downloaded from the dataset source"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsProcessed: rows,
		StepsTotal:    steps,
		StepDuration:  duration,
		ChecksTotal:   checks,
		MappingGaps:   gaps,
		BytesFetched:  fetched,
	}, nil
}

// RecordRows records n rows handled by stage
func (m *PipelineMetrics) RecordRows(ctx context.Context, stage string, n int) {
	if m == nil {
		return
	}
	m.RowsProcessed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordStep records the outcome and duration of a pipeline step
func (m *PipelineMetrics) RecordStep(ctx context.Context, operation, stepID string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("step", stepID),
		attribute.String("status", statusLabel(success)),
	}
	m.StepsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.StepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordCheck records the result of one validation check
func (m *PipelineMetrics) RecordCheck(ctx context.Context, check, severity string, passed bool) {
	if m == nil {
		return
	}
	m.ChecksTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("severity", severity),
		attribute.String("status", statusLabel(passed)),
	))
}

// RecordMappingGaps records unmapped cells of a column
func (m *PipelineMetrics) RecordMappingGaps(ctx context.Context, column string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.MappingGaps.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", column)))
}

// RecordBytesFetched records downloaded bytes
func (m *PipelineMetrics) RecordBytesFetched(ctx context.Context, n int64) {
	if m == nil {
		return
	}
	m.BytesFetched.Add(ctx, n)
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
