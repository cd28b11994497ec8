package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"creditrisk/internal/infrastructure"
)

// OperationTracer wraps step execution in spans and step metrics
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer over tel. A nil tel yields a tracer
// that records nothing.
func NewOperationTracer(tel *infrastructure.Telemetry) *OperationTracer {
	if tel == nil {
		tel = infrastructure.NewNoopTelemetry()
	}
	return &OperationTracer{
		tracer:  tel.Tracer,
		metrics: tel.Metrics,
	}
}

// TraceOperation creates a span for the entire operation
func (ot *OperationTracer) TraceOperation(ctx context.Context, operation string, state *OperationState) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, fmt.Sprintf("operation.%s", operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.String("operation.name", operation),
			attribute.String("run_id", infrastructure.GetRunID(ctx)),
		),
	)
}

// TraceStep creates a span for an individual step
func (ot *OperationTracer) TraceStep(ctx context.Context, operation string, step Step) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, fmt.Sprintf("operation.step.%s", step.ID()),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.name", operation),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// RecordStepCompletion closes out a step span and records its metrics
func (ot *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, operation, stepID string, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}
	ot.metrics.RecordStep(ctx, operation, stepID, duration, err == nil)
}

// RecordOperationCompletion closes out the operation span
func (ot *OperationTracer) RecordOperationCompletion(span trace.Span, state *OperationState, err error) {
	span.SetAttributes(
		attribute.String("operation.status", string(state.Status)),
		attribute.Float64("operation.duration_seconds", state.Duration().Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "operation completed")
}

// Metrics exposes the pipeline instruments to steps
func (ot *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return ot.metrics
}
