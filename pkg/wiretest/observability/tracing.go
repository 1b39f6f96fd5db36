package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the wiretest tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("wiretest")

// SpanManager handles trace span lifecycle for correlation operations.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartAwaitSpan starts a span covering one await call.
	StartAwaitSpan(ctx context.Context, key string) (context.Context, trace.Span)

	// StartStoreSpan starts a span covering one reply store.
	StartStoreSpan(ctx context.Context, key string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartAwaitSpan starts a span covering one await call.
func (m *otelSpanManager) StartAwaitSpan(ctx context.Context, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "wiretest.correlation.await",
		trace.WithAttributes(
			attribute.String("correlation.key", key),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartStoreSpan starts a span covering one reply store.
func (m *otelSpanManager) StartStoreSpan(ctx context.Context, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "wiretest.correlation.store",
		trace.WithAttributes(
			attribute.String("correlation.key", key),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
