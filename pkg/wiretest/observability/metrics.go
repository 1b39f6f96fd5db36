package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records correlation-layer metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordStore records a reply being stored under a correlation key.
	RecordStore(ctx context.Context)

	// RecordAwait records a completed await with its wait duration and
	// whether it consumed a reply or timed out.
	RecordAwait(ctx context.Context, duration time.Duration, consumed bool)

	// RecordSelectorRejection records a buffered reply rejected by a
	// selector during an await.
	RecordSelectorRejection(ctx context.Context)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	repliesStored      metric.Int64Counter
	awaits             metric.Int64Counter
	awaitLatency       metric.Float64Histogram
	awaitTimeouts      metric.Int64Counter
	selectorRejections metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("wiretest")

	repliesStored, err := meter.Int64Counter("wiretest.correlation.replies_stored",
		metric.WithDescription("Number of replies stored under a correlation key"),
	)
	if err != nil {
		return nil, err
	}

	awaits, err := meter.Int64Counter("wiretest.correlation.awaits",
		metric.WithDescription("Number of completed await calls"),
	)
	if err != nil {
		return nil, err
	}

	awaitLatency, err := meter.Float64Histogram("wiretest.correlation.await_latency_ms",
		metric.WithDescription("Await wait time in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	awaitTimeouts, err := meter.Int64Counter("wiretest.correlation.await_timeouts",
		metric.WithDescription("Number of awaits that timed out"),
	)
	if err != nil {
		return nil, err
	}

	selectorRejections, err := meter.Int64Counter("wiretest.correlation.selector_rejections",
		metric.WithDescription("Number of buffered replies rejected by a selector"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		repliesStored:      repliesStored,
		awaits:             awaits,
		awaitLatency:       awaitLatency,
		awaitTimeouts:      awaitTimeouts,
		selectorRejections: selectorRejections,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordStore records a stored reply.
func (m *otelMetrics) RecordStore(ctx context.Context) {
	m.repliesStored.Add(ctx, 1)
}

// RecordAwait records a completed await.
func (m *otelMetrics) RecordAwait(ctx context.Context, duration time.Duration, consumed bool) {
	attrs := []attribute.KeyValue{
		attribute.Bool("consumed", consumed),
	}
	m.awaits.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.awaitLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if !consumed {
		m.awaitTimeouts.Add(ctx, 1)
	}
}

// RecordSelectorRejection records a selector rejection.
func (m *otelMetrics) RecordSelectorRejection(ctx context.Context) {
	m.selectorRejections.Add(ctx, 1)
}
