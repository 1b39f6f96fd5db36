// Package observability provides structured logging, metrics, and
// tracing for the wiretest correlation layer.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds exchange context to a logger.
// Returns a new logger with correlation_key and context_id fields.
func EnrichLogger(logger *slog.Logger, key, contextID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("correlation_key", key),
		slog.String("context_id", contextID),
	)
}

// LogKeySaved logs the reservation of a correlation key for a context.
func LogKeySaved(logger *slog.Logger, contextID, key string) {
	if logger == nil {
		return
	}
	logger.Debug("correlation key saved",
		slog.String("context_id", contextID),
		slog.String("correlation_key", key),
	)
}

// LogReplyStored logs a reply being stored under a key.
func LogReplyStored(logger *slog.Logger, key string) {
	if logger == nil {
		return
	}
	logger.Debug("reply stored",
		slog.String("correlation_key", key),
	)
}

// LogReplyConsumed logs a successful await.
func LogReplyConsumed(logger *slog.Logger, key string, waited time.Duration) {
	if logger == nil {
		return
	}
	logger.Debug("reply consumed",
		slog.String("correlation_key", key),
		slog.Float64("waited_ms", float64(waited.Milliseconds())),
	)
}

// LogAwaitTimeout logs an await that gave up.
func LogAwaitTimeout(logger *slog.Logger, key string, timeout time.Duration) {
	if logger == nil {
		return
	}
	logger.Warn("await timed out",
		slog.String("correlation_key", key),
		slog.Float64("timeout_ms", float64(timeout.Milliseconds())),
	)
}
