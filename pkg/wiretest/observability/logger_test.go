package observability

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureHandler records log entries for assertions. Handlers derived
// via WithAttrs share the same record storage.
type captureHandler struct {
	mu      *sync.Mutex
	records *[]map[string]any
	attrs   []slog.Attr
}

func newCaptureHandler() *captureHandler {
	return &captureHandler{
		mu:      &sync.Mutex{},
		records: &[]map[string]any{},
	}
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, data)
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &captureHandler{mu: h.mu, records: h.records, attrs: append(h.attrs, attrs...)}
}

func (h *captureHandler) WithGroup(_ string) slog.Handler { return h }

func (h *captureHandler) last() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(*h.records) == 0 {
		return nil
	}
	return (*h.records)[len(*h.records)-1]
}

func TestEnrichLogger(t *testing.T) {
	h := newCaptureHandler()
	logger := EnrichLogger(slog.New(h), "k1", "ftp-client")
	require.NotNil(t, logger)

	logger.Info("something happened")

	rec := h.last()
	require.NotNil(t, rec)
	assert.Equal(t, "k1", rec["correlation_key"])
	assert.Equal(t, "ftp-client", rec["context_id"])
}

func TestEnrichLogger_Nil(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "k1", "ctx"))
}

func TestLogHelpers(t *testing.T) {
	h := newCaptureHandler()
	logger := slog.New(h)

	LogKeySaved(logger, "ftp-client", "k1")
	rec := h.last()
	require.NotNil(t, rec)
	assert.Equal(t, "correlation key saved", rec["msg"])
	assert.Equal(t, "k1", rec["correlation_key"])

	LogReplyStored(logger, "k1")
	assert.Equal(t, "reply stored", h.last()["msg"])

	LogReplyConsumed(logger, "k1", 42*time.Millisecond)
	rec = h.last()
	assert.Equal(t, "reply consumed", rec["msg"])
	assert.Equal(t, 42.0, rec["waited_ms"])

	LogAwaitTimeout(logger, "k1", time.Second)
	rec = h.last()
	assert.Equal(t, "await timed out", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
}

func TestLogHelpers_NilLogger(t *testing.T) {
	// Must not panic.
	LogKeySaved(nil, "c", "k")
	LogReplyStored(nil, "k")
	LogReplyConsumed(nil, "k", time.Second)
	LogAwaitTimeout(nil, "k", time.Second)
}
