package correlation

import (
	"context"
	"log/slog"
	"time"

	"github.com/wiretest/wiretest/pkg/wiretest/message"
	"github.com/wiretest/wiretest/pkg/wiretest/observability"
)

// Default await tuning. Both are configuration inputs; these values
// only apply when no option overrides them.
const (
	DefaultTimeout      = 5 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// Manager is the correlation facade endpoint adapters talk to. It
// combines a key strategy with a store and adds the blocking Await
// operation on top of the store's non-blocking primitives.
//
// Await re-checks the store on a bounded poll interval rather than
// spinning, and always returns once its timeout elapses; a hung
// transport can never hang the test run. An entry left behind by a
// timed-out Await stays in the store until consumed or purged.
type Manager struct {
	store        Store
	correlator   Correlator
	timeout      time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
	metrics      observability.MetricsRecorder
	spans        observability.SpanManager
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithCorrelator sets the key-derivation strategy.
// Default: HeaderCorrelator over the message ID header.
func WithCorrelator(c Correlator) ManagerOption {
	return func(m *Manager) { m.correlator = c }
}

// WithTimeout sets the default await timeout.
func WithTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.timeout = d }
}

// WithPollInterval sets the store re-check interval during an await.
func WithPollInterval(d time.Duration) ManagerOption {
	return func(m *Manager) { m.pollInterval = d }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(metrics observability.MetricsRecorder) ManagerOption {
	return func(m *Manager) { m.metrics = metrics }
}

// WithSpans sets the trace span manager. Default: no-op.
func WithSpans(spans observability.SpanManager) ManagerOption {
	return func(m *Manager) { m.spans = spans }
}

// NewManager creates a Manager over the given store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:        store,
		correlator:   HeaderCorrelator{},
		timeout:      DefaultTimeout,
		pollInterval: DefaultPollInterval,
		logger:       slog.Default(),
		metrics:      observability.NoopMetrics{},
		spans:        observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key derives the correlation key for a message using the configured
// strategy.
func (m *Manager) Key(msg *message.Message) (string, error) {
	return m.correlator.Key(msg)
}

// KeyName returns the context-table name a derived key is saved
// under for the given context ID.
func (m *Manager) KeyName(contextID string) string {
	return m.correlator.KeyName(contextID)
}

// SaveKey binds a correlation key to a logical context and reserves
// the key in the store. A later SaveKey for the same context
// supersedes the previous binding: the most recent send on a logical
// channel is the one a receive pairs with.
func (m *Manager) SaveKey(contextID, key string) error {
	if err := m.store.SaveBinding(contextID, key); err != nil {
		return err
	}
	if err := m.store.Reserve(key); err != nil {
		return err
	}
	observability.LogKeySaved(m.logger, contextID, key)
	return nil
}

// ResolveKey returns the correlation key most recently saved for a
// context, or a NoPendingExchangeError when the context never sent.
func (m *Manager) ResolveKey(contextID string) (string, error) {
	key, ok, err := m.store.Binding(contextID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &NoPendingExchangeError{ContextID: contextID}
	}
	return key, nil
}

// Store buffers a reply under its correlation key, making it
// available to a concurrent or later Await.
func (m *Manager) Store(ctx context.Context, key string, reply *message.Message) error {
	ctx, span := m.spans.StartStoreSpan(ctx, key)
	err := m.store.Fulfill(key, reply)
	m.spans.EndSpanWithError(span, err)
	if err != nil {
		return err
	}
	m.metrics.RecordStore(ctx)
	observability.LogReplyStored(m.logger, key)
	return nil
}

// Await blocks until a reply for key is available (and accepted by
// sel, when given) or the manager's default timeout elapses. A nil
// selector accepts any reply.
func (m *Manager) Await(ctx context.Context, key string, sel message.Selector) (*message.Message, error) {
	return m.AwaitTimeout(ctx, key, m.timeout, sel)
}

// AwaitTimeout is Await with an explicit timeout.
//
// The reply is consumed exactly once: a second await on the same key
// times out unless a new reply is stored. Context cancellation wins
// over the timeout and surfaces as the context's error.
func (m *Manager) AwaitTimeout(ctx context.Context, key string, timeout time.Duration, sel message.Selector) (*message.Message, error) {
	ctx, span := m.spans.StartAwaitSpan(ctx, key)
	start := time.Now()

	reply, err := m.poll(ctx, key, timeout, sel)
	waited := time.Since(start)
	m.spans.EndSpanWithError(span, err)

	if err != nil {
		if _, isTimeout := err.(*TimeoutError); isTimeout {
			m.metrics.RecordAwait(ctx, waited, false)
			observability.LogAwaitTimeout(m.logger, key, timeout)
		}
		return nil, err
	}
	m.metrics.RecordAwait(ctx, waited, true)
	observability.LogReplyConsumed(m.logger, key, waited)
	return reply, nil
}

// poll drives the bounded re-check loop.
func (m *Manager) poll(ctx context.Context, key string, timeout time.Duration, sel message.Selector) (*message.Message, error) {
	deadline := time.Now().Add(timeout)

	for {
		reply, ok, err := m.store.Consume(key, sel)
		if err != nil {
			return nil, err
		}
		if ok {
			return reply, nil
		}
		if sel != nil {
			// A fulfilled entry that was not consumed was rejected by
			// the selector.
			if status, known, _ := m.store.Status(key); known && status == StatusFulfilled {
				m.metrics.RecordSelectorRejection(ctx)
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &TimeoutError{Key: key, Timeout: timeout}
		}
		interval := m.pollInterval
		if interval > remaining {
			interval = remaining
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}
