package correlation_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiretest/wiretest/pkg/wiretest/correlation"
	"github.com/wiretest/wiretest/pkg/wiretest/message"
)

func newSQLiteStore(t *testing.T) *correlation.SQLiteStore {
	t.Helper()
	store, err := correlation.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_KeyLifecycle(t *testing.T) {
	store := newSQLiteStore(t)

	require.NoError(t, store.Reserve("k1"))
	status, ok, err := store.Status("k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, correlation.StatusReserved, status)

	require.NoError(t, store.Fulfill("k1", message.New("reply")))

	reply, consumed, err := store.Consume("k1", nil)
	require.NoError(t, err)
	require.True(t, consumed)
	assert.Equal(t, "reply", reply.PayloadString())

	// Consumed entries are retained for audit, reply cleared.
	status, ok, err = store.Status("k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, correlation.StatusConsumed, status)

	_, consumed, err = store.Consume("k1", nil)
	require.NoError(t, err)
	assert.False(t, consumed)
}

func TestSQLiteStore_ReplyRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)

	original := message.New(map[string]any{"reply": "250 OK"}).
		WithHeader("operation", "list")
	require.NoError(t, store.Fulfill("k1", original))

	reply, consumed, err := store.Consume("k1", nil)
	require.NoError(t, err)
	require.True(t, consumed)

	op, ok := reply.Header("operation")
	require.True(t, ok)
	assert.Equal(t, "list", op)
	assert.Equal(t, original.ID(), reply.ID())
}

func TestSQLiteStore_SelectorFiltering(t *testing.T) {
	store := newSQLiteStore(t)

	require.NoError(t, store.Fulfill("k1", message.New(`{"foo":{"text":"foobar"}}`)))

	rejecting := message.SelectorFunc(func(*message.Message) bool { return false })
	_, consumed, err := store.Consume("k1", rejecting)
	require.NoError(t, err)
	assert.False(t, consumed)

	status, _, _ := store.Status("k1")
	assert.Equal(t, correlation.StatusFulfilled, status, "rejected reply stays buffered")
}

func TestSQLiteStore_Bindings(t *testing.T) {
	store := newSQLiteStore(t)

	require.NoError(t, store.SaveBinding("client", "k1"))
	require.NoError(t, store.SaveBinding("client", "k2"))

	key, ok, err := store.Binding("client")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "k2", key)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "exchanges.db")

	store, err := correlation.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Fulfill("k1", message.New("durable")))
	require.NoError(t, store.SaveBinding("client", "k1"))
	require.NoError(t, store.Close())

	reopened, err := correlation.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	key, ok, err := reopened.Binding("client")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "k1", key)

	reply, consumed, err := reopened.Consume("k1", nil)
	require.NoError(t, err)
	require.True(t, consumed)
	assert.Equal(t, "durable", reply.PayloadString())
}

func TestSQLiteStore_Closed(t *testing.T) {
	store, err := correlation.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "double close is safe")

	assert.ErrorIs(t, store.Reserve("k"), correlation.ErrStoreClosed)
	_, _, err = store.Consume("k", nil)
	assert.ErrorIs(t, err, correlation.ErrStoreClosed)
}
