package correlation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiretest/wiretest/pkg/wiretest/correlation"
	"github.com/wiretest/wiretest/pkg/wiretest/message"
)

func TestMemoryStore_KeyLifecycle(t *testing.T) {
	store := correlation.NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Reserve("k1"))
	status, ok, err := store.Status("k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, correlation.StatusReserved, status)

	require.NoError(t, store.Fulfill("k1", message.New("reply")))
	status, _, _ = store.Status("k1")
	assert.Equal(t, correlation.StatusFulfilled, status)

	reply, consumed, err := store.Consume("k1", nil)
	require.NoError(t, err)
	require.True(t, consumed)
	assert.Equal(t, "reply", reply.PayloadString())

	status, _, _ = store.Status("k1")
	assert.Equal(t, correlation.StatusConsumed, status)
}

func TestMemoryStore_ConsumeOnlyOnce(t *testing.T) {
	store := correlation.NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Fulfill("k1", message.New("reply")))

	_, consumed, err := store.Consume("k1", nil)
	require.NoError(t, err)
	require.True(t, consumed)

	_, consumed, err = store.Consume("k1", nil)
	require.NoError(t, err)
	assert.False(t, consumed, "a consumed key behaves like an unknown one")
}

func TestMemoryStore_OutOfOrderFulfill(t *testing.T) {
	store := correlation.NewMemoryStore()
	defer store.Close()

	// No prior reservation: the reply still lands.
	require.NoError(t, store.Fulfill("k1", message.New("early")))

	reply, consumed, err := store.Consume("k1", nil)
	require.NoError(t, err)
	require.True(t, consumed)
	assert.Equal(t, "early", reply.PayloadString())
}

func TestMemoryStore_ReserveExistingIsNoop(t *testing.T) {
	store := correlation.NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Fulfill("k1", message.New("reply")))
	require.NoError(t, store.Reserve("k1"))

	status, _, _ := store.Status("k1")
	assert.Equal(t, correlation.StatusFulfilled, status, "re-reserving must not discard a buffered reply")
}

func TestMemoryStore_ConsumeSelectorRejects(t *testing.T) {
	store := correlation.NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Fulfill("k1", message.New("wrong")))

	wantRight := message.SelectorFunc(func(m *message.Message) bool {
		return m.PayloadString() == "right"
	})
	_, consumed, err := store.Consume("k1", wantRight)
	require.NoError(t, err)
	assert.False(t, consumed)

	// The rejected reply stays buffered for an unfiltered consumer.
	reply, consumed, err := store.Consume("k1", nil)
	require.NoError(t, err)
	require.True(t, consumed)
	assert.Equal(t, "wrong", reply.PayloadString())
}

func TestMemoryStore_Bindings(t *testing.T) {
	store := correlation.NewMemoryStore()
	defer store.Close()

	_, ok, err := store.Binding("ftp-client")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveBinding("ftp-client", "k1"))
	require.NoError(t, store.SaveBinding("ftp-client", "k2"))

	key, ok, err := store.Binding("ftp-client")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "k2", key, "last binding wins")
}

func TestMemoryStore_Purge(t *testing.T) {
	store := correlation.NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Fulfill("k1", message.New("reply")))
	require.NoError(t, store.Purge("k1"))

	_, ok, err := store.Status("k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_Closed(t *testing.T) {
	store := correlation.NewMemoryStore()
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Reserve("k"), correlation.ErrStoreClosed)
	assert.ErrorIs(t, store.Fulfill("k", message.New("x")), correlation.ErrStoreClosed)
	_, _, err := store.Consume("k", nil)
	assert.ErrorIs(t, err, correlation.ErrStoreClosed)
}
