package benchmarks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/wiretest/wiretest/pkg/wiretest/correlation"
	"github.com/wiretest/wiretest/pkg/wiretest/message"
)

// BenchmarkStoreConsume_Memory measures a store/consume round trip on
// the in-memory store.
func BenchmarkStoreConsume_Memory(b *testing.B) {
	store := correlation.NewMemoryStore()
	defer store.Close()
	reply := message.New("250 OK")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("key-%d", i)
		_ = store.Fulfill(key, reply)
		_, _, _ = store.Consume(key, nil)
	}
}

// BenchmarkStoreConsume_SQLite measures the same round trip on the
// durable store.
func BenchmarkStoreConsume_SQLite(b *testing.B) {
	store, err := correlation.NewSQLiteStore(":memory:")
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	reply := message.New("250 OK")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("key-%d", i)
		_ = store.Fulfill(key, reply)
		_, _, _ = store.Consume(key, nil)
	}
}

// BenchmarkAwait_AlreadyFulfilled measures Await when the reply is
// buffered before the await starts (no polling sleep).
func BenchmarkAwait_AlreadyFulfilled(b *testing.B) {
	store := correlation.NewMemoryStore()
	defer store.Close()
	mgr := correlation.NewManager(store,
		correlation.WithTimeout(time.Second),
		correlation.WithPollInterval(time.Millisecond),
	)
	ctx := context.Background()
	reply := message.New("250 OK")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("key-%d", i)
		_ = mgr.Store(ctx, key, reply)
		_, _ = mgr.Await(ctx, key, nil)
	}
}
