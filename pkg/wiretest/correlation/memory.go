package correlation

import (
	"sync"
	"time"

	"github.com/wiretest/wiretest/pkg/wiretest/message"
)

// entry is one correlation key's state.
type entry struct {
	status      Status
	reply       *message.Message
	reservedAt  time.Time
	fulfilledAt time.Time
}

// MemoryStore is an in-memory Store implementation, the default for
// single-process test runs.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	bindings map[string]string // contextID -> key
	closed   bool
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory correlation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]*entry),
		bindings: make(map[string]string),
	}
}

// Reserve implements Store.
func (s *MemoryStore) Reserve(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if _, exists := s.entries[key]; !exists {
		s.entries[key] = &entry{status: StatusReserved, reservedAt: time.Now()}
	}
	return nil
}

// Fulfill implements Store.
func (s *MemoryStore) Fulfill(key string, reply *message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	e, exists := s.entries[key]
	if !exists {
		e = &entry{reservedAt: time.Now()}
		s.entries[key] = e
	}
	e.status = StatusFulfilled
	e.reply = reply.Clone()
	e.fulfilledAt = time.Now()
	return nil
}

// Consume implements Store.
func (s *MemoryStore) Consume(key string, sel message.Selector) (*message.Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrStoreClosed
	}
	e, exists := s.entries[key]
	if !exists || e.status != StatusFulfilled {
		return nil, false, nil
	}
	if sel != nil && !sel.Accept(e.reply) {
		return nil, false, nil
	}
	e.status = StatusConsumed
	reply := e.reply
	e.reply = nil
	return reply, true, nil
}

// SaveBinding implements Store.
func (s *MemoryStore) SaveBinding(contextID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.bindings[contextID] = key
	return nil
}

// Binding implements Store.
func (s *MemoryStore) Binding(contextID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrStoreClosed
	}
	key, ok := s.bindings[contextID]
	return key, ok, nil
}

// Status implements Store.
func (s *MemoryStore) Status(key string) (Status, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrStoreClosed
	}
	e, exists := s.entries[key]
	if !exists {
		return "", false, nil
	}
	return e.status, true, nil
}

// Purge implements Store.
func (s *MemoryStore) Purge(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	delete(s.entries, key)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	s.bindings = nil
	return nil
}
