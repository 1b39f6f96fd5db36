package correlation

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/wiretest/wiretest/pkg/wiretest/message"
)

// SQLiteStore persists correlation state to SQLite. Entries survive
// process restarts and consumed entries are retained (with the reply
// cleared) so long test runs can audit which exchanges completed.
// It is suitable for single-process use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite correlation store.
// The path should be a file path (e.g., "./exchanges.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS exchanges (
			key TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			reply TEXT,
			reserved_at TEXT NOT NULL,
			fulfilled_at TEXT
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create exchanges table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bindings (
			context_id TEXT PRIMARY KEY,
			key TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create bindings table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Reserve implements Store.
func (s *SQLiteStore) Reserve(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO exchanges (key, status, reserved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`, key, StatusReserved, now())
	if err != nil {
		return fmt.Errorf("reserve key: %w", err)
	}
	return nil
}

// Fulfill implements Store.
func (s *SQLiteStore) Fulfill(key string, reply *message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	data, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO exchanges (key, status, reply, reserved_at, fulfilled_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			status = excluded.status,
			reply = excluded.reply,
			fulfilled_at = excluded.fulfilled_at
	`, key, StatusFulfilled, string(data), now(), now())
	if err != nil {
		return fmt.Errorf("store reply: %w", err)
	}
	return nil
}

// Consume implements Store. Selector filtering happens in Go after
// the candidate row is read; the consumed transition only commits
// when the selector accepted the reply.
func (s *SQLiteStore) Consume(key string, sel message.Selector) (*message.Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrStoreClosed
	}

	var data string
	err := s.db.QueryRow(`
		SELECT reply FROM exchanges
		WHERE key = ? AND status = ?
	`, key, StatusFulfilled).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load reply: %w", err)
	}

	reply := &message.Message{}
	if err := json.Unmarshal([]byte(data), reply); err != nil {
		return nil, false, fmt.Errorf("unmarshal reply: %w", err)
	}
	if sel != nil && !sel.Accept(reply) {
		return nil, false, nil
	}

	if _, err := s.db.Exec(`
		UPDATE exchanges SET status = ?, reply = NULL
		WHERE key = ? AND status = ?
	`, StatusConsumed, key, StatusFulfilled); err != nil {
		return nil, false, fmt.Errorf("mark consumed: %w", err)
	}
	return reply, true, nil
}

// SaveBinding implements Store.
func (s *SQLiteStore) SaveBinding(contextID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO bindings (context_id, key)
		VALUES (?, ?)
		ON CONFLICT(context_id) DO UPDATE SET key = excluded.key
	`, contextID, key)
	if err != nil {
		return fmt.Errorf("save binding: %w", err)
	}
	return nil
}

// Binding implements Store.
func (s *SQLiteStore) Binding(contextID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrStoreClosed
	}

	var key string
	err := s.db.QueryRow(`
		SELECT key FROM bindings WHERE context_id = ?
	`, contextID).Scan(&key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load binding: %w", err)
	}
	return key, true, nil
}

// Status implements Store.
func (s *SQLiteStore) Status(key string) (Status, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrStoreClosed
	}

	var status string
	err := s.db.QueryRow(`
		SELECT status FROM exchanges WHERE key = ?
	`, key).Scan(&status)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load status: %w", err)
	}
	return Status(status), true, nil
}

// Purge implements Store.
func (s *SQLiteStore) Purge(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM exchanges WHERE key = ?`, key); err != nil {
		return fmt.Errorf("purge key: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
