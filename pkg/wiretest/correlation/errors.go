package correlation

import (
	"errors"
	"fmt"
	"time"
)

// ErrStoreClosed indicates the store has been closed.
var ErrStoreClosed = errors.New("correlation store closed")

// MissingCorrelationDataError indicates a message carried no data the
// correlator could derive a key from. Key derivation fails fast
// rather than inventing a non-deterministic fallback key.
type MissingCorrelationDataError struct {
	Header string
}

// Error implements the error interface.
func (e *MissingCorrelationDataError) Error() string {
	return fmt.Sprintf("message carries no correlation data: header %q is missing or empty", e.Header)
}

// NoPendingExchangeError indicates ResolveKey was called for a
// context that never saved a correlation key.
type NoPendingExchangeError struct {
	ContextID string
}

// Error implements the error interface.
func (e *NoPendingExchangeError) Error() string {
	return fmt.Sprintf("no pending exchange for context %q", e.ContextID)
}

// TimeoutError indicates an await gave up before a matching reply was
// stored. It is a recoverable condition scoped to one correlation
// key; the caller decides whether to retry or fail the test step.
type TimeoutError struct {
	Key     string
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no reply for correlation key %q within %s", e.Key, e.Timeout)
}
