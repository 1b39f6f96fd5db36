// Package correlation links asynchronous requests to their replies.
//
// A request and its later-arriving reply are tied together by a
// correlation key derived from message content. The sending side
// reserves a key and binds it to its logical context, the transport
// stores the reply under that key when it arrives, and the receiving
// side awaits the key with a bounded poll until the reply shows up or
// a timeout elapses.
//
// Key lifecycle:
//
//	RESERVED (key known, no reply) -> FULFILLED (reply stored) -> CONSUMED (retrieved once)
//
// A reply is retrievable exactly once. Replies arriving after an
// await has timed out are retained until consumed or purged; a late
// reply racing a timeout must not silently vanish.
//
// Design Influences:
//   - JMS reply-to correlation IDs
//   - Temporal signal stores (poll-based delivery)
package correlation

import (
	"github.com/wiretest/wiretest/pkg/wiretest/message"
)

// Status is the lifecycle state of a correlation key.
type Status string

// Key lifecycle states.
const (
	StatusReserved  Status = "reserved"
	StatusFulfilled Status = "fulfilled"
	StatusConsumed  Status = "consumed"
)

// Store is the shared key -> reply map plus the context -> pending-key
// bindings. Implementations must be safe under concurrent access from
// any number of senders and receivers; none of the operations block.
type Store interface {
	// Reserve records that a key is in flight. Reserving an existing
	// key is a no-op.
	Reserve(key string) error

	// Fulfill stores the reply for a key, transitioning it to
	// FULFILLED. Out-of-order completion is accepted: fulfilling an
	// unreserved key creates the entry. Concurrent fulfills of the
	// same key are last-write-wins; callers guarantee key uniqueness
	// per true exchange.
	Fulfill(key string, reply *message.Message) error

	// Consume atomically retrieves the reply for a FULFILLED key,
	// transitioning it to CONSUMED. When a selector is given the
	// reply must also be accepted by it. Returns (nil, false, nil)
	// when no consumable reply exists; a consumed or reserved key
	// behaves the same as an unknown one.
	Consume(key string, sel message.Selector) (*message.Message, bool, error)

	// SaveBinding records the pending-exchange binding for a logical
	// context. A later binding for the same context supersedes the
	// previous one.
	SaveBinding(contextID, key string) error

	// Binding returns the most recently saved key for a context.
	Binding(contextID string) (string, bool, error)

	// Status returns the lifecycle state of a key.
	Status(key string) (Status, bool, error)

	// Purge removes an entry regardless of state.
	Purge(key string) error

	// Close releases any resources.
	Close() error
}
