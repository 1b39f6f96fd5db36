// Package message defines the envelope exchanged between endpoint
// adapters and the correlation layer.
//
// A Message is a header map plus an opaque payload. Selection and
// correlation operate on content only, never on object identity:
// two messages with equal headers and payload are interchangeable.
//
// Design Influences:
//   - JMS-style message envelopes (headers + body)
//   - Go net/http header conventions (case-preserving string map)
package message

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Well-known header names set on every message.
const (
	// HeaderID uniquely identifies a message. It is the default source
	// of correlation keys.
	HeaderID = "wiretest_message_id"

	// HeaderTimestamp records message creation time (RFC 3339 nano).
	HeaderTimestamp = "wiretest_message_timestamp"
)

// Message is an envelope of named headers and an opaque payload.
//
// Headers are string-valued. The payload may be a string, a []byte, or
// any structured value; PayloadString normalizes it for text
// comparison. Treat a Message as immutable once it has been handed to
// the correlation layer; use Clone for derived copies.
type Message struct {
	headers map[string]string
	payload any
}

// New creates a message with the given payload and a fresh message ID.
func New(payload any) *Message {
	return &Message{
		headers: map[string]string{
			HeaderID:        uuid.New().String(),
			HeaderTimestamp: time.Now().UTC().Format(time.RFC3339Nano),
		},
		payload: payload,
	}
}

// WithHeader sets a header and returns the message for chaining.
func (m *Message) WithHeader(name, value string) *Message {
	m.headers[name] = value
	return m
}

// ID returns the message ID header, or "" if it was removed.
func (m *Message) ID() string {
	return m.headers[HeaderID]
}

// Header returns the named header value and whether it is present.
func (m *Message) Header(name string) (string, bool) {
	v, ok := m.headers[name]
	return v, ok
}

// Headers returns a copy of the header map.
func (m *Message) Headers() map[string]string {
	copied := make(map[string]string, len(m.headers))
	for k, v := range m.headers {
		copied[k] = v
	}
	return copied
}

// Payload returns the raw payload value.
func (m *Message) Payload() any {
	return m.payload
}

// PayloadString normalizes the payload for text comparison.
// Strings and byte slices are returned as-is; anything else is
// formatted with the fmt default verb.
func (m *Message) PayloadString() string {
	switch p := m.payload.(type) {
	case nil:
		return ""
	case string:
		return p
	case []byte:
		return string(p)
	default:
		return fmt.Sprintf("%v", p)
	}
}

// Clone creates an independent copy of the message.
// Header maps are copied; the payload is shared (callers treat
// payloads as read-only).
func (m *Message) Clone() *Message {
	return &Message{
		headers: m.Headers(),
		payload: m.payload,
	}
}

// Selector is a pure predicate over a message, used to pick the right
// reply among several buffered candidates. Implementations must not
// mutate the message and must never panic or return an error: any
// internal failure reduces to "does not accept".
type Selector interface {
	Accept(msg *Message) bool
}

// SelectorFunc adapts a plain function to the Selector interface.
type SelectorFunc func(msg *Message) bool

// Accept implements Selector.
func (f SelectorFunc) Accept(msg *Message) bool { return f(msg) }

// wireMessage is the JSON shape used by durable stores.
type wireMessage struct {
	Headers map[string]string `json:"headers"`
	Payload json.RawMessage   `json:"payload,omitempty"`
}

// MarshalJSON implements json.Marshaler so durable stores can persist
// messages without reaching into unexported fields.
func (m *Message) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(m.payload)
	if err != nil {
		return nil, fmt.Errorf("marshal message payload: %w", err)
	}
	return json.Marshal(wireMessage{Headers: m.Headers(), Payload: payload})
}

// UnmarshalJSON implements json.Unmarshaler.
//
// Payloads round-trip through JSON, so a []byte payload comes back as
// a string and structured payloads come back as map[string]any. Text
// comparison via PayloadString is unaffected.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	m.headers = wire.Headers
	if m.headers == nil {
		m.headers = make(map[string]string)
	}
	m.payload = nil
	if len(wire.Payload) > 0 {
		var payload any
		if err := json.Unmarshal(wire.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal message payload: %w", err)
		}
		m.payload = payload
	}
	return nil
}
