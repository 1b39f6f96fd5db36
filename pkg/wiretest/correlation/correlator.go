package correlation

import (
	"github.com/wiretest/wiretest/pkg/wiretest/message"
)

// Correlator derives the correlation key linking a request to its
// eventual reply. The key must be computed deterministically from
// message content so that sender and receiver agree on it regardless
// of thread or call timing.
type Correlator interface {
	// Key derives the correlation key for a message. It returns a
	// MissingCorrelationDataError when the message carries no usable
	// correlation data.
	Key(msg *message.Message) (string, error)

	// KeyName returns the stable name under which a derived key is
	// saved in the caller's context for the given context ID.
	KeyName(contextID string) string
}

// HeaderCorrelator derives keys from a single message header. The
// zero value uses the message ID header, matching the default where
// each request's unique ID correlates its reply.
type HeaderCorrelator struct {
	// Header is the header the key is read from. Empty means the
	// message ID header.
	Header string
}

// Compile-time interface check.
var _ Correlator = HeaderCorrelator{}

// header returns the configured header name, defaulted.
func (c HeaderCorrelator) header() string {
	if c.Header == "" {
		return message.HeaderID
	}
	return c.Header
}

// Key implements Correlator. Absence of the header is an error, never
// a silently generated fallback: a generated key would differ between
// send and receive and break the exchange.
func (c HeaderCorrelator) Key(msg *message.Message) (string, error) {
	if msg == nil {
		return "", &MissingCorrelationDataError{Header: c.header()}
	}
	v, ok := msg.Header(c.header())
	if !ok || v == "" {
		return "", &MissingCorrelationDataError{Header: c.header()}
	}
	return v, nil
}

// KeyName implements Correlator.
func (c HeaderCorrelator) KeyName(contextID string) string {
	return "wiretest_correlation_key_" + contextID
}
