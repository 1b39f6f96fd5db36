// Package selector implements message selectors: pure predicates that
// pick the right reply among several buffered candidates.
//
// Three variants are provided. Payload selectors compare the whole
// payload as normalized text, JSON-path selectors compare the value a
// path expression resolves to inside a JSON payload, and header
// selectors compare a single header value. Every variant may delegate
// the final comparison to a validation matcher (see the matcher
// package) when the expected value is a matcher expression.
//
// Selectors never return errors: a payload that fails to parse, a
// path that resolves to nothing, or a matcher that rejects the value
// all reduce to "does not accept".
package selector

import (
	"fmt"
	"strings"

	"github.com/Jeffail/gabs/v2"

	"github.com/wiretest/wiretest/pkg/wiretest/matcher"
	"github.com/wiretest/wiretest/pkg/wiretest/message"
	"github.com/wiretest/wiretest/pkg/wiretest/path"
)

// Kind identifies a selector variant.
type Kind string

// Selector kinds accepted by New.
const (
	// KindPayload compares the whole payload as normalized text.
	KindPayload Kind = "payload"

	// KindJSONPath parses the payload as JSON and compares the value
	// at a path expression.
	KindJSONPath Kind = "jsonpath"

	// KindHeader compares a single header value.
	KindHeader Kind = "header"
)

// Option configures a selector built by New.
type Option func(*settings)

type settings struct {
	registry   *matcher.Registry
	expression string
	header     string
}

// WithRegistry sets the validation-matcher registry consulted when
// the expected value is a matcher expression. A default registry with
// the built-in matchers is used otherwise.
func WithRegistry(r *matcher.Registry) Option {
	return func(s *settings) { s.registry = r }
}

// WithExpression sets the path expression evaluated inside the
// payload. Required for KindJSONPath.
func WithExpression(expression string) Option {
	return func(s *settings) { s.expression = expression }
}

// WithHeader sets the header name to compare. Required for
// KindHeader.
func WithHeader(name string) Option {
	return func(s *settings) { s.header = name }
}

// New builds a selector of the given kind that accepts messages whose
// selected content matches expected.
func New(kind Kind, expected string, opts ...Option) (message.Selector, error) {
	cfg := settings{registry: matcher.NewRegistry()}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch kind {
	case KindPayload:
		return &payloadSelector{expected: expected, registry: cfg.registry}, nil
	case KindJSONPath:
		if cfg.expression == "" {
			return nil, fmt.Errorf("jsonpath selector requires an expression")
		}
		return &jsonPathSelector{
			expression: cfg.expression,
			expected:   expected,
			registry:   cfg.registry,
		}, nil
	case KindHeader:
		if cfg.header == "" {
			return nil, fmt.Errorf("header selector requires a header name")
		}
		return &headerSelector{header: cfg.header, expected: expected, registry: cfg.registry}, nil
	default:
		return nil, fmt.Errorf("unknown selector kind %q", kind)
	}
}

// matches applies the comparison rule shared by all variants: literal
// equality, or matcher delegation when expected is a matcher
// expression. Matcher failures of any sort mean no match.
func matches(registry *matcher.Registry, field, actual, expected string) bool {
	if matcher.IsExpression(expected) {
		return registry.Validate(field, actual, expected) == nil
	}
	return actual == expected
}

// payloadSelector accepts messages whose payload, as normalized text,
// matches the expected value.
type payloadSelector struct {
	expected string
	registry *matcher.Registry
}

// Accept implements message.Selector.
func (s *payloadSelector) Accept(msg *message.Message) bool {
	if msg == nil {
		return false
	}
	actual := strings.TrimSpace(msg.PayloadString())
	return matches(s.registry, "payload", actual, strings.TrimSpace(s.expected))
}

// jsonPathSelector parses the payload as JSON and accepts when the
// value at its path expression matches the expected value.
type jsonPathSelector struct {
	expression string
	expected   string
	registry   *matcher.Registry
}

// Accept implements message.Selector.
func (s *jsonPathSelector) Accept(msg *message.Message) bool {
	if msg == nil {
		return false
	}
	container, err := gabs.ParseJSON([]byte(msg.PayloadString()))
	if err != nil {
		return false
	}
	value, err := path.Evaluate(stripRootPrefix(s.expression), path.ValueRoot(container.Data()))
	if err != nil {
		return false
	}
	return matches(s.registry, s.expression, formatValue(value), s.expected)
}

// headerSelector accepts messages carrying a header whose value
// matches the expected value.
type headerSelector struct {
	header   string
	expected string
	registry *matcher.Registry
}

// Accept implements message.Selector.
func (s *headerSelector) Accept(msg *message.Message) bool {
	if msg == nil {
		return false
	}
	actual, ok := msg.Header(s.header)
	if !ok {
		return false
	}
	return matches(s.registry, s.header, actual, s.expected)
}

// stripRootPrefix removes the JSONPath root marker so "$.foo.text"
// evaluates as "foo.text".
func stripRootPrefix(expression string) string {
	expression = strings.TrimPrefix(expression, "$.")
	return strings.TrimPrefix(expression, "$")
}

// formatValue normalizes a resolved value for text comparison.
// Structured values are rendered as compact JSON.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any, []any:
		return gabs.Wrap(v).String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
