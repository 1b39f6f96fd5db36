// Package matcher provides pluggable validation matchers: named
// assertion functions used in place of literal equality when
// comparing message content.
//
// A control value marked up as a matcher expression, e.g.
//
//	@startsWith(foo)@
//	@matches(^[0-9]+$)@
//
// delegates the comparison to the matcher registered under that name
// instead of comparing text verbatim. Matchers are resolved by name
// at match time from a Registry; NewRegistry pre-populates the
// built-in set.
package matcher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Matcher validates an actual value against control parameters.
// It returns nil on success and a descriptive error on mismatch.
type Matcher func(field, actual string, params []string) error

// ValidationError reports a matcher mismatch.
type ValidationError struct {
	Matcher string
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("matcher %s failed on %s: %s", e.Matcher, e.Field, e.Message)
	}
	return fmt.Sprintf("matcher %s failed: %s", e.Matcher, e.Message)
}

// expressionPattern matches a full control expression "@name(params)@".
var expressionPattern = regexp.MustCompile(`(?s)^@([a-zA-Z][a-zA-Z0-9_]*)\((.*)\)@$`)

// IsExpression reports whether control is a matcher expression rather
// than a literal value.
func IsExpression(control string) bool {
	return expressionPattern.MatchString(strings.TrimSpace(control))
}

// Registry holds named matchers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	matchers map[string]Matcher
}

// NewRegistry creates a registry pre-populated with the built-in
// matchers.
func NewRegistry() *Registry {
	r := &Registry{matchers: make(map[string]Matcher)}
	registerBuiltins(r)
	return r
}

// Register adds or replaces the matcher for name.
func (r *Registry) Register(name string, m Matcher) error {
	if name == "" {
		return fmt.Errorf("matcher name is required")
	}
	if m == nil {
		return fmt.Errorf("matcher function is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers[name] = m
	return nil
}

// Get returns the matcher for name and whether it exists.
func (r *Registry) Get(name string) (Matcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matchers[name]
	return m, ok
}

// Names returns all registered matcher names, unordered.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.matchers))
	for name := range r.matchers {
		names = append(names, name)
	}
	return names
}

// Validate parses control as a matcher expression, resolves the named
// matcher and runs it against actual. It returns an error when
// control is not a matcher expression, the matcher is unknown, or the
// matcher rejects the value.
func (r *Registry) Validate(field, actual, control string) error {
	m := expressionPattern.FindStringSubmatch(strings.TrimSpace(control))
	if m == nil {
		return fmt.Errorf("not a matcher expression: %q", control)
	}
	name := m[1]
	fn, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("unknown validation matcher %q", name)
	}
	return fn(field, actual, splitParams(m[2]))
}

// splitParams splits the parameter list on commas, trimming
// whitespace and single quotes. Quoted parameters may contain commas.
func splitParams(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var params []string
	var current strings.Builder
	inQuote := false
	for _, r := range raw {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			params = append(params, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	params = append(params, strings.TrimSpace(current.String()))
	return params
}

// registerBuiltins installs the default matcher set.
func registerBuiltins(r *Registry) {
	builtins := map[string]Matcher{
		"equalsIgnoreCase": func(field, actual string, params []string) error {
			if len(params) < 1 || !strings.EqualFold(actual, params[0]) {
				return &ValidationError{Matcher: "equalsIgnoreCase", Field: field,
					Message: fmt.Sprintf("%q does not equal %v ignoring case", actual, params)}
			}
			return nil
		},
		"startsWith": func(field, actual string, params []string) error {
			if len(params) < 1 || !strings.HasPrefix(actual, params[0]) {
				return &ValidationError{Matcher: "startsWith", Field: field,
					Message: fmt.Sprintf("%q does not start with %v", actual, params)}
			}
			return nil
		},
		"endsWith": func(field, actual string, params []string) error {
			if len(params) < 1 || !strings.HasSuffix(actual, params[0]) {
				return &ValidationError{Matcher: "endsWith", Field: field,
					Message: fmt.Sprintf("%q does not end with %v", actual, params)}
			}
			return nil
		},
		"contains": func(field, actual string, params []string) error {
			if len(params) < 1 || !strings.Contains(actual, params[0]) {
				return &ValidationError{Matcher: "contains", Field: field,
					Message: fmt.Sprintf("%q does not contain %v", actual, params)}
			}
			return nil
		},
		"matches": func(field, actual string, params []string) error {
			if len(params) < 1 {
				return &ValidationError{Matcher: "matches", Field: field, Message: "missing pattern parameter"}
			}
			re, err := regexp.Compile(params[0])
			if err != nil {
				return &ValidationError{Matcher: "matches", Field: field,
					Message: fmt.Sprintf("invalid pattern %q: %v", params[0], err)}
			}
			if !re.MatchString(actual) {
				return &ValidationError{Matcher: "matches", Field: field,
					Message: fmt.Sprintf("%q does not match %q", actual, params[0])}
			}
			return nil
		},
		"isNumber": func(field, actual string, _ []string) error {
			if _, err := strconv.ParseFloat(strings.TrimSpace(actual), 64); err != nil {
				return &ValidationError{Matcher: "isNumber", Field: field,
					Message: fmt.Sprintf("%q is not a number", actual)}
			}
			return nil
		},
		"ignoreNewLine": func(field, actual string, params []string) error {
			if len(params) < 1 {
				return &ValidationError{Matcher: "ignoreNewLine", Field: field, Message: "missing control parameter"}
			}
			normalize := func(s string) string {
				s = strings.ReplaceAll(s, "\r\n", "\n")
				return strings.TrimSpace(s)
			}
			if normalize(actual) != normalize(params[0]) {
				return &ValidationError{Matcher: "ignoreNewLine", Field: field,
					Message: fmt.Sprintf("%q does not equal control value ignoring line endings", actual)}
			}
			return nil
		},
	}
	for name, fn := range builtins {
		r.matchers[name] = fn
	}
}
