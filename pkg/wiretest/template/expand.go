// Package template expands dynamic-content placeholders in strings.
//
// A placeholder is a path expression wrapped in ${...}:
//
//	"total: ${order.items[2].price}"
//
// Each placeholder is resolved through the path evaluator against a
// root (usually the test run's variable table), so placeholders reach
// nested fields and indexed elements, not just flat variable names.
package template

import (
	"fmt"
	"regexp"

	"github.com/wiretest/wiretest/pkg/wiretest/path"
)

// placeholderPattern matches ${expression} where expression is a path
// expression (names, dots, index suffixes).
var placeholderPattern = regexp.MustCompile(`\$\{([^${}]+)\}`)

// Expander expands ${path.expression} placeholders in strings.
//
// Create with NewExpander() and configure with Option functions.
// Expander is safe for concurrent use after construction.
type Expander struct {
	missingAction MissingAction
}

// NewExpander creates a new Expander with the given options.
//
// Default configuration:
//   - MissingAction: MissingKeep (keep placeholders as-is)
func NewExpander(opts ...Option) *Expander {
	e := &Expander{missingAction: MissingKeep}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand resolves every placeholder in s against root.
//
// Errors are only returned when MissingAction is MissingError and a
// placeholder fails to resolve; the error lists every failed
// expression.
func (e *Expander) Expand(s string, root path.Root) (string, error) {
	if s == "" {
		return "", nil
	}

	var unresolved []string
	result := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		expression := match[2 : len(match)-1]
		value, err := path.Evaluate(expression, root)
		if err == nil {
			return fmt.Sprintf("%v", value)
		}
		switch e.missingAction {
		case MissingEmpty:
			return ""
		case MissingError:
			unresolved = append(unresolved, expression)
			return match
		default: // MissingKeep
			return match
		}
	})

	if len(unresolved) > 0 {
		return result, &UnresolvedExpressionError{Expressions: unresolved}
	}
	return result, nil
}

// MustExpand expands placeholders in s and panics on error.
//
// Use this when all placeholders are known to resolve or when using
// MissingKeep/MissingEmpty, which never return errors.
func (e *Expander) MustExpand(s string, root path.Root) string {
	result, err := e.Expand(s, root)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return result
}

// ExpandAll expands placeholders in all strings.
//
// Returns a new slice with expanded strings. On error (with
// MissingError), returns nil and the first error.
func (e *Expander) ExpandAll(ss []string, root path.Root) ([]string, error) {
	if ss == nil {
		return nil, nil
	}
	results := make([]string, len(ss))
	for i, s := range ss {
		expanded, err := e.Expand(s, root)
		if err != nil {
			return nil, err
		}
		results[i] = expanded
	}
	return results, nil
}
