package template

import (
	"fmt"
	"strings"
)

// MissingAction specifies how to handle placeholders that fail to
// resolve.
type MissingAction int

const (
	// MissingKeep keeps the placeholder as-is when its expression
	// does not resolve. This is the default behavior.
	MissingKeep MissingAction = iota

	// MissingEmpty replaces an unresolved placeholder with an empty
	// string.
	MissingEmpty

	// MissingError returns an error when a placeholder does not
	// resolve.
	MissingError
)

// Option configures an Expander.
type Option func(*Expander)

// WithMissingAction sets how unresolved placeholders are handled.
//
// Default: MissingKeep (keep placeholder as-is)
func WithMissingAction(action MissingAction) Option {
	return func(e *Expander) {
		e.missingAction = action
	}
}

// UnresolvedExpressionError reports placeholders whose expressions
// failed to resolve during an Expand with MissingError.
type UnresolvedExpressionError struct {
	Expressions []string
}

// Error implements the error interface.
func (e *UnresolvedExpressionError) Error() string {
	return fmt.Sprintf("unresolved expressions: %s", strings.Join(e.Expressions, ", "))
}
