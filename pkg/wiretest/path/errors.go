package path

import (
	"errors"
	"fmt"
)

// ErrNoValue is returned by Evaluate when an expression yields no
// segments at all, as opposed to a segment failing to resolve.
var ErrNoValue = errors.New("path expression produced no value")

// MalformedExpressionError indicates an expression that matches no
// segment of the path grammar.
type MalformedExpressionError struct {
	Expression string
}

// Error implements the error interface.
func (e *MalformedExpressionError) Error() string {
	return fmt.Sprintf("cannot match a segment on expression %q", e.Expression)
}

// UnknownVariableError indicates the first segment named a variable
// that does not exist in the root variable table. It carries the full
// original expression for diagnostics.
type UnknownVariableError struct {
	Expression string
}

// Error implements the error interface.
func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable %q", e.Expression)
}

// UnknownFieldError indicates a segment named a field that does not
// exist on the parent value's type.
type UnknownFieldError struct {
	Field    string
	TypeName string
}

// Error implements the error interface.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q on type %s", e.Field, e.TypeName)
}

// NotIndexableError indicates an indexed segment resolved to a value
// that is not a sequence.
type NotIndexableError struct {
	Segment  string
	TypeName string
}

// Error implements the error interface.
func (e *NotIndexableError) Error() string {
	return fmt.Sprintf("cannot retrieve indexed property %s from non-sequence type %s", e.Segment, e.TypeName)
}

// IndexOutOfRangeError indicates an indexed segment referenced a
// position outside the sequence bounds.
type IndexOutOfRangeError struct {
	Segment string
	Index   int
	Length  int
}

// Error implements the error interface.
func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range for %s (length %d)", e.Index, e.Segment, e.Length)
}
