// Package path evaluates dotted, optionally indexed expressions like
// "order.items[2].price" against a variable table or an arbitrary
// structured value.
//
// An expression is a sequence of segments separated by dots. Each
// segment is a name with an optional zero-based index suffix:
//
//	order
//	order.items[2]
//	order.items[2].price
//
// The first segment resolves against the Root: a variable lookup when
// the root is a variable table, a field lookup otherwise. Every later
// segment resolves as a field of the previous segment's value.
// Evaluation is purely a read-only traversal and is safe to run
// concurrently against distinct roots.
//
// Design Influences:
//   - JSONPath-style dotted member access
//   - bufio.Scanner for the pull-based Iterator surface
package path

import (
	"regexp"
	"strconv"
)

// segmentPattern parses one expression segment: a name without dots or
// brackets, an optional [digits] suffix, then a dot or end of input.
var segmentPattern = regexp.MustCompile(`^([^\[\].]+)(\[([0-9]+)\])?(\.|$)`)

// Segment is one resolved component of a path expression.
type Segment struct {
	// Name is the variable or field name of this segment.
	Name string

	// Index is the zero-based sequence index, or -1 when the segment
	// carries no index suffix.
	Index int

	// Value is the value this segment resolved to, after any indexing.
	Value any
}

// Indexed reports whether the segment carried an index suffix.
func (s Segment) Indexed() bool { return s.Index >= 0 }

// String returns the segment in expression form, e.g. "items[2]".
func (s Segment) String() string {
	if s.Indexed() {
		return s.Name + "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// rawSegment is a parsed but not yet resolved segment.
type rawSegment struct {
	name  string
	index int
}

// parse splits an expression into raw segments, strictly left to
// right. It fails with MalformedExpressionError when the expression
// matches no segment at all or contains trailing garbage.
func parse(expression string) ([]rawSegment, error) {
	rest := expression
	var segments []rawSegment
	for rest != "" {
		m := segmentPattern.FindStringSubmatch(rest)
		if m == nil {
			return nil, &MalformedExpressionError{Expression: expression}
		}
		seg := rawSegment{name: m[1], index: -1}
		if m[3] != "" {
			idx, err := strconv.Atoi(m[3])
			if err != nil {
				return nil, &MalformedExpressionError{Expression: expression}
			}
			seg.index = idx
		}
		segments = append(segments, seg)
		rest = rest[len(m[0]):]
		// A trailing separator with nothing after it is malformed.
		if m[4] == "." && rest == "" {
			return nil, &MalformedExpressionError{Expression: expression}
		}
	}
	if len(segments) == 0 {
		return nil, &MalformedExpressionError{Expression: expression}
	}
	return segments, nil
}
