package path

// Iterator walks an expression one segment at a time, resolving
// lazily in left-to-right order. A failed segment stops iteration and
// surfaces through Err. Iterators are cheap to construct; restart an
// evaluation by constructing a new one.
//
// Usage follows the bufio.Scanner pattern:
//
//	it, err := path.NewIterator("order.items[2].price", root)
//	for it.Next() {
//	    seg := it.Segment()
//	    ...
//	}
//	if err := it.Err(); err != nil {
//	    ...
//	}
type Iterator struct {
	expression string
	pending    []rawSegment
	parent     Root
	current    Segment
	err        error
}

// NewIterator parses expression and returns an iterator over its
// segments resolved against root. Parsing failures are returned
// immediately as MalformedExpressionError.
func NewIterator(expression string, root Root) (*Iterator, error) {
	segments, err := parse(expression)
	if err != nil {
		return nil, err
	}
	return &Iterator{
		expression: expression,
		pending:    segments,
		parent:     root,
	}, nil
}

// Next resolves the next segment. It returns false when the
// expression is exhausted or a segment failed; check Err afterwards.
func (it *Iterator) Next() bool {
	if it.err != nil || len(it.pending) == 0 {
		return false
	}
	seg, err := it.parent.resolve(it.pending[0], it.expression)
	if err != nil {
		it.err = err
		return false
	}
	it.current = seg
	it.pending = it.pending[1:]
	it.parent = ValueRoot(seg.Value)
	return true
}

// Segment returns the most recently resolved segment.
func (it *Iterator) Segment() Segment {
	return it.current
}

// Err returns the first resolution error, or nil.
func (it *Iterator) Err() error {
	return it.err
}

// EvaluateAll resolves every segment of expression against root and
// returns them in order. A failing segment aborts the walk and
// returns its error; earlier segments are discarded.
func EvaluateAll(expression string, root Root) ([]Segment, error) {
	it, err := NewIterator(expression, root)
	if err != nil {
		return nil, err
	}
	var segments []Segment
	for it.Next() {
		segments = append(segments, it.Segment())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return segments, nil
}

// Evaluate resolves expression fully and returns the final segment's
// value. This is the common entry point for variable substitution and
// selector matching. It returns ErrNoValue when the expression
// resolves to zero segments.
func Evaluate(expression string, root Root) (any, error) {
	segments, err := EvaluateAll(expression, root)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, ErrNoValue
	}
	return segments[len(segments)-1].Value, nil
}
