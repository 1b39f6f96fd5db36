package path_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiretest/wiretest/pkg/wiretest/path"
)

// vars is a minimal variable table for tests.
type vars map[string]any

func (v vars) Variable(name string) (any, bool) {
	val, ok := v[name]
	return val, ok
}

type order struct {
	Items []item
	Total float64
}

type item struct {
	Price float64
	Tags  [2]string
}

func testRoot() path.Root {
	return path.VariablesRoot(vars{
		"greeting": "hello",
		"order": order{
			Items: []item{
				{Price: 1.5},
				{Price: 2.5},
				{Price: 9.99, Tags: [2]string{"a", "b"}},
			},
			Total: 13.99,
		},
	})
}

func TestEvaluateAll_SegmentOrder(t *testing.T) {
	segments, err := path.EvaluateAll("order.items[2].price", testRoot())
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, "order", segments[0].String())
	assert.Equal(t, "items[2]", segments[1].String())
	assert.Equal(t, "price", segments[2].String())
	assert.Equal(t, 9.99, segments[2].Value)
}

func TestEvaluate(t *testing.T) {
	t.Run("single segment", func(t *testing.T) {
		v, err := path.Evaluate("greeting", testRoot())
		require.NoError(t, err)
		assert.Equal(t, "hello", v)
	})

	t.Run("nested field", func(t *testing.T) {
		v, err := path.Evaluate("order.total", testRoot())
		require.NoError(t, err)
		assert.Equal(t, 13.99, v)
	})

	t.Run("fixed-size array index", func(t *testing.T) {
		v, err := path.Evaluate("order.items[2].tags[1]", testRoot())
		require.NoError(t, err)
		assert.Equal(t, "b", v)
	})
}

func TestEvaluate_UnknownVariable(t *testing.T) {
	_, err := path.Evaluate("missing", testRoot())

	var unknownVar *path.UnknownVariableError
	require.ErrorAs(t, err, &unknownVar)
	assert.Equal(t, "missing", unknownVar.Expression)
}

func TestEvaluate_UnknownVariable_CarriesFullExpression(t *testing.T) {
	_, err := path.Evaluate("missing.items[2].price", testRoot())

	var unknownVar *path.UnknownVariableError
	require.ErrorAs(t, err, &unknownVar)
	assert.Equal(t, "missing.items[2].price", unknownVar.Expression)
}

func TestEvaluate_UnknownField(t *testing.T) {
	_, err := path.Evaluate("order.discount", testRoot())

	var unknownField *path.UnknownFieldError
	require.ErrorAs(t, err, &unknownField)
	assert.Equal(t, "discount", unknownField.Field)
	assert.Contains(t, unknownField.TypeName, "order")
}

func TestEvaluate_NotIndexable(t *testing.T) {
	// "total" is a float; indexing it must fail.
	_, err := path.Evaluate("order.total[0]", testRoot())

	var notIndexable *path.NotIndexableError
	require.ErrorAs(t, err, &notIndexable)
	assert.Equal(t, "total[0]", notIndexable.Segment)
	assert.Equal(t, "float64", notIndexable.TypeName)
}

func TestEvaluate_IndexOutOfRange(t *testing.T) {
	_, err := path.Evaluate("order.items[9]", testRoot())

	var outOfRange *path.IndexOutOfRangeError
	require.ErrorAs(t, err, &outOfRange)
	assert.Equal(t, 9, outOfRange.Index)
	assert.Equal(t, 3, outOfRange.Length)
}

func TestEvaluate_Malformed(t *testing.T) {
	cases := []string{
		"",
		".",
		"a.",
		"a..b",
		"a[x]",
		"[0]",
	}
	for _, expr := range cases {
		t.Run("expr="+expr, func(t *testing.T) {
			_, err := path.Evaluate(expr, testRoot())

			var malformed *path.MalformedExpressionError
			require.ErrorAs(t, err, &malformed, "expression %q", expr)
			assert.Equal(t, expr, malformed.Expression)
		})
	}
}

func TestEvaluate_ValueRoot(t *testing.T) {
	payload := map[string]any{
		"foo": map[string]any{"text": "foobar"},
	}
	v, err := path.Evaluate("foo.text", path.ValueRoot(payload))
	require.NoError(t, err)
	assert.Equal(t, "foobar", v)
}

func TestEvaluate_ValueRoot_MissingKey(t *testing.T) {
	payload := map[string]any{"bar": "baz"}
	_, err := path.Evaluate("foo.text", path.ValueRoot(payload))

	var unknownField *path.UnknownFieldError
	require.ErrorAs(t, err, &unknownField)
	assert.Equal(t, "foo", unknownField.Field)
}

// secretive exposes hidden state only through the FieldLookup
// capability.
type secretive struct {
	hidden string
}

func (s secretive) LookupField(name string) (any, bool) {
	if name == "hidden" {
		return s.hidden, true
	}
	return nil, false
}

func TestEvaluate_FieldLookupCapability(t *testing.T) {
	root := path.VariablesRoot(vars{"obj": secretive{hidden: "state"}})

	v, err := path.Evaluate("obj.hidden", root)
	require.NoError(t, err)
	assert.Equal(t, "state", v)

	_, err = path.Evaluate("obj.other", root)
	var unknownField *path.UnknownFieldError
	assert.ErrorAs(t, err, &unknownField)
}

func TestEvaluate_PointerDeref(t *testing.T) {
	o := &order{Total: 7}
	v, err := path.Evaluate("order.total", path.VariablesRoot(vars{"order": o}))
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
}

func TestIterator_Lazy(t *testing.T) {
	// Resolution stops at the failing segment; earlier segments are
	// still observable.
	it, err := path.NewIterator("order.items[2].missing.more", testRoot())
	require.NoError(t, err)

	var seen []string
	for it.Next() {
		seen = append(seen, it.Segment().String())
	}
	assert.Equal(t, []string{"order", "items[2]"}, seen)

	var unknownField *path.UnknownFieldError
	assert.ErrorAs(t, it.Err(), &unknownField)
}

func TestIterator_RestartByReconstruction(t *testing.T) {
	for range 2 {
		it, err := path.NewIterator("order.total", testRoot())
		require.NoError(t, err)
		require.True(t, it.Next())
		require.True(t, it.Next())
		assert.False(t, it.Next())
		assert.NoError(t, it.Err())
		assert.Equal(t, 13.99, it.Segment().Value)
	}
}

func TestErrNoValue_Distinct(t *testing.T) {
	// Malformed expressions are not ErrNoValue.
	_, err := path.Evaluate("", testRoot())
	assert.False(t, errors.Is(err, path.ErrNoValue))
}
