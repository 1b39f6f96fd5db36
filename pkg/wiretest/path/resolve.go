package path

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"
)

// Variables is the lookup capability a variable table provides to the
// evaluator. The root of an expression resolves its first segment
// through this interface when the root is a variable table.
type Variables interface {
	// Variable returns the value bound to name and whether it exists.
	Variable(name string) (any, bool)
}

// FieldLookup is the structural-access capability a value can
// implement to control how the evaluator navigates into it. Values
// that do not implement it are navigated via maps or reflection over
// exported struct fields; unexported struct state is reachable only
// through this interface.
type FieldLookup interface {
	// LookupField returns the named member's value and whether the
	// member exists.
	LookupField(name string) (any, bool)
}

// Root is the starting point of an expression, a tagged union of a
// variable table and a plain value. The distinction decides how the
// first segment resolves: by variable lookup or by field lookup.
type Root struct {
	vars  Variables
	value any
}

// VariablesRoot returns a Root whose first segment resolves as a
// variable name in vars.
func VariablesRoot(vars Variables) Root {
	return Root{vars: vars}
}

// ValueRoot returns a Root whose first segment resolves as a field of
// value.
func ValueRoot(value any) Root {
	return Root{value: value}
}

// resolve resolves one raw segment against its parent and returns the
// completed Segment. expression is the full original expression, used
// only for diagnostics.
func (r Root) resolve(seg rawSegment, expression string) (Segment, error) {
	var value any
	if r.vars != nil {
		v, ok := r.vars.Variable(seg.name)
		if !ok {
			return Segment{}, &UnknownVariableError{Expression: expression}
		}
		value = v
	} else {
		v, err := lookupField(seg.name, r.value)
		if err != nil {
			return Segment{}, err
		}
		value = v
	}

	if seg.index >= 0 {
		indexed, err := indexSequence(seg, value)
		if err != nil {
			return Segment{}, err
		}
		value = indexed
	}

	return Segment{Name: seg.name, Index: seg.index, Value: value}, nil
}

// lookupField reads the named member from parent. Resolution order:
// the FieldLookup capability, string-keyed maps, then reflection over
// struct fields (pointers dereferenced, exported-name fallback for
// lower-cased expression segments).
func lookupField(name string, parent any) (any, error) {
	if parent == nil {
		return nil, &UnknownFieldError{Field: name, TypeName: "nil"}
	}

	if lookup, ok := parent.(FieldLookup); ok {
		if v, ok := lookup.LookupField(name); ok {
			return v, nil
		}
		return nil, &UnknownFieldError{Field: name, TypeName: typeName(parent)}
	}

	switch m := parent.(type) {
	case map[string]any:
		if v, ok := m[name]; ok {
			return v, nil
		}
		return nil, &UnknownFieldError{Field: name, TypeName: typeName(parent)}
	case map[string]string:
		if v, ok := m[name]; ok {
			return v, nil
		}
		return nil, &UnknownFieldError{Field: name, TypeName: typeName(parent)}
	}

	v := reflect.ValueOf(parent)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, &UnknownFieldError{Field: name, TypeName: typeName(parent)}
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String {
		mv := v.MapIndex(reflect.ValueOf(name))
		if mv.IsValid() {
			return mv.Interface(), nil
		}
		return nil, &UnknownFieldError{Field: name, TypeName: typeName(parent)}
	}
	if v.Kind() == reflect.Struct {
		field := v.FieldByName(name)
		if !field.IsValid() {
			field = v.FieldByName(exportedName(name))
		}
		if field.IsValid() && field.CanInterface() {
			return field.Interface(), nil
		}
	}
	return nil, &UnknownFieldError{Field: name, TypeName: typeName(parent)}
}

// indexSequence returns the element of value at the segment's index.
func indexSequence(seg rawSegment, value any) (any, error) {
	segName := rawSegmentString(seg)
	if value == nil {
		return nil, &NotIndexableError{Segment: segName, TypeName: "nil"}
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, &NotIndexableError{Segment: segName, TypeName: typeName(value)}
	}
	if seg.index >= v.Len() {
		return nil, &IndexOutOfRangeError{Segment: segName, Index: seg.index, Length: v.Len()}
	}
	return v.Index(seg.index).Interface(), nil
}

func rawSegmentString(seg rawSegment) string {
	return Segment{Name: seg.name, Index: seg.index}.String()
}

// exportedName upper-cases the first rune so expression segments like
// "items" can reach the exported struct field "Items".
func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
