package filter

import (
	"fmt"
	"strings"
)

// Integer is the set of types accepted by BitwiseAnd.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Value is the set of types a FieldFilter can carry.
type Value interface {
	Integer | ~float32 | ~float64 | ~string | ~bool
}

// FieldFilter is one constraint on one field.
//
// The interface is sealed: filters are built with the constructors in
// this package (EqualTo, In, ...).
type FieldFilter interface {
	// Operator reports which comparison the filter applies.
	Operator() Operator

	// Render returns the wire fragment for field, e.g. "name-lk=foo*".
	Render(field string) string

	empty() bool
}

type valueFilter[T Value] struct {
	op    Operator
	value T
}

func (f valueFilter[T]) Operator() Operator { return f.op }

func (f valueFilter[T]) Render(field string) string {
	return field + f.op.Token() + fmt.Sprint(f.value)
}

func (f valueFilter[T]) empty() bool {
	return fmt.Sprint(f.value) == ""
}

type arrayFilter[T Value] struct {
	op     Operator
	values []T
}

func (f arrayFilter[T]) Operator() Operator { return f.op }

func (f arrayFilter[T]) Render(field string) string {
	parts := make([]string, 0, len(f.values))
	for _, v := range f.values {
		parts = append(parts, fmt.Sprint(v))
	}
	return field + f.op.Token() + strings.Join(parts, ",")
}

// A nil slice is treated as a missing value. A non-nil empty slice is a
// valid filter and renders with an empty value.
func (f arrayFilter[T]) empty() bool {
	return f.values == nil
}

// EqualTo matches field == value.
func EqualTo[T Value](value T) FieldFilter {
	return valueFilter[T]{op: OpEqual, value: value}
}

// NotEqualTo matches field != value.
func NotEqualTo[T Value](value T) FieldFilter {
	return valueFilter[T]{op: OpNotEqual, value: value}
}

// Min matches field >= value.
func Min[T Value](value T) FieldFilter {
	return valueFilter[T]{op: OpMinimum, value: value}
}

// GreaterThan matches field > value.
func GreaterThan[T Value](value T) FieldFilter {
	return valueFilter[T]{op: OpGreaterThan, value: value}
}

// Max matches field <= value.
func Max[T Value](value T) FieldFilter {
	return valueFilter[T]{op: OpMaximum, value: value}
}

// LessThan matches field < value.
func LessThan[T Value](value T) FieldFilter {
	return valueFilter[T]{op: OpLessThan, value: value}
}

// BitwiseAnd matches field & value != 0.
func BitwiseAnd[T Integer](value T) FieldFilter {
	return valueFilter[T]{op: OpBitwiseAnd, value: value}
}

// Like matches field against a wildcard pattern ('*').
func Like(pattern string) FieldFilter {
	return valueFilter[string]{op: OpLike, value: pattern}
}

// NotLike excludes field values matching a wildcard pattern.
func NotLike(pattern string) FieldFilter {
	return valueFilter[string]{op: OpNotLike, value: pattern}
}

// SetEquals matches field against an exact list of values.
func SetEquals[T Value](values []T) FieldFilter {
	return arrayFilter[T]{op: OpSetEquals, values: values}
}

// In matches field values contained in values.
func In[T Value](values []T) FieldFilter {
	return arrayFilter[T]{op: OpIn, values: values}
}

// NotIn excludes field values contained in values.
func NotIn[T Value](values []T) FieldFilter {
	return arrayFilter[T]{op: OpNotIn, values: values}
}
