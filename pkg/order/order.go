// Package order gives a name to the three-way comparison result that the
// btree core is parameterized over.
//
// The core never bakes an ordering into the element type T; every operation
// takes a comparator closure instead, so that the same storage machinery can
// serve both key-indexed maps (where the probe type Q is a key and T is a
// key-value pair) and plain sorted sets (where Q == T).
package order

import "cmp"

// Ordering is the result of comparing two values.
//
// It is interchangeable with the standard library's [cmp.Compare], which is
// documented to return exactly -1, 0, or +1; Of converts any such int into
// a named Ordering.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

// Of adapts an int in the style of [cmp.Compare] into an Ordering.
func Of(i int) Ordering {
	switch {
	case i < 0:
		return Less
	case i > 0:
		return Greater
	default:
		return Equal
	}
}

// IsLess, IsEqual and IsGreater are the three-way tests callers most often
// want; they exist so call sites read as `cmp(a, q).IsLess()` rather than
// repeating the zero-value comparisons inline.
func (o Ordering) IsLess() bool    { return o < Equal }
func (o Ordering) IsEqual() bool   { return o == Equal }
func (o Ordering) IsGreater() bool { return o > Equal }

// Reverse flips Less and Greater, leaving Equal untouched.
func (o Ordering) Reverse() Ordering { return -o }

func (o Ordering) String() string {
	switch o {
	case Less:
		return "Less"
	case Greater:
		return "Greater"
	default:
		return "Equal"
	}
}

// Func compares a stored element T against a probe Q.
//
// It must be a strict total order on the domain of stored elements when
// Q == T. When Q differs from T (the map case, where Q is a bare key and T
// is a key-value pair), the order induced by comparing (a, q) and (b, q)
// must be compatible with the order induced on (a, b) by the total order —
// the core does not and cannot verify this; violating it is a caller logic
// bug, not a core safety issue.
type Func[T, Q any] func(elem T, probe Q) Ordering

// Of3Way builds a Func from a plain three-way int comparator, such as one
// built on top of [cmp.Compare] or [strings.Compare].
func Of3Way[T, Q any](cmp3 func(T, Q) int) Func[T, Q] {
	return func(elem T, probe Q) Ordering { return Of(cmp3(elem, probe)) }
}

// Ordered builds a Func for element and probe types that are both
// [cmp.Ordered], delegating to the standard library's comparison.
func Ordered[T cmp.Ordered]() Func[T, T] {
	return func(a, b T) Ordering { return Of(cmp.Compare(a, b)) }
}
