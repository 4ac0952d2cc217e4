// Package barray implements a fixed-capacity inline array: a contiguous
// buffer of up to a small, statically bounded number of slots, a length
// counter, and uninitialized-slot semantics outside [0, Len()).
//
// This is the leaf building block the btree core's node types are built
// from (see [github.com/flier/btreecore/pkg/btree]): a leaf node's items and
// an internal node's branches are both [Array] values stored inline in the
// node struct, with no separate heap allocation or indirection per node.
package barray

import (
	"fmt"

	"github.com/flier/btreecore/internal/debug"
)

// MaxCap bounds every Array's capacity. The btree core's order is a
// compile-time constant no larger than MaxCap-1, so a single backing shape
// serves every node kind without requiring const generics (which Go does
// not have).
const MaxCap = 64

// Array is a fixed-capacity sequence of up to Cap() elements, stored inline
// with no heap indirection.
//
// The zero Array has a capacity of zero; use [New] to obtain one sized for
// a particular node.
type Array[T any] struct {
	data [MaxCap]T
	len  int
	cap  int
}

// New returns an empty Array with the given capacity, which must be between
// 0 and [MaxCap] inclusive.
func New[T any](cap int) Array[T] {
	debug.Assert(cap >= 0 && cap <= MaxCap, "capacity %d out of range [0, %d]", cap, MaxCap)

	return Array[T]{cap: cap}
}

// Len returns the number of initialized elements.
func (a *Array[T]) Len() int { return a.len }

// Cap returns the array's fixed capacity.
func (a *Array[T]) Cap() int { return a.cap }

// Empty reports whether the array holds no elements.
func (a *Array[T]) Empty() bool { return a.len == 0 }

// Full reports whether the array has reached its capacity.
func (a *Array[T]) Full() bool { return a.len == a.cap }

// Get returns the element at index i.
//
// Panics if i is out of [0, Len()).
func (a *Array[T]) Get(i int) T {
	if i < 0 || i >= a.len {
		panic(fmt.Sprintf("btreecore: index %d out of range [0, %d)", i, a.len))
	}

	return a.data[i]
}

// GetPtr returns a pointer to the element at index i, for in-place mutation.
//
// Panics if i is out of [0, Len()).
func (a *Array[T]) GetPtr(i int) *T {
	if i < 0 || i >= a.len {
		panic(fmt.Sprintf("btreecore: index %d out of range [0, %d)", i, a.len))
	}

	return &a.data[i]
}

// Set overwrites the element at index i.
//
// Panics if i is out of [0, Len()).
func (a *Array[T]) Set(i int, v T) {
	if i < 0 || i >= a.len {
		panic(fmt.Sprintf("btreecore: index %d out of range [0, %d)", i, a.len))
	}

	a.data[i] = v
}

// Push appends v to the back of the array.
//
// Panics if the array is full.
func (a *Array[T]) Push(v T) {
	if a.Full() {
		panic(fmt.Sprintf("btreecore: push on a full array (cap %d)", a.cap))
	}

	a.data[a.len] = v
	a.len++
}

// Pop removes and returns the last element.
//
// Panics if the array is empty.
func (a *Array[T]) Pop() T {
	debug.Assert(!a.Empty(), "pop on an empty array")

	a.len--
	v := a.data[a.len]
	var zero T
	a.data[a.len] = zero

	return v
}

// Insert inserts v at index i, shifting every element at or after i one
// slot to the right.
//
// Panics if the array is full or i is out of [0, Len()].
func (a *Array[T]) Insert(i int, v T) {
	if a.Full() {
		panic(fmt.Sprintf("btreecore: insert on a full array (cap %d)", a.cap))
	}
	debug.Assert(i >= 0 && i <= a.len, "index %d out of range [0, %d]", i, a.len)

	copy(a.data[i+1:a.len+1], a.data[i:a.len])
	a.data[i] = v
	a.len++
}

// Remove removes and returns the element at index i, shifting every later
// element one slot to the left.
//
// Panics if i is out of [0, Len()).
func (a *Array[T]) Remove(i int) T {
	debug.Assert(i >= 0 && i < a.len, "index %d out of range [0, %d)", i, a.len)

	v := a.data[i]
	copy(a.data[i:a.len-1], a.data[i+1:a.len])
	a.len--
	var zero T
	a.data[a.len] = zero

	return v
}

// Append moves every element of other onto the back of a, leaving other
// empty.
//
// Panics if a does not have enough spare capacity.
func (a *Array[T]) Append(other *Array[T]) {
	if a.cap-a.len < other.len {
		panic(fmt.Sprintf("btreecore: append would overflow capacity %d", a.cap))
	}

	copy(a.data[a.len:a.len+other.len], other.data[:other.len])
	a.len += other.len
	other.Clear()
}

// Drain removes the elements in [from, to) and returns them as a freshly
// allocated slice, shifting later elements left to close the gap.
//
// Panics if the range is out of bounds.
func (a *Array[T]) Drain(from, to int) []T {
	debug.Assert(0 <= from && from <= to && to <= a.len, "drain range [%d, %d) out of range [0, %d]", from, to, a.len)

	out := make([]T, to-from)
	copy(out, a.data[from:to])
	copy(a.data[from:a.len-(to-from)], a.data[to:a.len])

	n := to - from
	for i := a.len - n; i < a.len; i++ {
		var zero T
		a.data[i] = zero
	}
	a.len -= n

	return out
}

// Clear removes every element, running no destructors beyond Go's own GC:
// each slot is reset to its zero value so that it no longer keeps a
// previously stored pointer alive.
func (a *Array[T]) Clear() {
	var zero T
	for i := 0; i < a.len; i++ {
		a.data[i] = zero
	}
	a.len = 0
}

// Forget resets the array's length to zero without clearing any slot.
//
// The btree core uses it when a node's items have just been moved into
// another node (the Append step of a merge): the moved values now live in
// the receiving array, so this one only needs its length reset, and
// touching the backing slots again would be wasted work.
func (a *Array[T]) Forget() { a.len = 0 }

// Raw returns the initialized portion of the array as an ordinary slice.
//
// The returned slice aliases the array's backing storage and must not be
// retained past the next mutation of a.
func (a *Array[T]) Raw() []T { return a.data[:a.len] }
