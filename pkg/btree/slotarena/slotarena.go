// Package slotarena implements an index-addressed [btree.Storage] backend:
// nodes live in a growable slice instead of one heap allocation per node,
// and released slots are recycled through a free list rather than left for
// the garbage collector. It is grounded on the host module's pkg/arena, but
// rebuilt without that package's ART-specific unsafe pointer tagging (it
// relies on a generated shapes.go this module has no counterpart for) —
// here a slot is addressed by a plain integer index plus a generation
// counter, which is all a B-tree node needs.
package slotarena

import (
	"fmt"

	"github.com/flier/btreecore/internal/debug"
	"github.com/flier/btreecore/pkg/btree"
	"github.com/flier/btreecore/pkg/opt"
)

// Handle addresses a slot in an [Arena]. index selects the slot; gen guards
// against a handle outliving a ReleaseNode/reuse cycle on that slot.
type Handle struct {
	index int
	gen   uint32
}

func (h Handle) String() string { return fmt.Sprintf("slot#%d@%d", h.index, h.gen) }

type slot[T any] struct {
	node btree.Node[T, Handle]
	gen  uint32
	live bool
}

// Arena is a [btree.Storage] backed by a single growable slice of slots,
// with released slots recycled via an internal free list.
type Arena[T any] struct {
	slots []slot[T]
	free  []int
}

// New returns an empty Arena.
func New[T any]() *Arena[T] { return &Arena[T]{} }

var _ btree.Storage[int, Handle] = (*Arena[int])(nil)
var _ btree.Dropper[Handle] = (*Arena[int])(nil)

// AllocateNode reserves a fresh slot for n, recycling a released slot if the
// free list is non-empty, and returns its handle.
func (a *Arena[T]) AllocateNode(n btree.Node[T, Handle]) Handle {
	if len(a.free) > 0 {
		i := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]

		a.slots[i].node = n
		a.slots[i].live = true

		return Handle{index: i, gen: a.slots[i].gen}
	}

	a.slots = append(a.slots, slot[T]{node: n, live: true})

	return Handle{index: len(a.slots) - 1, gen: 0}
}

// InsertNode allocates n and reparents every child it names (per
// [btree.ReparentChildren]) to point back at the freshly assigned handle.
func (a *Arena[T]) InsertNode(n btree.Node[T, Handle]) Handle {
	h := a.AllocateNode(n)

	btree.ReparentChildren[T, Handle](a, h, n)

	return h
}

// ReleaseNode frees h's slot, bumping its generation so that any handle
// still naming it is detectably stale, and returns the node that occupied
// it.
func (a *Arena[T]) ReleaseNode(h Handle) btree.Node[T, Handle] {
	s := &a.slots[h.index]
	debug.Assert(s.live && s.gen == h.gen, "release of a stale or already-freed handle %v", h)

	n := s.node
	s.node = nil
	s.live = false
	s.gen++
	a.free = append(a.free, h.index)

	return n
}

// Get returns the node at h.
//
// Panics if h names a freed or stale slot.
func (a *Arena[T]) Get(h Handle) btree.Node[T, Handle] {
	s := &a.slots[h.index]
	if !s.live || s.gen != h.gen {
		panic(fmt.Sprintf("btreecore: access to a stale or freed handle %v", h))
	}

	return s.node
}

// GetMut returns the node at h for in-place mutation. Since nodes are
// stored as interface values over pointers, it behaves identically to Get.
func (a *Arena[T]) GetMut(h Handle) btree.Node[T, Handle] { return a.Get(h) }

// StartDropping returns the Arena itself as a [btree.Dropper]: bulk teardown
// recycles slots through the free list directly, without reconstructing or
// re-walking each node's fields beyond what Tree.Forget already collects.
func (a *Arena[T]) StartDropping() opt.Option[btree.Dropper[Handle]] {
	return opt.Some[btree.Dropper[Handle]](a)
}

// DropNode implements [btree.Dropper] by recycling h's slot.
func (a *Arena[T]) DropNode(h Handle) {
	s := &a.slots[h.index]
	s.node = nil
	s.live = false
	s.gen++
	a.free = append(a.free, h.index)
}

// Len returns the number of live (allocated, unreleased) slots.
func (a *Arena[T]) Len() int { return len(a.slots) - len(a.free) }
