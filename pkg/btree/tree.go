package btree

import (
	"iter"

	"github.com/flier/btreecore/pkg/opt"
	"github.com/flier/btreecore/pkg/order"
	"github.com/flier/btreecore/pkg/res"
)

// Tree is the thin owner of a B-tree: an optional root handle, an element
// count, and a storage. It is single-threaded and exclusively owned by its
// caller; nothing here is safe for concurrent use.
type Tree[T any, H comparable] struct {
	storage Storage[T, H]
	root    opt.Option[H]
	length  int
}

// New returns an empty tree backed by storage.
func New[T any, H comparable](storage Storage[T, H]) *Tree[T, H] {
	return &Tree[T, H]{storage: storage}
}

// Len returns the number of stored elements.
func (t *Tree[T, H]) Len() int { return t.length }

// IsEmpty reports whether the tree holds no elements.
func (t *Tree[T, H]) IsEmpty() bool { return t.length == 0 }

func itemAt[T any, H comparable](s Storage[T, H], addr Address[H]) T {
	switch n := s.Get(addr.Node).(type) {
	case *LeafNode[T, H]:
		return n.Item(addr.Offset)
	case *InternalNode[T, H]:
		return n.Item(addr.Offset)
	default:
		panic("btreecore: unknown node variant")
	}
}

func itemPtrAt[T any, H comparable](s Storage[T, H], addr Address[H]) *T {
	switch n := s.Get(addr.Node).(type) {
	case *LeafNode[T, H]:
		return n.ItemPtr(addr.Offset)
	case *InternalNode[T, H]:
		return n.ItemPtr(addr.Offset)
	default:
		panic("btreecore: unknown node variant")
	}
}

// Insert locates elem's ordered position under cmp. If an equal element is
// present, it replaces it in place and returns the displaced value;
// otherwise it inserts a new element and grows the tree by one, returning
// None.
func (t *Tree[T, H]) Insert(cmp order.Func[T, T], elem T) opt.Option[T] {
	if t.root.IsNone() {
		newRoot, _ := InsertAt[T, H](t.storage, t.root, opt.None[Address[H]](), elem)
		t.root = newRoot
		t.length++

		return opt.None[T]()
	}

	result := AddressIn[T, T, H](t.storage, t.root.Unwrap(), cmp, elem)
	if result.IsOk() {
		old := ReplaceAt[T, H](t.storage, result.Unwrap(), elem)

		return opt.Some(old)
	}

	gap := result.UnwrapErr().(*GapError[H]).Gap
	newRoot, _ := InsertAt[T, H](t.storage, t.root, opt.Some(gap), elem)
	t.root = newRoot
	t.length++

	return opt.None[T]()
}

// Get is the Q == T convenience form of the free function [Get].
func (t *Tree[T, H]) Get(cmp order.Func[T, T], key T) opt.Option[T] { return Get[T, T, H](t, cmp, key) }

// Remove is the Q == T convenience form of the free function [Remove].
func (t *Tree[T, H]) Remove(cmp order.Func[T, T], key T) opt.Option[T] {
	return Remove[T, T, H](t, cmp, key)
}

// AddressOf is the Q == T convenience form of the free function [AddressOf].
func (t *Tree[T, H]) AddressOf(cmp order.Func[T, T], key T) res.Result[Address[H]] {
	return AddressOf[T, T, H](t, cmp, key)
}

// First returns the smallest stored element, or None if the tree is empty.
func (t *Tree[T, H]) First() opt.Option[T] {
	if t.root.IsNone() {
		return opt.None[T]()
	}

	leaf := leftmostLeaf[T, H](t.storage, t.root.Unwrap())
	n := t.storage.Get(leaf)

	if n.ItemCount() == 0 {
		return opt.None[T]()
	}

	return opt.Some(itemAt[T, H](t.storage, Address[H]{Node: leaf, Offset: 0}))
}

// Last returns the largest stored element, or None if the tree is empty.
func (t *Tree[T, H]) Last() opt.Option[T] {
	if t.root.IsNone() {
		return opt.None[T]()
	}

	leaf := rightmostLeaf[T, H](t.storage, t.root.Unwrap())
	n := t.storage.Get(leaf)

	if n.ItemCount() == 0 {
		return opt.None[T]()
	}

	return opt.Some(itemAt[T, H](t.storage, Address[H]{Node: leaf, Offset: Offset(n.ItemCount() - 1)}))
}

// Clear releases every node and empties the tree, running ordinary element
// destruction (Go's GC) along the way. Distinct from Forget, which skips
// reconstructing node values because the by-value iterator has already
// moved every element out.
func (t *Tree[T, H]) Clear() {
	if t.root.IsSome() {
		releaseSubtree[T, H](t.storage, t.root.Unwrap())
	}

	t.root = opt.None[H]()
	t.length = 0
}

func releaseSubtree[T any, H comparable](s Storage[T, H], h H) {
	n := s.ReleaseNode(h)

	if in, ok := n.(*InternalNode[T, H]); ok {
		releaseSubtree[T, H](s, in.FirstChild())

		for i := 0; i < in.Branches.Len(); i++ {
			releaseSubtree[T, H](s, in.Branches.Get(i).Child)
		}
	}
}

// Forget releases node memory without reconstructing a Node value per
// node, via Storage.StartDropping's Dropper when the backend supplies one.
// Used by the by-value iterator once it has read every element out.
func (t *Tree[T, H]) Forget() {
	if t.root.IsSome() {
		dropper := t.storage.StartDropping()
		forgetSubtree[T, H](t.storage, dropper, t.root.Unwrap())
	}

	t.root = opt.None[H]()
	t.length = 0
}

func forgetSubtree[T any, H comparable](s Storage[T, H], dropper opt.Option[Dropper[H]], h H) {
	n := s.Get(h)

	var children []H
	if in, ok := n.(*InternalNode[T, H]); ok {
		children = append(children, in.FirstChild())

		for i := 0; i < in.Branches.Len(); i++ {
			children = append(children, in.Branches.Get(i).Child)
		}
	}

	if dropper.IsSome() {
		dropper.Unwrap().DropNode(h)
	} else {
		s.ReleaseNode(h)
	}

	for _, c := range children {
		forgetSubtree[T, H](s, dropper, c)
	}
}

// Iter yields every element in non-decreasing comparator order.
func (t *Tree[T, H]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for a, ok := t.firstOccupied(); ok; {
			if !yield(itemAt[T, H](t.storage, a)) {
				return
			}

			next := NextItemAddress[T, H](t.storage, a)
			if next.IsNone() {
				return
			}

			a, ok = next.Unwrap(), true
		}
	}
}

// IterMut yields a pointer to every element, in non-decreasing comparator
// order, for in-place mutation that does not change ordering.
func (t *Tree[T, H]) IterMut() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for a, ok := t.firstOccupied(); ok; {
			if !yield(itemPtrAt[T, H](t.storage, a)) {
				return
			}

			next := NextItemAddress[T, H](t.storage, a)
			if next.IsNone() {
				return
			}

			a, ok = next.Unwrap(), true
		}
	}
}

// Rev yields every element in non-increasing (reverse) comparator order.
func (t *Tree[T, H]) Rev() iter.Seq[T] {
	return func(yield func(T) bool) {
		for a, ok := t.lastOccupied(); ok; {
			if !yield(itemAt[T, H](t.storage, a)) {
				return
			}

			prev := PreviousItemAddress[T, H](t.storage, a)
			if prev.IsNone() {
				return
			}

			a, ok = prev.Unwrap(), true
		}
	}
}

// RevMut is the reverse, mutable-pointer counterpart of Rev.
func (t *Tree[T, H]) RevMut() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for a, ok := t.lastOccupied(); ok; {
			if !yield(itemPtrAt[T, H](t.storage, a)) {
				return
			}

			prev := PreviousItemAddress[T, H](t.storage, a)
			if prev.IsNone() {
				return
			}

			a, ok = prev.Unwrap(), true
		}
	}
}

// IntoIter consumes the tree: it yields every element exactly once and
// then Forgets the tree's nodes, whether or not the caller's range loop
// exhausted it.
func (t *Tree[T, H]) IntoIter() iter.Seq[T] {
	return func(yield func(T) bool) {
		defer t.Forget()

		for a, ok := t.firstOccupied(); ok; {
			if !yield(itemAt[T, H](t.storage, a)) {
				return
			}

			next := NextItemAddress[T, H](t.storage, a)
			if next.IsNone() {
				return
			}

			a, ok = next.Unwrap(), true
		}
	}
}

func (t *Tree[T, H]) firstOccupied() (Address[H], bool) {
	if t.root.IsNone() {
		return Address[H]{}, false
	}

	leaf := leftmostLeaf[T, H](t.storage, t.root.Unwrap())
	if t.storage.Get(leaf).ItemCount() == 0 {
		return Address[H]{}, false
	}

	return Address[H]{Node: leaf, Offset: 0}, true
}

func (t *Tree[T, H]) lastOccupied() (Address[H], bool) {
	if t.root.IsNone() {
		return Address[H]{}, false
	}

	leaf := rightmostLeaf[T, H](t.storage, t.root.Unwrap())
	n := t.storage.Get(leaf)

	if n.ItemCount() == 0 {
		return Address[H]{}, false
	}

	return Address[H]{Node: leaf, Offset: Offset(n.ItemCount() - 1)}, true
}

// Clone deep-clones the tree into dst: every node is re-allocated into dst.
// An internal node is allocated before its children, which are cloned with
// its new handle as their parent; its child handles are filled in as the
// recursion returns.
func (t *Tree[T, H]) Clone(dst Storage[T, H]) *Tree[T, H] {
	var newRoot opt.Option[H]
	if t.root.IsSome() {
		newRoot = opt.Some(cloneSubtree[T, H](t.storage, dst, t.root.Unwrap(), opt.None[H]()))
	}

	return &Tree[T, H]{storage: dst, root: newRoot, length: t.length}
}

func cloneSubtree[T any, H comparable](src, dst Storage[T, H], h H, newParent opt.Option[H]) H {
	switch orig := src.Get(h).(type) {
	case *LeafNode[T, H]:
		leaf := NewLeafNode[T, H](newParent)
		for i := 0; i < orig.Items.Len(); i++ {
			leaf.Items.Push(orig.Items.Get(i))
		}

		return dst.AllocateNode(leaf)
	case *InternalNode[T, H]:
		var zero H
		placeholder := NewInternalNode[T, H](newParent, zero)
		newID := dst.AllocateNode(placeholder)

		placeholder.SetFirstChild(cloneSubtree[T, H](src, dst, orig.FirstChild(), opt.Some(newID)))

		for i := 0; i < orig.Branches.Len(); i++ {
			b := orig.Branches.Get(i)
			childID := cloneSubtree[T, H](src, dst, b.Child, opt.Some(newID))
			placeholder.Branches.Push(Branch[T, H]{Sep: b.Sep, Child: childID})
		}

		return newID
	default:
		panic("btreecore: unknown node variant")
	}
}
