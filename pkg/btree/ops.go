package btree

import (
	"github.com/flier/btreecore/pkg/opt"
	"github.com/flier/btreecore/pkg/order"
	"github.com/flier/btreecore/pkg/res"
)

// Get, GetPtr, Remove and AddressOf are free functions rather than methods
// of Tree because Go methods cannot introduce a type parameter beyond
// their receiver's: a probe type Q that differs from the stored element
// type T (the map case, where T is a key-value pair and Q is a bare key)
// can only be expressed this way. Tree's same-named methods are the Q == T
// convenience form, matching the split this package's own pkg/opt and
// pkg/res use between their free `ops.go` functions and their single-type
// convenience methods.

// Get returns the stored element equal to key under cmp, or None.
func Get[T any, Q any, H comparable](t *Tree[T, H], cmp order.Func[T, Q], key Q) opt.Option[T] {
	if t.root.IsNone() {
		return opt.None[T]()
	}

	result := AddressIn[T, Q, H](t.storage, t.root.Unwrap(), cmp, key)
	if result.IsErr() {
		return opt.None[T]()
	}

	return opt.Some(itemAt[T, H](t.storage, result.Unwrap()))
}

// GetPtr returns a pointer to the stored element equal to key under cmp, for
// in-place mutation, or None.
func GetPtr[T any, Q any, H comparable](t *Tree[T, H], cmp order.Func[T, Q], key Q) opt.Option[*T] {
	if t.root.IsNone() {
		return opt.None[*T]()
	}

	result := AddressIn[T, Q, H](t.storage, t.root.Unwrap(), cmp, key)
	if result.IsErr() {
		return opt.None[*T]()
	}

	return opt.Some(itemPtrAt[T, H](t.storage, result.Unwrap()))
}

// Remove removes and returns the stored element equal to key under cmp, or
// None if no such element exists.
func Remove[T any, Q any, H comparable](t *Tree[T, H], cmp order.Func[T, Q], key Q) opt.Option[T] {
	if t.root.IsNone() {
		return opt.None[T]()
	}

	result := AddressIn[T, Q, H](t.storage, t.root.Unwrap(), cmp, key)
	if result.IsErr() {
		return opt.None[T]()
	}

	newRoot, item, _ := RemoveAt[T, H](t.storage, t.root, result.Unwrap())
	t.root = newRoot
	t.length--

	return opt.Some(item)
}

// AddressOf returns Ok(address-of-hit) if an element equal to key is
// present. Otherwise it returns Err(*GapError) naming the insertion gap, or
// Err(ErrEmptyTree) if the tree has no root node and so has no node to
// express a gap address in. A tree emptied by removals still has its root
// leaf and gets a *GapError.
func AddressOf[T any, Q any, H comparable](t *Tree[T, H], cmp order.Func[T, Q], key Q) res.Result[Address[H]] {
	if t.root.IsNone() {
		return res.Err[Address[H]](ErrEmptyTree)
	}

	return AddressIn[T, Q, H](t.storage, t.root.Unwrap(), cmp, key)
}
