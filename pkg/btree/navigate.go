package btree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/flier/btreecore/pkg/opt"
	"github.com/flier/btreecore/pkg/order"
	"github.com/flier/btreecore/pkg/res"
)

// ErrEmptyTree is returned by AddressOf when the tree has no root node (it
// was never inserted into, or was cleared or forgotten), so there is no node
// to name a gap address in. Unlike *GapError, it carries no Address. A tree
// emptied by removals keeps its empty root leaf, and AddressOf then returns
// a *GapError naming that leaf instead.
var ErrEmptyTree = errors.New("btreecore: tree is empty")

// GapError is the Err payload of AddressIn: the search for key missed, and
// Gap names the insertion-gap address where an element equal to key would
// need to go.
type GapError[H comparable] struct {
	Gap Address[H]
}

func (e *GapError[H]) Error() string {
	return fmt.Sprintf("btreecore: no element at %v/%v", e.Gap.Node, e.Gap.Offset)
}

// AddressIn searches starting at id, binary searching the items of each
// node visited; on an exact match it returns Ok(address-of-hit), otherwise
// it descends into the child whose subtree may contain the key, terminating
// with Err(*GapError) once the search reaches a leaf with no match.
func AddressIn[T any, Q any, H comparable](s Storage[T, H], id H, cmp order.Func[T, Q], key Q) res.Result[Address[H]] {
	current := id

	for {
		switch node := s.Get(current).(type) {
		case *LeafNode[T, H]:
			i, hit := searchLeaf[T, Q, H](node, cmp, key)
			addr := Address[H]{Node: current, Offset: Offset(i)}

			if hit {
				return res.Ok(addr)
			}

			return res.Err[Address[H]](&GapError[H]{Gap: addr})
		case *InternalNode[T, H]:
			i, hit := searchInternal[T, Q, H](node, cmp, key)
			if hit {
				return res.Ok(Address[H]{Node: current, Offset: Offset(i)})
			}

			current = node.ChildID(i)
		default:
			panic("btreecore: unknown node variant")
		}
	}
}

func searchLeaf[T any, Q any, H comparable](n *LeafNode[T, H], cmp order.Func[T, Q], key Q) (int, bool) {
	i := sort.Search(n.Items.Len(), func(i int) bool {
		return !cmp(n.Items.Get(i), key).IsLess()
	})

	return i, i < n.Items.Len() && cmp(n.Items.Get(i), key).IsEqual()
}

func searchInternal[T any, Q any, H comparable](n *InternalNode[T, H], cmp order.Func[T, Q], key Q) (int, bool) {
	i := sort.Search(n.Branches.Len(), func(i int) bool {
		return !cmp(n.Branches.Get(i).Sep, key).IsLess()
	})

	return i, i < n.Branches.Len() && cmp(n.Branches.Get(i).Sep, key).IsEqual()
}

// LeafAddress converts an address naming a position in an internal node
// into the rightmost leaf of the subtree to its left, so that insertion
// always lands in a leaf. An address already naming a leaf is returned
// unchanged.
func LeafAddress[T any, H comparable](s Storage[T, H], addr Address[H]) Address[H] {
	n := s.Get(addr.Node)
	if n.Leaf() {
		return addr
	}

	in := n.(*InternalNode[T, H])

	idx := 0
	if !addr.Offset.IsBefore() {
		idx = addr.Offset.Int()
	}

	leaf := rightmostLeaf[T, H](s, in.ChildID(idx))

	return Address[H]{Node: leaf, Offset: Offset(s.Get(leaf).ItemCount())}
}

// Normalize climbs to the parent and re-expresses the address as the
// parent's child-index whenever addr.Offset exceeds its node's item count,
// repeating until the offset is in range. Returns None if the climb
// exhausts the root.
func Normalize[T any, H comparable](s Storage[T, H], addr Address[H]) opt.Option[Address[H]] {
	for {
		n := s.Get(addr.Node)

		if addr.Offset.IsBefore() || int(addr.Offset) <= n.ItemCount() {
			return opt.Some(addr)
		}

		parentOpt := n.Parent()
		if parentOpt.IsNone() {
			return opt.None[Address[H]]()
		}

		parentID := parentOpt.Unwrap()
		parent := s.Get(parentID).(*InternalNode[T, H])
		addr = Address[H]{Node: parentID, Offset: Offset(parent.ChildIndex(addr.Node))}
	}
}

func leftmostLeaf[T any, H comparable](s Storage[T, H], h H) H {
	for {
		in, ok := s.Get(h).(*InternalNode[T, H])
		if !ok {
			return h
		}

		h = in.FirstChild()
	}
}

func rightmostLeaf[T any, H comparable](s Storage[T, H], h H) H {
	for {
		in, ok := s.Get(h).(*InternalNode[T, H])
		if !ok {
			return h
		}

		if in.Branches.Len() == 0 {
			h = in.FirstChild()
		} else {
			h = in.Branches.Get(in.Branches.Len() - 1).Child
		}
	}
}

// climbForNextBranch climbs from child toward the root looking for the
// first ancestor whose child-index still has a branch at or after it —
// that branch's separator is the next item in-order. Returns None once the
// climb reaches the true root without finding one.
func climbForNextBranch[T any, H comparable](s Storage[T, H], child H) opt.Option[Address[H]] {
	for {
		parentOpt := s.Get(child).Parent()
		if parentOpt.IsNone() {
			return opt.None[Address[H]]()
		}

		parentID := parentOpt.Unwrap()
		parent := s.Get(parentID).(*InternalNode[T, H])
		idx := parent.ChildIndex(child)

		if idx < parent.Branches.Len() {
			return opt.Some(Address[H]{Node: parentID, Offset: Offset(idx)})
		}

		child = parentID
	}
}

// climbForPrevBranch is the mirror of climbForNextBranch.
func climbForPrevBranch[T any, H comparable](s Storage[T, H], child H) opt.Option[Address[H]] {
	for {
		parentOpt := s.Get(child).Parent()
		if parentOpt.IsNone() {
			return opt.None[Address[H]]()
		}

		parentID := parentOpt.Unwrap()
		parent := s.Get(parentID).(*InternalNode[T, H])
		idx := parent.ChildIndex(child)

		if idx-1 >= 0 {
			return opt.Some(Address[H]{Node: parentID, Offset: Offset(idx - 1)})
		}

		child = parentID
	}
}

// endOfTree climbs from a node to the root and returns the root's
// one-past-the-end back address.
func endOfTree[T any, H comparable](s Storage[T, H], from H) Address[H] {
	h := from

	for {
		n := s.Get(h)

		parentOpt := n.Parent()
		if parentOpt.IsNone() {
			return Address[H]{Node: h, Offset: Offset(n.ItemCount())}
		}

		h = parentOpt.Unwrap()
	}
}

// frontOfTree climbs from a node to the root and returns the root's Before
// address.
func frontOfTree[T any, H comparable](s Storage[T, H], from H) Address[H] {
	h := from

	for {
		parentOpt := s.Get(h).Parent()
		if parentOpt.IsNone() {
			return Address[H]{Node: h, Offset: Before}
		}

		h = parentOpt.Unwrap()
	}
}

// NextItemAddress returns the next occupied offset in in-order traversal,
// or None at the end of the tree.
func NextItemAddress[T any, H comparable](s Storage[T, H], addr Address[H]) opt.Option[Address[H]] {
	switch n := s.Get(addr.Node).(type) {
	case *LeafNode[T, H]:
		o := addr.Offset.Incr()
		if int(o) < n.Items.Len() {
			return opt.Some(Address[H]{Node: addr.Node, Offset: o})
		}

		return climbForNextBranch[T, H](s, addr.Node)
	case *InternalNode[T, H]:
		o := addr.Offset.Incr()
		leaf := leftmostLeaf[T, H](s, n.ChildID(int(o)))

		return opt.Some(Address[H]{Node: leaf, Offset: 0})
	default:
		panic("btreecore: unknown node variant")
	}
}

// PreviousItemAddress is the symmetric predecessor of NextItemAddress.
func PreviousItemAddress[T any, H comparable](s Storage[T, H], addr Address[H]) opt.Option[Address[H]] {
	switch n := s.Get(addr.Node).(type) {
	case *LeafNode[T, H]:
		if addr.Offset.IsBefore() {
			return climbForPrevBranch[T, H](s, addr.Node)
		}

		if idx := int(addr.Offset) - 1; idx >= 0 {
			return opt.Some(Address[H]{Node: addr.Node, Offset: Offset(idx)})
		}

		return climbForPrevBranch[T, H](s, addr.Node)
	case *InternalNode[T, H]:
		idx := 0
		if !addr.Offset.IsBefore() {
			idx = int(addr.Offset)
		}

		leaf := rightmostLeaf[T, H](s, n.ChildID(idx))
		leafItems := s.Get(leaf).ItemCount()

		return opt.Some(Address[H]{Node: leaf, Offset: Offset(leafItems - 1)})
	default:
		panic("btreecore: unknown node variant")
	}
}

// NextBackAddress returns the next back address (a natural, non-Before
// offset). Unlike NextItemAddress, it may land on the one-past-the-end gap
// rather than an occupied item.
func NextBackAddress[T any, H comparable](s Storage[T, H], addr Address[H]) Address[H] {
	if next := NextItemAddress[T, H](s, addr); next.IsSome() {
		return next.Unwrap()
	}

	return endOfTree[T, H](s, addr.Node)
}

// PreviousFrontAddress returns the previous front address, which may be
// Before.
func PreviousFrontAddress[T any, H comparable](s Storage[T, H], addr Address[H]) Address[H] {
	if prev := PreviousItemAddress[T, H](s, addr); prev.IsSome() {
		return prev.Unwrap()
	}

	return frontOfTree[T, H](s, addr.Node)
}

// NextItemOrBackAddress returns the next occupied address after addr, or
// addr itself, unmodified, when no next item exists. RemoveAt's
// internal-node branch uses it, before anything is removed, to find the
// removed item's in-order successor.
func NextItemOrBackAddress[T any, H comparable](s Storage[T, H], addr Address[H]) Address[H] {
	if next := NextItemAddress[T, H](s, addr); next.IsSome() {
		return next.Unwrap()
	}

	return addr
}

// ReplaceAt swaps elem into addr in place, returning the displaced element.
// No balance change, so no rebalance call.
func ReplaceAt[T any, H comparable](s Storage[T, H], addr Address[H], elem T) T {
	switch n := s.Get(addr.Node).(type) {
	case *LeafNode[T, H]:
		old := n.Items.Get(addr.Offset.Int())
		n.Items.Set(addr.Offset.Int(), elem)

		return old
	case *InternalNode[T, H]:
		ptr := n.ItemPtr(addr.Offset)
		old := *ptr
		*ptr = elem

		return old
	default:
		panic("btreecore: unknown node variant")
	}
}

// InsertExactlyAt inserts elem at leafAddr.Offset (rightChild becomes the
// paired right child when leafAddr.Node is an internal node during a
// cascading overflow insert), then invokes Rebalance at that node.
func InsertExactlyAt[T any, H comparable](
	s Storage[T, H], root opt.Option[H], leafAddr Address[H], elem T, rightChild opt.Option[H],
) (opt.Option[H], opt.Option[Address[H]]) {
	switch n := s.Get(leafAddr.Node).(type) {
	case *LeafNode[T, H]:
		n.Items.Insert(leafAddr.Offset.Int(), elem)
	case *InternalNode[T, H]:
		child := rightChild.Unwrap()
		n.InsertBranchAt(leafAddr.Offset.Int(), elem, child)
		s.Get(child).SetParent(opt.Some(leafAddr.Node))
	default:
		panic("btreecore: unknown node variant")
	}

	return Rebalance(s, root, leafAddr.Node, opt.Some(leafAddr))
}

// InsertAt creates a singleton leaf root if addr is absent, otherwise
// resolves addr to a leaf address with LeafAddress and inserts there.
func InsertAt[T any, H comparable](
	s Storage[T, H], root opt.Option[H], addr opt.Option[Address[H]], elem T,
) (opt.Option[H], opt.Option[Address[H]]) {
	if addr.IsNone() {
		leaf := NewLeafNode[T, H](opt.None[H]())
		leaf.Items.Push(elem)
		id := s.InsertNode(leaf)

		return opt.Some(id), opt.Some(Address[H]{Node: id, Offset: 0})
	}

	leafAddr := LeafAddress[T, H](s, addr.Unwrap())

	return InsertExactlyAt[T, H](s, root, leafAddr, elem, opt.None[H]())
}

// RemoveAt removes the item at addr. If addr points into a leaf, the item
// is removed and rebalance runs at that leaf. Otherwise addr names an item
// in an internal node: its in-order predecessor (the rightmost item of the
// left subtree) is swapped into addr's slot and removed from the leaf it
// came from, and rebalance runs there. newAddr is tracked through that
// rebalance: for a leaf removal it is the position at addr's offset (the
// gap the removal left, holding the next item of that leaf if there is
// one); for an internal removal it is the removed item's former in-order
// successor.
func RemoveAt[T any, H comparable](
	s Storage[T, H], root opt.Option[H], addr Address[H],
) (newRoot opt.Option[H], item T, newAddr opt.Option[Address[H]]) {
	switch n := s.Get(addr.Node).(type) {
	case *LeafNode[T, H]:
		item = n.Remove(addr.Offset)
		newRoot, newAddr = Rebalance(s, root, addr.Node, opt.Some(addr))

		return newRoot, item, newAddr
	case *InternalNode[T, H]:
		item = n.Item(addr.Offset)

		// The caller-visible result address must land on addr's former
		// successor, not its predecessor — compute it before the predecessor
		// is swapped into addr's slot, while addr still names the removed
		// item and the tree is otherwise untouched.
		successor := NextItemOrBackAddress[T, H](s, addr)

		leftChild := n.ChildID(addr.Offset.Int())
		leaf := rightmostLeaf[T, H](s, leftChild)
		leafNode := s.Get(leaf).(*LeafNode[T, H])
		predecessor := leafNode.RemoveLast()

		*n.ItemPtr(addr.Offset) = predecessor

		newRoot, newAddr = Rebalance(s, root, leaf, opt.Some(successor))

		return newRoot, item, newAddr
	default:
		panic("btreecore: unknown node variant")
	}
}
