package btree

import (
	"errors"
	"sort"

	"github.com/flier/btreecore/internal/debug"
	"github.com/flier/btreecore/pkg/barray"
	"github.com/flier/btreecore/pkg/opt"
	"github.com/flier/btreecore/pkg/order"
	"github.com/flier/btreecore/pkg/res"
)

// Balance classifies a node's item count against the order bounds.
type Balance uint8

const (
	Balanced Balance = iota
	Overflow
	Underflow
)

func (b Balance) String() string {
	switch b {
	case Overflow:
		return "Overflow"
	case Underflow:
		return "Underflow"
	default:
		return "Balanced"
	}
}

// ErrWouldUnderflow is the internal would-underflow signal: a sibling probed
// as a rotation donor cannot give up an item without itself falling below U.
// It never escapes this package as a caller-visible error.
var ErrWouldUnderflow = errors.New("btreecore: donor would underflow")

// Node is the uniform interface over the two node variants (leaf, internal).
// Operations meaningful on only one variant are not part of this interface;
// callers type-assert to *LeafNode[T, H] or *InternalNode[T, H] and get a
// panic from the failed assertion if they guess the wrong variant.
type Node[T any, H comparable] interface {
	// Leaf reports whether this node is a leaf (no children).
	Leaf() bool
	// Parent returns the handle of this node's parent, or None at the root.
	Parent() opt.Option[H]
	// SetParent overwrites the parent handle.
	SetParent(p opt.Option[H])
	// ItemCount returns the number of items: elements for a leaf, separators
	// for an internal node.
	ItemCount() int
	// Balance classifies this node against the order bounds. The root is
	// exempt from the underflow side; callers must check root-ness
	// themselves before acting on an Underflow verdict.
	Balance() Balance
}

// Branch is an internal node's (separator, right-child) pair: the separator
// divides the subtree rooted at the previous child from the subtree rooted
// at Child.
type Branch[T any, H comparable] struct {
	Sep   T
	Child H
}

// LeafNode holds up to Order+1 ordered elements and no children. The extra
// slot over Order absorbs a transient overflow so that the sole leaf
// insertion step never fails; splitting is deferred to the rebalance pass.
type LeafNode[T any, H comparable] struct {
	parent opt.Option[H]
	Items  barray.Array[T]
}

// NewLeafNode returns an empty leaf with the given parent.
func NewLeafNode[T any, H comparable](parent opt.Option[H]) *LeafNode[T, H] {
	return &LeafNode[T, H]{parent: parent, Items: barray.New[T](Order + 1)}
}

func (n *LeafNode[T, H]) Leaf() bool                  { return true }
func (n *LeafNode[T, H]) Parent() opt.Option[H]       { return n.parent }
func (n *LeafNode[T, H]) SetParent(p opt.Option[H])   { n.parent = p }
func (n *LeafNode[T, H]) ItemCount() int              { return n.Items.Len() }

func (n *LeafNode[T, H]) Balance() Balance {
	switch c := n.Items.Len(); {
	case c > Order:
		return Overflow
	case c < U:
		return Underflow
	default:
		return Balanced
	}
}

// search locates elem's position among the leaf's items via binary search,
// reporting whether an equal-keyed item already occupies that position.
func (n *LeafNode[T, H]) search(cmp order.Func[T, T], elem T) (int, bool) {
	i := sort.Search(n.Items.Len(), func(i int) bool {
		return cmp(n.Items.Get(i), elem).IsLess() == false
	})

	return i, i < n.Items.Len() && cmp(n.Items.Get(i), elem).IsEqual()
}

// InsertByKey locates elem's ordered position. If an equal-keyed element is
// already present, it swaps payloads and returns the displaced value;
// otherwise it inserts at the computed offset.
func (n *LeafNode[T, H]) InsertByKey(cmp order.Func[T, T], elem T) (Offset, opt.Option[T]) {
	i, hit := n.search(cmp, elem)
	if hit {
		old := n.Items.Get(i)
		n.Items.Set(i, elem)

		return Offset(i), opt.Some(old)
	}

	n.Items.Insert(i, elem)

	return Offset(i), opt.None[T]()
}

// Split is called only when overflowing (Items.Len() == Order+1). The right
// leaf receives the upper half, the median is promoted to the caller, and
// the left (receiver) leaf keeps the lower half.
func (n *LeafNode[T, H]) Split() (retained int, median T, right *LeafNode[T, H]) {
	debug.Assert(n.Balance() == Overflow, "Split called on a non-overflowing leaf")

	m := (n.Items.Len() - 1) / 2
	drained := n.Items.Drain(m, n.Items.Len())

	right = NewLeafNode[T, H](n.parent)
	for _, v := range drained[1:] {
		right.Items.Push(v)
	}

	return n.Items.Len(), drained[0], right
}

// Append appends separator, then moves every item of other onto the back of
// the receiver. other is left empty (Forgotten, not cleared): its items have
// been moved, not copied.
func (n *LeafNode[T, H]) Append(separator T, other *LeafNode[T, H]) Offset {
	offset := n.Items.Len()
	n.Items.Push(separator)

	for i := 0; i < other.Items.Len(); i++ {
		n.Items.Push(other.Items.Get(i))
	}
	other.Items.Forget()

	return Offset(offset)
}

// PushLeft inserts v at the front. O(len).
func (n *LeafNode[T, H]) PushLeft(v T) { n.Items.Insert(0, v) }

// PushRight appends v at the back. O(1).
func (n *LeafNode[T, H]) PushRight(v T) { n.Items.Push(v) }

// PopLeft removes and returns the first item, refusing with
// ErrWouldUnderflow if doing so would leave fewer than U items.
func (n *LeafNode[T, H]) PopLeft() res.Result[T] {
	if n.Items.Len() <= U {
		return res.Err[T](ErrWouldUnderflow)
	}

	return res.Ok(n.Items.Remove(0))
}

// PopRight removes and returns the last item, refusing with
// ErrWouldUnderflow if doing so would leave fewer than U items.
func (n *LeafNode[T, H]) PopRight() res.Result[T] {
	if n.Items.Len() <= U {
		return res.Err[T](ErrWouldUnderflow)
	}

	return res.Ok(n.Items.Pop())
}

func (n *LeafNode[T, H]) Remove(offset Offset) T { return n.Items.Remove(offset.Int()) }
func (n *LeafNode[T, H]) RemoveLast() T          { return n.Items.Pop() }
func (n *LeafNode[T, H]) Item(offset Offset) T   { return n.Items.Get(offset.Int()) }
func (n *LeafNode[T, H]) ItemPtr(offset Offset) *T { return n.Items.GetPtr(offset.Int()) }

// InternalNode holds a first child and up to Order (separator, right-child)
// branches. A node with k branches has k items and k+1 children.
type InternalNode[T any, H comparable] struct {
	parent     opt.Option[H]
	firstChild H
	Branches   barray.Array[Branch[T, H]]
}

// NewInternalNode returns an internal node with no branches and the given
// parent and first child. Callers append branches with PushRight or
// InsertBranchAt to give it content.
func NewInternalNode[T any, H comparable](parent opt.Option[H], firstChild H) *InternalNode[T, H] {
	return &InternalNode[T, H]{parent: parent, firstChild: firstChild, Branches: barray.New[Branch[T, H]](Order)}
}

// NewBinaryRoot builds a fresh two-child internal node, used when promoting
// a new root after a root split.
func NewBinaryRoot[T any, H comparable](left H, median T, right H) *InternalNode[T, H] {
	n := NewInternalNode[T, H](opt.None[H](), left)
	n.Branches.Push(Branch[T, H]{Sep: median, Child: right})

	return n
}

func (n *InternalNode[T, H]) Leaf() bool                { return false }
func (n *InternalNode[T, H]) Parent() opt.Option[H]     { return n.parent }
func (n *InternalNode[T, H]) SetParent(p opt.Option[H]) { n.parent = p }
func (n *InternalNode[T, H]) ItemCount() int            { return n.Branches.Len() }

func (n *InternalNode[T, H]) Balance() Balance {
	switch c := n.Branches.Len(); {
	case c >= Order:
		return Overflow
	case c < U:
		return Underflow
	default:
		return Balanced
	}
}

// FirstChild returns the handle of this node's leftmost child.
func (n *InternalNode[T, H]) FirstChild() H { return n.firstChild }

// SetFirstChild overwrites the leftmost child handle.
func (n *InternalNode[T, H]) SetFirstChild(h H) { n.firstChild = h }

// ChildID returns the i'th child: child 0 is firstChild, child i>0 is the
// (i-1)'th branch's child.
func (n *InternalNode[T, H]) ChildID(i int) H {
	if i == 0 {
		return n.firstChild
	}

	return n.Branches.Get(i - 1).Child
}

// ChildIndex is the reverse lookup of ChildID, O(Order). Returns -1 if id
// does not name a child of this node.
func (n *InternalNode[T, H]) ChildIndex(id H) int {
	if n.firstChild == id {
		return 0
	}

	for i := 0; i < n.Branches.Len(); i++ {
		if n.Branches.Get(i).Child == id {
			return i + 1
		}
	}

	return -1
}

// Separators returns the (left, right) separator pair bracketing the i'th
// child.
func (n *InternalNode[T, H]) Separators(i int) (left, right opt.Option[T]) {
	if i > 0 {
		left = opt.Some(n.Branches.Get(i - 1).Sep)
	}

	if i < n.Branches.Len() {
		right = opt.Some(n.Branches.Get(i).Sep)
	}

	return left, right
}

// InsertBranchAt inserts a (separator, child) pair at branch index i,
// shifting later branches right. Used by the rebalancer when it already
// knows the destination index (cascading an overflow split into the parent,
// or donating during a rotation) rather than searching for it.
func (n *InternalNode[T, H]) InsertBranchAt(i int, sep T, child H) {
	n.Branches.Insert(i, Branch[T, H]{Sep: sep, Child: child})
}

// Split mirrors the leaf's Split: the right node inherits firstChild from
// the median branch's child.
func (n *InternalNode[T, H]) Split() (retained int, median T, right *InternalNode[T, H]) {
	debug.Assert(n.Balance() == Overflow, "Split called on a non-overflowing internal node")

	m := (n.Branches.Len() - 1) / 2
	drained := n.Branches.Drain(m, n.Branches.Len())

	right = NewInternalNode[T, H](n.parent, drained[0].Child)
	for _, b := range drained[1:] {
		right.Branches.Push(b)
	}

	return n.Branches.Len(), drained[0].Sep, right
}

// Append pushes separator with other's firstChild as its paired child, then
// moves every branch of other onto the back. other is left empty
// (Forgotten); reparenting the transferred children to the receiver is the
// caller's responsibility (it needs storage access).
func (n *InternalNode[T, H]) Append(separator T, other *InternalNode[T, H]) Offset {
	offset := n.Branches.Len()
	n.Branches.Push(Branch[T, H]{Sep: separator, Child: other.firstChild})

	for i := 0; i < other.Branches.Len(); i++ {
		n.Branches.Push(other.Branches.Get(i))
	}
	other.Branches.Forget()

	return Offset(offset)
}

// PushLeft inserts a new leftmost child, demoting the current firstChild
// into the first branch slot alongside sep.
func (n *InternalNode[T, H]) PushLeft(sep T, child H) {
	n.Branches.Insert(0, Branch[T, H]{Sep: sep, Child: n.firstChild})
	n.firstChild = child
}

// PushRight appends a new rightmost (separator, child) branch.
func (n *InternalNode[T, H]) PushRight(sep T, child H) {
	n.Branches.Push(Branch[T, H]{Sep: sep, Child: child})
}

// PopLeft removes the current firstChild, promoting the first branch's
// child to firstChild and returning the displaced (separator, child) pair.
// Refuses with ErrWouldUnderflow if that would leave fewer than U branches.
func (n *InternalNode[T, H]) PopLeft() res.Result[Branch[T, H]] {
	if n.Branches.Len() <= U {
		return res.Err[Branch[T, H]](ErrWouldUnderflow)
	}

	b := n.Branches.Remove(0)
	old := Branch[T, H]{Sep: b.Sep, Child: n.firstChild}
	n.firstChild = b.Child

	return res.Ok(old)
}

// PopRight removes and returns the rightmost (separator, child) branch.
// Refuses with ErrWouldUnderflow if that would leave fewer than U branches.
func (n *InternalNode[T, H]) PopRight() res.Result[Branch[T, H]] {
	if n.Branches.Len() <= U {
		return res.Err[Branch[T, H]](ErrWouldUnderflow)
	}

	return res.Ok(n.Branches.Pop())
}

func (n *InternalNode[T, H]) Remove(offset Offset) Branch[T, H] {
	return n.Branches.Remove(offset.Int())
}
func (n *InternalNode[T, H]) RemoveLast() Branch[T, H] { return n.Branches.Pop() }
func (n *InternalNode[T, H]) Item(offset Offset) T     { return n.Branches.Get(offset.Int()).Sep }
func (n *InternalNode[T, H]) ItemPtr(offset Offset) *T {
	return &n.Branches.GetPtr(offset.Int()).Sep
}

// Merge removes the branch at leftIndex, which pairs
// the separator between children leftIndex and leftIndex+1 with the
// leftIndex+1'th child (the "right sibling" of the child at leftIndex).
// Returns both child ids, the separator that sat between them, and this
// node's post-removal balance; the caller performs the actual content merge
// at the leaf (or internal) layer.
func (n *InternalNode[T, H]) Merge(leftIndex int) (offset Offset, leftID, rightID H, separator T, newBalance Balance) {
	leftID = n.ChildID(leftIndex)
	b := n.Branches.Remove(leftIndex)

	return Offset(leftIndex), leftID, b.Child, b.Sep, n.Balance()
}
