package btree

import (
	"fmt"

	"github.com/flier/btreecore/pkg/opt"
	"github.com/flier/btreecore/pkg/order"
)

// Validate walks the tree and checks every structural invariant: ordering,
// per-node balance, parent correctness, uniform leaf depth, and that the
// reported length matches what a full in-order walk actually finds. It
// panics with a descriptive message on the first violation found. This is a
// debug-only validation, not a caller-facing error path.
func Validate[T any, H comparable](t *Tree[T, H], cmp order.Func[T, T]) {
	if t.root.IsNone() {
		if t.length != 0 {
			panic(fmt.Sprintf("btreecore: empty root but length %d", t.length))
		}

		return
	}

	var prev opt.Option[T]

	count, depth := validateSubtree[T, H](t.storage, t.root.Unwrap(), cmp, &prev, true, -1, 0)

	if count != t.length {
		panic(fmt.Sprintf("btreecore: length %d does not match traversal count %d", t.length, count))
	}

	_ = depth
}

// validateSubtree returns the number of elements in the subtree and the
// depth of the leaves it found, recursively checking balance, ordering and
// parent-correctness as it goes. expectDepth is -1 until the first leaf
// fixes it, after which every subsequent leaf must match.
func validateSubtree[T any, H comparable](
	s Storage[T, H], h H, cmp order.Func[T, T], prev *opt.Option[T], isRoot bool, expectDepth, depth int,
) (count, leafDepth int) {
	n := s.Get(h)

	if !isRoot {
		switch n.Balance() {
		case Overflow:
			panic(fmt.Sprintf("btreecore: node %v is overflowing", h))
		case Underflow:
			panic(fmt.Sprintf("btreecore: node %v is underflowing", h))
		}
	}

	switch node := n.(type) {
	case *LeafNode[T, H]:
		for i := 0; i < node.Items.Len(); i++ {
			v := node.Items.Get(i)

			if prev.IsSome() && !cmp(prev.Unwrap(), v).IsLess() {
				panic(fmt.Sprintf("btreecore: ordering violated at %v[%d]", h, i))
			}

			*prev = opt.Some(v)
		}

		if expectDepth >= 0 && depth != expectDepth {
			panic(fmt.Sprintf("btreecore: leaf %v at depth %d, expected %d", h, depth, expectDepth))
		}

		return node.Items.Len(), depth
	case *InternalNode[T, H]:
		checkParent := func(child H) {
			p := s.Get(child).Parent()
			if p.IsNone() || p.Unwrap() != h {
				panic(fmt.Sprintf("btreecore: node %v's parent does not list it as a child", child))
			}
		}

		checkParent(node.FirstChild())

		total := 0
		leafDepth = expectDepth

		c, d := validateSubtree[T, H](s, node.FirstChild(), cmp, prev, false, leafDepth, depth+1)
		total += c
		leafDepth = d

		for i := 0; i < node.Branches.Len(); i++ {
			b := node.Branches.Get(i)

			if prev.IsSome() && !cmp(prev.Unwrap(), b.Sep).IsLess() {
				panic(fmt.Sprintf("btreecore: ordering violated at separator %v[%d]", h, i))
			}
			*prev = opt.Some(b.Sep)
			total++

			checkParent(b.Child)

			c, d := validateSubtree[T, H](s, b.Child, cmp, prev, false, leafDepth, depth+1)
			total += c
			leafDepth = d
		}

		return total, leafDepth
	default:
		panic("btreecore: unknown node variant")
	}
}
