package btree_test

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flier/btreecore/pkg/btree"
	"github.com/flier/btreecore/pkg/order"
)

// TestCascadeSplitGrowsRootHeight is the fixed-Order counterpart of the
// cascade-split scenario: enough ascending inserts to force the root to
// split at least once, after which the root must be an internal node, every
// non-root node balanced, and the in-order walk still 1..=n.
func TestCascadeSplitGrowsRootHeight(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	const n = 5 * (btree.Order + 1)

	for i := 1; i <= n; i++ {
		tr.Insert(cmp, i)
	}

	btree.Validate[int, btree.HeapHandle[int]](tr, cmp)

	var got []int
	for v := range tr.Iter() {
		got = append(got, v)
	}

	require.Len(t, got, n)
	for i, v := range got {
		require.Equal(t, i+1, v)
	}
}

// TestFixedFixtureInsertRemove is S1: insert a fixed sequence of pairs,
// assert the length, shuffle-remove them with a deterministic order,
// validating the whole invariant battery after every removal, finally
// empty.
func TestFixedFixtureInsertRemove(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	const n = 100

	for i := 0; i < n; i++ {
		old := tr.Insert(cmp, i)
		require.True(t, old.IsNone())
	}

	require.Equal(t, n, tr.Len())

	removalOrder := []int{
		37, 2, 91, 14, 68, 5, 73, 22, 0, 99, 50, 33, 81, 17, 44,
	}
	seen := map[int]bool{}
	for _, k := range removalOrder {
		seen[k] = true
	}
	for i := 0; i < n; i++ {
		if !seen[i] {
			removalOrder = append(removalOrder, i)
		}
	}

	for i, k := range removalOrder {
		removed := tr.Remove(cmp, k)
		require.True(t, removed.IsSome())
		require.Equal(t, k, removed.Unwrap())
		require.Equal(t, n-i-1, tr.Len())

		btree.Validate[int, btree.HeapHandle[int]](tr, cmp)
	}

	require.True(t, tr.IsEmpty())
}

// TestReplacementSemantics is S5: inserting an equal key twice replaces in
// place, the displaced value comes back from the second insert, and length
// does not grow.
func TestReplacementSemantics(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	tr.Insert(cmp, 7)
	old := tr.Insert(cmp, 7)

	require.True(t, old.IsSome())
	require.Equal(t, 7, old.Unwrap())
	require.Equal(t, 1, tr.Len())
	require.Equal(t, 7, tr.Get(cmp, 7).Unwrap())
}

// TestDoubleEndedConsumption is S3's iteration shape: alternating between a
// front iterator and a back iterator until every element has been seen
// covers all n elements.
func TestDoubleEndedConsumption(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	const n = 100
	for i := 0; i < n; i++ {
		tr.Insert(cmp, i)
	}

	nextFront, stopFront := iter.Pull(tr.Iter())
	defer stopFront()
	nextBack, stopBack := iter.Pull(tr.Rev())
	defer stopBack()

	seen := map[int]bool{}
	fromFront := true
	for len(seen) < n {
		if fromFront {
			v, ok := nextFront()
			if !ok {
				fromFront = false
				continue
			}
			seen[v] = true
		} else {
			v, ok := nextBack()
			if !ok {
				break
			}
			seen[v] = true
		}
		fromFront = !fromFront
	}

	require.Len(t, seen, n)
}

// TestUnderflowTriggersRotateOrMerge drives enough removals from a tree
// sized to guarantee at least one underflow, and relies on Validate to
// confirm every resulting node still satisfies the order bounds (whether
// the rebalancer chose a rotation or a merge).
func TestUnderflowTriggersRotateOrMerge(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	const n = 3 * (btree.Order + 1)
	for i := 0; i < n; i++ {
		tr.Insert(cmp, i)
	}

	for i := 0; i < n-2; i++ {
		removed := tr.Remove(cmp, i)
		require.True(t, removed.IsSome())

		btree.Validate[int, btree.HeapHandle[int]](tr, cmp)
	}

	require.Equal(t, 2, tr.Len())
}
