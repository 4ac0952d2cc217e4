package btree_test

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/require"

	"github.com/flier/btreecore/pkg/btree"
	"github.com/flier/btreecore/pkg/order"
)

func newIntTree() *btree.Tree[int, btree.HeapHandle[int]] {
	return btree.New[int, btree.HeapHandle[int]](btree.NewHeapStorage[int]())
}

func TestTreeBasics(t *testing.T) {
	cmp := order.Ordered[int]()

	Convey("Given an empty tree", t, func() {
		tr := newIntTree()

		Convey("it starts empty", func() {
			So(tr.IsEmpty(), ShouldBeTrue)
			So(tr.Len(), ShouldEqual, 0)
			So(tr.Get(cmp, 1).IsNone(), ShouldBeTrue)
			So(tr.First().IsNone(), ShouldBeTrue)
			So(tr.Last().IsNone(), ShouldBeTrue)
		})

		Convey("inserting grows it and is retrievable", func() {
			old := tr.Insert(cmp, 5)
			So(old.IsNone(), ShouldBeTrue)
			So(tr.Len(), ShouldEqual, 1)

			got := tr.Get(cmp, 5)
			So(got.IsSome(), ShouldBeTrue)
			So(got.Unwrap(), ShouldEqual, 5)

			btree.Validate[int, btree.HeapHandle[int]](tr, cmp)
		})

		Convey("re-inserting an equal key replaces and returns the old value", func() {
			tr.Insert(cmp, 5)
			old := tr.Insert(cmp, 5)

			So(old.IsSome(), ShouldBeTrue)
			So(old.Unwrap(), ShouldEqual, 5)
			So(tr.Len(), ShouldEqual, 1)
		})

		Convey("removing an absent key returns None and does not change length", func() {
			tr.Insert(cmp, 1)
			removed := tr.Remove(cmp, 99)

			So(removed.IsNone(), ShouldBeTrue)
			So(tr.Len(), ShouldEqual, 1)
		})

		Convey("removing a present key shrinks the tree and returns it", func() {
			tr.Insert(cmp, 1)
			tr.Insert(cmp, 2)

			removed := tr.Remove(cmp, 1)

			So(removed.IsSome(), ShouldBeTrue)
			So(removed.Unwrap(), ShouldEqual, 1)
			So(tr.Len(), ShouldEqual, 1)
			So(tr.Get(cmp, 1).IsNone(), ShouldBeTrue)

			btree.Validate[int, btree.HeapHandle[int]](tr, cmp)
		})
	})
}

// TestTreeManyInsertsStayBalanced drives enough inserts to force splits
// through multiple levels, and re-validates every invariant after each one:
// every mutation must leave the tree in a structurally valid state.
func TestTreeManyInsertsStayBalanced(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	const n = 2000

	r := rand.New(rand.NewSource(42))
	keys := r.Perm(n)

	for _, k := range keys {
		tr.Insert(cmp, k)

		btree.Validate[int, btree.HeapHandle[int]](tr, cmp)
	}

	require.Equal(t, n, tr.Len())

	for _, k := range keys {
		got := tr.Get(cmp, k)
		require.True(t, got.IsSome())
		require.Equal(t, k, got.Unwrap())
	}
}

// TestTreeManyRemovesStayBalanced inserts n keys then removes them in a
// different random order, validating after every removal.
func TestTreeManyRemovesStayBalanced(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	const n = 500

	r := rand.New(rand.NewSource(7))
	keys := r.Perm(n)

	for _, k := range keys {
		tr.Insert(cmp, k)
	}

	removalOrder := r.Perm(n)
	for i, k := range removalOrder {
		removed := tr.Remove(cmp, k)
		require.True(t, removed.IsSome())
		require.Equal(t, k, removed.Unwrap())
		require.Equal(t, n-i-1, tr.Len())

		btree.Validate[int, btree.HeapHandle[int]](tr, cmp)
	}

	require.True(t, tr.IsEmpty())
}

// TestTreeIterOrdering is law 8: Iter yields every element exactly once in
// non-decreasing comparator order, and Rev is its mirror.
func TestTreeIterOrdering(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	r := rand.New(rand.NewSource(3))
	keys := r.Perm(300)

	for _, k := range keys {
		tr.Insert(cmp, k)
	}

	var forward []int
	for v := range tr.Iter() {
		forward = append(forward, v)
	}

	require.Len(t, forward, len(keys))
	for i := 1; i < len(forward); i++ {
		require.Less(t, forward[i-1], forward[i])
	}

	var backward []int
	for v := range tr.Rev() {
		backward = append(backward, v)
	}

	require.Len(t, backward, len(forward))
	for i, v := range backward {
		require.Equal(t, forward[len(forward)-1-i], v)
	}
}

// TestTreeIterMutInPlace exercises IterMut: pointers obtained from it must
// observe mutations made through them without breaking ordering when the
// mutation itself preserves it.
func TestTreeIterMutInPlace(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	for i := 0; i < 10; i++ {
		tr.Insert(cmp, i*2)
	}

	for p := range tr.IterMut() {
		*p = *p + 1
	}

	var got []int
	for v := range tr.Iter() {
		got = append(got, v)
	}

	require.Equal(t, []int{1, 3, 5, 7, 9, 11, 13, 15, 17, 19}, got)
}

// TestTreeAddressOfRoundTrip is law 9: address_of on a present key returns
// Ok, and the address it returns resolves back to that same key.
func TestTreeAddressOfRoundTrip(t *testing.T) {
	cmp := order.Ordered[int]()
	storage := btree.NewHeapStorage[int]()
	tr := btree.New[int, intHandle](storage)

	for i := 0; i < 50; i++ {
		tr.Insert(cmp, i)
	}

	result := tr.AddressOf(cmp, 17)
	require.True(t, result.IsOk())
	require.Equal(t, 17, itemValueAt(storage, result.Unwrap()))

	result2 := tr.AddressOf(cmp, 1000)
	require.True(t, result2.IsErr())
}

// TestTreeCloneIsIndependent is law 10: Clone produces a structurally equal
// but independently mutable tree.
func TestTreeCloneIsIndependent(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	for i := 0; i < 100; i++ {
		tr.Insert(cmp, i)
	}

	clone := tr.Clone(btree.NewHeapStorage[int]())
	require.Equal(t, tr.Len(), clone.Len())

	clone.Remove(cmp, 50)
	require.NotEqual(t, tr.Len(), clone.Len())
	require.True(t, tr.Get(cmp, 50).IsSome())
	require.True(t, clone.Get(cmp, 50).IsNone())

	btree.Validate[int, btree.HeapHandle[int]](tr, cmp)
	btree.Validate[int, btree.HeapHandle[int]](clone, cmp)
}

// TestTreeClearEmpties is scenario S-style: Clear releases every node and
// resets the tree to empty.
func TestTreeClearEmpties(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	for i := 0; i < 30; i++ {
		tr.Insert(cmp, i)
	}

	tr.Clear()

	require.True(t, tr.IsEmpty())
	require.Equal(t, 0, tr.Len())
	require.True(t, tr.First().IsNone())
}

// TestTreeIntoIterEmptiesOnEarlyBreak consumes the tree via the by-value
// iterator, breaking out after the element 5, and checks that the elements
// up to the break were yielded and that the tree ends up empty anyway.
func TestTreeIntoIterEmptiesOnEarlyBreak(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	for i := 0; i < 20; i++ {
		tr.Insert(cmp, i)
	}

	seen := map[int]bool{}
	for v := range tr.IntoIter() {
		seen[v] = true
		if v == 5 {
			break
		}
	}

	require.True(t, tr.IsEmpty())
	require.True(t, seen[0])
	require.True(t, seen[5])
}

// TestTreeGetPtrMutatesInPlace exercises GetPtr via the free-function form:
// it returns Some for a present key, and writing through the pointer (here
// an identity overwrite, since changing an int element changes its order)
// leaves the element retrievable.
func TestTreeGetPtrMutatesInPlace(t *testing.T) {
	cmp := order.Ordered[int]()
	tr := newIntTree()

	tr.Insert(cmp, 10)

	p := btree.GetPtr[int, int, btree.HeapHandle[int]](tr, cmp, 10)
	require.True(t, p.IsSome())

	*p.Unwrap() = 10 // identity overwrite; changing the key's order would violate invariants

	require.Equal(t, 10, tr.Get(cmp, 10).Unwrap())
}
