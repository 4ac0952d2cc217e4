package btree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flier/btreecore/pkg/btree"
	"github.com/flier/btreecore/pkg/opt"
	"github.com/flier/btreecore/pkg/order"
)

func TestLeafNodeInsertByKeyReplaces(t *testing.T) {
	cmp := order.Ordered[int]()
	leaf := btree.NewLeafNode[int, int](opt.None[int]())

	_, old := leaf.InsertByKey(cmp, 5)
	require.True(t, old.IsNone())

	_, old = leaf.InsertByKey(cmp, 3)
	require.True(t, old.IsNone())

	offset, old := leaf.InsertByKey(cmp, 5)
	require.True(t, old.IsSome())
	require.Equal(t, 5, old.Unwrap())
	require.Equal(t, 1, offset.Int())

	require.Equal(t, 2, leaf.ItemCount())
}

func TestLeafNodeSplitIsBalanced(t *testing.T) {
	leaf := btree.NewLeafNode[int, int](opt.None[int]())

	for i := 0; i < btree.Order+1; i++ {
		leaf.PushRight(i)
	}

	require.Equal(t, btree.Overflow, leaf.Balance())

	retained, median, right := leaf.Split()

	require.Equal(t, retained, leaf.ItemCount())
	require.Equal(t, btree.Order+1, leaf.ItemCount()+right.ItemCount()+1)
	require.True(t, leaf.Item(btree.Offset(leaf.ItemCount()-1)) < median)
	require.True(t, median < right.Item(0))
}

func TestLeafNodePopRefusesBelowUnderflow(t *testing.T) {
	leaf := btree.NewLeafNode[int, int](opt.None[int]())

	for i := 0; i < btree.U; i++ {
		leaf.PushRight(i)
	}

	require.True(t, leaf.PopLeft().IsErr())
	require.True(t, leaf.PopRight().IsErr())

	leaf.PushRight(999)
	require.True(t, leaf.PopRight().IsOk())
}

func TestLeafNodeAppendMovesItems(t *testing.T) {
	left := btree.NewLeafNode[int, int](opt.None[int]())
	right := btree.NewLeafNode[int, int](opt.None[int]())

	left.PushRight(1)
	right.PushRight(3)
	right.PushRight(4)

	left.Append(2, right)

	require.Equal(t, 4, left.ItemCount())
	require.Equal(t, 1, left.Item(0))
	require.Equal(t, 2, left.Item(1))
	require.Equal(t, 3, left.Item(2))
	require.Equal(t, 0, right.ItemCount())
}

func TestInternalNodeChildIndexRoundTrips(t *testing.T) {
	n := btree.NewInternalNode[int, int](opt.None[int](), 100)
	n.PushRight(5, 200)
	n.PushRight(10, 300)

	require.Equal(t, 0, n.ChildIndex(100))
	require.Equal(t, 1, n.ChildIndex(200))
	require.Equal(t, 2, n.ChildIndex(300))
	require.Equal(t, -1, n.ChildIndex(999))

	require.Equal(t, 100, n.ChildID(0))
	require.Equal(t, 200, n.ChildID(1))
	require.Equal(t, 300, n.ChildID(2))
}

func TestInternalNodeSeparators(t *testing.T) {
	n := btree.NewInternalNode[int, int](opt.None[int](), 100)
	n.PushRight(5, 200)
	n.PushRight(10, 300)

	left, right := n.Separators(0)
	require.True(t, left.IsNone())
	require.Equal(t, 5, right.Unwrap())

	left, right = n.Separators(1)
	require.Equal(t, 5, left.Unwrap())
	require.Equal(t, 10, right.Unwrap())

	left, right = n.Separators(2)
	require.Equal(t, 10, left.Unwrap())
	require.True(t, right.IsNone())
}

func TestInternalNodeMergeRemovesBranch(t *testing.T) {
	n := btree.NewInternalNode[int, int](opt.None[int](), 100)
	n.PushRight(5, 200)
	n.PushRight(10, 300)

	_, leftID, rightID, sep, _ := n.Merge(0)

	require.Equal(t, 100, leftID)
	require.Equal(t, 200, rightID)
	require.Equal(t, 5, sep)
	require.Equal(t, 1, n.ItemCount())
	require.Equal(t, 100, n.ChildID(0))
	require.Equal(t, 300, n.ChildID(1))
}

func TestNewBinaryRoot(t *testing.T) {
	root := btree.NewBinaryRoot[int, int](1, 50, 2)

	require.True(t, root.Parent().IsNone())
	require.Equal(t, 1, root.ChildID(0))
	require.Equal(t, 2, root.ChildID(1))
	require.Equal(t, 1, root.ItemCount())
	require.Equal(t, 50, root.Item(0))
}
