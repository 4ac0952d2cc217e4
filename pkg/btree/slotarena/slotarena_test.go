package slotarena_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flier/btreecore/pkg/btree"
	"github.com/flier/btreecore/pkg/btree/slotarena"
	"github.com/flier/btreecore/pkg/opt"
	"github.com/flier/btreecore/pkg/order"
)

func TestArenaBacksTree(t *testing.T) {
	cmp := order.Ordered[int]()
	arena := slotarena.New[int]()
	tr := btree.New[int, slotarena.Handle](arena)

	const n = 500
	for i := 0; i < n; i++ {
		tr.Insert(cmp, i)
	}

	require.Equal(t, n, tr.Len())
	btree.Validate[int, slotarena.Handle](tr, cmp)

	for i := 0; i < n; i += 3 {
		removed := tr.Remove(cmp, i)
		require.True(t, removed.IsSome())
	}

	btree.Validate[int, slotarena.Handle](tr, cmp)
}

func TestArenaRecyclesReleasedSlots(t *testing.T) {
	arena := slotarena.New[int]()

	h1 := arena.AllocateNode(btree.NewLeafNode[int, slotarena.Handle](opt.None[slotarena.Handle]()))
	arena.ReleaseNode(h1)

	h2 := arena.AllocateNode(btree.NewLeafNode[int, slotarena.Handle](opt.None[slotarena.Handle]()))

	require.Equal(t, 1, arena.Len())
	require.NotEqual(t, h1, h2, "a released slot must come back with a bumped generation")

	require.Panics(t, func() { arena.Get(h1) }, "a stale handle must not resolve to the recycled slot's new occupant")
}

func TestArenaForgetUsesDropper(t *testing.T) {
	cmp := order.Ordered[int]()
	arena := slotarena.New[int]()
	tr := btree.New[int, slotarena.Handle](arena)

	for i := 0; i < 50; i++ {
		tr.Insert(cmp, i)
	}

	tr.Forget()

	require.True(t, tr.IsEmpty())
	require.Equal(t, 0, arena.Len())
}
