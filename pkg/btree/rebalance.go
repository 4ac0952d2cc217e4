package btree

import "github.com/flier/btreecore/pkg/opt"

// Rebalance is the heart of the core. Starting at nodeID, it consults the
// node's balance and repairs it by splitting, rotating, or
// merging, walking back toward the root as a repair cascades upward. It
// returns the possibly-new root and the possibly-translated tracked
// address: every structural move either mechanically relocates tracked or
// leaves it untouched when unaffected.
func Rebalance[T any, H comparable](
	s Storage[T, H], root opt.Option[H], nodeID H, tracked opt.Option[Address[H]],
) (opt.Option[H], opt.Option[Address[H]]) {
	node := s.Get(nodeID)

	switch node.Balance() {
	case Balanced:
		return root, tracked
	case Overflow:
		return rebalanceOverflow[T, H](s, root, nodeID, tracked)
	default: // Underflow
		if node.Parent().IsNone() {
			return rebalanceRootUnderflow[T, H](s, root, nodeID, tracked)
		}

		return rebalanceUnderflow[T, H](s, root, nodeID, tracked)
	}
}

func rebalanceOverflow[T any, H comparable](
	s Storage[T, H], root opt.Option[H], nodeID H, tracked opt.Option[Address[H]],
) (opt.Option[H], opt.Option[Address[H]]) {
	node := s.Get(nodeID)

	var (
		medianOffset int
		median       T
		rightNode    Node[T, H]
	)

	switch n := node.(type) {
	case *LeafNode[T, H]:
		retained, m, right := n.Split()
		medianOffset, median, rightNode = retained, m, right
	case *InternalNode[T, H]:
		retained, m, right := n.Split()
		medianOffset, median, rightNode = retained, m, right
	default:
		panic("btreecore: unknown node variant")
	}

	rightID := s.InsertNode(rightNode)

	if parentOpt := node.Parent(); parentOpt.IsSome() {
		parentID := parentOpt.Unwrap()
		parent := s.Get(parentID).(*InternalNode[T, H])
		k := parent.ChildIndex(nodeID)

		parent.InsertBranchAt(k, median, rightID)
		s.Get(rightID).SetParent(opt.Some(parentID))

		tracked = translateOverflowHasParent(tracked, nodeID, rightID, parentID, medianOffset, k)

		return Rebalance(s, root, parentID, tracked)
	}

	newRootNode := NewBinaryRoot[T, H](nodeID, median, rightID)
	newRootID := s.InsertNode(newRootNode)

	tracked = translateOverflowNoParent(tracked, nodeID, rightID, newRootID, medianOffset)

	return opt.Some(newRootID), tracked
}

func translateOverflowHasParent[H comparable](
	tracked opt.Option[Address[H]], nodeID, rightID, parentID H, medianOffset, k int,
) opt.Option[Address[H]] {
	if tracked.IsNone() {
		return tracked
	}

	a := tracked.Unwrap()

	switch {
	case a.Node == nodeID && int(a.Offset) == medianOffset:
		return opt.Some(Address[H]{Node: parentID, Offset: Offset(k)})
	case a.Node == nodeID && !a.Offset.IsBefore() && int(a.Offset) > medianOffset:
		return opt.Some(Address[H]{Node: rightID, Offset: a.Offset - Offset(medianOffset) - 1})
	case a.Node == parentID && int(a.Offset) >= k:
		return opt.Some(Address[H]{Node: parentID, Offset: a.Offset + 1})
	default:
		return tracked
	}
}

func translateOverflowNoParent[H comparable](
	tracked opt.Option[Address[H]], nodeID, rightID, newRootID H, medianOffset int,
) opt.Option[Address[H]] {
	if tracked.IsNone() {
		return tracked
	}

	a := tracked.Unwrap()
	if a.Node != nodeID {
		return tracked
	}

	switch {
	case int(a.Offset) == medianOffset:
		return opt.Some(Address[H]{Node: newRootID, Offset: 0})
	case !a.Offset.IsBefore() && int(a.Offset) > medianOffset:
		return opt.Some(Address[H]{Node: rightID, Offset: a.Offset - Offset(medianOffset) - 1})
	default:
		return tracked
	}
}

func rebalanceRootUnderflow[T any, H comparable](
	s Storage[T, H], root opt.Option[H], nodeID H, tracked opt.Option[Address[H]],
) (opt.Option[H], opt.Option[Address[H]]) {
	node := s.Get(nodeID)
	if node.ItemCount() != 0 {
		return root, tracked // exempt from the lower bound
	}

	in, ok := node.(*InternalNode[T, H])
	if !ok {
		return root, tracked // empty leaf root: leave it, the tree is simply empty
	}

	child := in.FirstChild()
	s.Get(child).SetParent(opt.None[H]())
	s.ReleaseNode(nodeID)

	if tracked.IsSome() && tracked.Unwrap().Node == nodeID {
		tracked = opt.Some(Address[H]{Node: child, Offset: Offset(s.Get(child).ItemCount())})
	}

	return opt.Some(child), tracked
}

func rebalanceUnderflow[T any, H comparable](
	s Storage[T, H], root opt.Option[H], nodeID H, tracked opt.Option[Address[H]],
) (opt.Option[H], opt.Option[Address[H]]) {
	node := s.Get(nodeID)
	parentID := node.Parent().Unwrap()
	parent := s.Get(parentID).(*InternalNode[T, H])
	k := parent.ChildIndex(nodeID)

	if ok, t := tryRotateLeft[T, H](s, parentID, parent, k, tracked); ok {
		return root, t
	}

	if ok, t := tryRotateRight[T, H](s, parentID, parent, k, tracked); ok {
		return root, t
	}

	tracked = mergeAt[T, H](s, parentID, parent, k, tracked)

	return Rebalance(s, root, parentID, tracked)
}

// tryRotateLeft attempts to refill the deficient child at index k by
// donating the right sibling's leftmost item: if a right sibling exists and
// can give up its first item without underflowing, it swaps that item with
// the parent's separator, then pushes the displaced separator onto the
// right end of the deficient node.
func tryRotateLeft[T any, H comparable](
	s Storage[T, H], parentID H, parent *InternalNode[T, H], k int, tracked opt.Option[Address[H]],
) (bool, opt.Option[Address[H]]) {
	if k >= parent.Branches.Len() {
		return false, tracked
	}

	leftID := parent.ChildID(k)
	rightID := parent.ChildID(k + 1)
	oldSep := parent.Item(Offset(k))

	switch left := s.Get(leftID).(type) {
	case *LeafNode[T, H]:
		right := s.Get(rightID).(*LeafNode[T, H])

		popped := right.PopLeft()
		if popped.IsErr() {
			return false, tracked
		}

		*parent.ItemPtr(Offset(k)) = popped.Unwrap()
		left.PushRight(oldSep)
	case *InternalNode[T, H]:
		right := s.Get(rightID).(*InternalNode[T, H])

		popped := right.PopLeft()
		if popped.IsErr() {
			return false, tracked
		}

		br := popped.Unwrap()
		*parent.ItemPtr(Offset(k)) = br.Sep
		left.PushRight(oldSep, br.Child)
		s.Get(br.Child).SetParent(opt.Some(leftID))
	default:
		panic("btreecore: unknown node variant")
	}

	return true, translateRotateLeft(tracked, leftID, rightID, parentID, k, s.Get(leftID).ItemCount())
}

func translateRotateLeft[H comparable](
	tracked opt.Option[Address[H]], leftID, rightID, parentID H, k, newLeftLen int,
) opt.Option[Address[H]] {
	if tracked.IsNone() {
		return tracked
	}

	a := tracked.Unwrap()

	switch a.Node {
	case parentID:
		if int(a.Offset) == k {
			return opt.Some(Address[H]{Node: leftID, Offset: Offset(newLeftLen - 1)})
		}

		return tracked
	case rightID:
		switch {
		case a.Offset.IsBefore():
			return tracked
		case a.Offset == 0:
			return opt.Some(Address[H]{Node: parentID, Offset: Offset(k)})
		default:
			return opt.Some(Address[H]{Node: rightID, Offset: a.Offset - 1})
		}
	default:
		return tracked
	}
}

// tryRotateRight is the mirror of tryRotateLeft, donating from the left
// sibling at index k-1.
func tryRotateRight[T any, H comparable](
	s Storage[T, H], parentID H, parent *InternalNode[T, H], k int, tracked opt.Option[Address[H]],
) (bool, opt.Option[Address[H]]) {
	if k == 0 {
		return false, tracked
	}

	leftK := k - 1
	leftID := parent.ChildID(leftK)
	rightID := parent.ChildID(k)
	oldSep := parent.Item(Offset(leftK))

	switch right := s.Get(rightID).(type) {
	case *LeafNode[T, H]:
		left := s.Get(leftID).(*LeafNode[T, H])

		popped := left.PopRight()
		if popped.IsErr() {
			return false, tracked
		}

		oldLeftLen := left.Items.Len() + 1
		*parent.ItemPtr(Offset(leftK)) = popped.Unwrap()
		right.PushLeft(oldSep)

		return true, translateRotateRight(tracked, leftID, rightID, parentID, leftK, oldLeftLen)
	case *InternalNode[T, H]:
		left := s.Get(leftID).(*InternalNode[T, H])

		popped := left.PopRight()
		if popped.IsErr() {
			return false, tracked
		}

		oldLeftLen := left.Branches.Len() + 1
		br := popped.Unwrap()
		*parent.ItemPtr(Offset(leftK)) = br.Sep
		right.PushLeft(oldSep, br.Child)
		s.Get(br.Child).SetParent(opt.Some(rightID))

		return true, translateRotateRight(tracked, leftID, rightID, parentID, leftK, oldLeftLen)
	default:
		panic("btreecore: unknown node variant")
	}
}

func translateRotateRight[H comparable](
	tracked opt.Option[Address[H]], leftID, rightID, parentID H, leftK, oldLeftLen int,
) opt.Option[Address[H]] {
	if tracked.IsNone() {
		return tracked
	}

	a := tracked.Unwrap()

	switch a.Node {
	case parentID:
		if int(a.Offset) == leftK {
			return opt.Some(Address[H]{Node: rightID, Offset: 0})
		}

		return tracked
	case leftID:
		if int(a.Offset) == oldLeftLen-1 {
			return opt.Some(Address[H]{Node: parentID, Offset: Offset(leftK)})
		}

		return tracked
	case rightID:
		if a.Offset.IsBefore() {
			return tracked
		}

		return opt.Some(Address[H]{Node: rightID, Offset: a.Offset.Incr()})
	default:
		return tracked
	}
}

// mergeAt folds the deficient child at index k together with an adjacent
// sibling into one surviving node, removing the separator between them from
// parent.
func mergeAt[T any, H comparable](
	s Storage[T, H], parentID H, parent *InternalNode[T, H], k int, tracked opt.Option[Address[H]],
) opt.Option[Address[H]] {
	leftIndex := k
	if k >= parent.Branches.Len() {
		leftIndex = k - 1
	}

	offset, leftID, rightID, separator, _ := parent.Merge(leftIndex)

	leftNode := s.Get(leftID)
	rightNode := s.ReleaseNode(rightID)
	leftOldLen := leftNode.ItemCount()

	switch ln := leftNode.(type) {
	case *LeafNode[T, H]:
		ln.Append(separator, rightNode.(*LeafNode[T, H]))
	case *InternalNode[T, H]:
		rn := rightNode.(*InternalNode[T, H])

		s.Get(rn.FirstChild()).SetParent(opt.Some(leftID))
		for i := 0; i < rn.Branches.Len(); i++ {
			s.Get(rn.Branches.Get(i).Child).SetParent(opt.Some(leftID))
		}

		ln.Append(separator, rn)
	default:
		panic("btreecore: unknown node variant")
	}

	return translateMerge(tracked, leftID, rightID, parentID, int(offset), leftOldLen)
}

func translateMerge[H comparable](
	tracked opt.Option[Address[H]], leftID, rightID, parentID H, k, leftOldLen int,
) opt.Option[Address[H]] {
	if tracked.IsNone() {
		return tracked
	}

	a := tracked.Unwrap()

	switch a.Node {
	case rightID:
		if a.Offset.IsBefore() {
			return opt.Some(Address[H]{Node: leftID, Offset: Offset(leftOldLen)})
		}

		return opt.Some(Address[H]{Node: leftID, Offset: Offset(leftOldLen + 1 + int(a.Offset))})
	case parentID:
		switch {
		case int(a.Offset) == k:
			return opt.Some(Address[H]{Node: leftID, Offset: Offset(leftOldLen)})
		case int(a.Offset) > k:
			return opt.Some(Address[H]{Node: parentID, Offset: a.Offset - 1})
		default:
			return tracked
		}
	default:
		return tracked
	}
}
