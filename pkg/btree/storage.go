package btree

import "github.com/flier/btreecore/pkg/opt"

// Storage is an abstraction over node allocation and dereferencing.
// A Tree never allocates or releases nodes directly; every mutation goes
// through its Storage, which is what lets the same tree machinery run over
// a default per-node heap allocation or an arena of recycled slots (see
// github.com/flier/btreecore/pkg/btree/slotarena) without the tree knowing
// the difference.
//
// Two distinct handles must never alias the same node; Storage
// implementations are responsible for that guarantee.
type Storage[T any, H comparable] interface {
	// AllocateNode takes ownership of n and returns a fresh handle for it.
	AllocateNode(n Node[T, H]) H
	// InsertNode allocates n and additionally sets every child's parent
	// pointer to the new handle. Used when reparenting during reshape (a
	// freshly split or merged node taking over children that used to point
	// elsewhere).
	InsertNode(n Node[T, H]) H
	// ReleaseNode deallocates handle h, returning the node value it named.
	ReleaseNode(h H) Node[T, H]
	// Get dereferences h.
	Get(h H) Node[T, H]
	// GetMut dereferences h for mutation. In Go this is identical to Get,
	// since Node is always handed back through a pointer-shaped interface
	// value and mutation happens through its methods; GetMut exists to keep
	// the shared/exclusive distinction visible at call sites.
	GetMut(h H) Node[T, H]
	// StartDropping begins a bulk teardown. It returns either None, in
	// which case Tree.Forget hands each node to ReleaseNode (this package's
	// heap backend does this, relying on the garbage collector), or a
	// Dropper whose DropNode deallocates one node without constructing a
	// Node value (the slotarena backend returns itself, recycling each slot
	// through its free list).
	StartDropping() opt.Option[Dropper[H]]
}

// Dropper deallocates nodes during bulk teardown after a Forget pass, where
// there is no Node value left worth reconstructing.
type Dropper[H comparable] interface {
	DropNode(h H)
}

// ReparentChildren sets every child of n (if n is an internal node) to have
// parent h. Storage.InsertNode implementations call this after allocating;
// it is exported so that alternative Storage backends (e.g. slotarena) can
// reuse it instead of re-deriving the type switch.
func ReparentChildren[T any, H comparable](s Storage[T, H], h H, n Node[T, H]) {
	in, ok := n.(*InternalNode[T, H])
	if !ok {
		return
	}

	s.Get(in.FirstChild()).SetParent(opt.Some(h))

	for i := 0; i < in.Branches.Len(); i++ {
		s.Get(in.Branches.Get(i).Child).SetParent(opt.Some(h))
	}
}

// heapNode is the per-node heap allocation backing HeapHandle: a Go pointer
// to a boxed Node value, which doubles as the node's comparable handle.
type heapNode[T any] struct {
	n Node[T, *heapNode[T]]
}

// HeapHandle is the handle type of the default Storage backend: a raw Go
// pointer to the boxed node.
type HeapHandle[T any] = *heapNode[T]

// heapStorage is the reference Storage implementation: one heap allocation
// per node. Go's garbage collector reclaims released nodes, so ReleaseNode
// need not free anything explicitly and StartDropping has nothing to hand
// back.
type heapStorage[T any] struct{}

// NewHeapStorage returns the default pointer-handle Storage backend.
func NewHeapStorage[T any]() Storage[T, HeapHandle[T]] {
	return heapStorage[T]{}
}

func (heapStorage[T]) AllocateNode(n Node[T, HeapHandle[T]]) HeapHandle[T] {
	return &heapNode[T]{n: n}
}

func (s heapStorage[T]) InsertNode(n Node[T, HeapHandle[T]]) HeapHandle[T] {
	h := s.AllocateNode(n)
	ReparentChildren[T, HeapHandle[T]](s, h, n)

	return h
}

func (heapStorage[T]) ReleaseNode(h HeapHandle[T]) Node[T, HeapHandle[T]] {
	n := h.n
	h.n = nil

	return n
}

func (heapStorage[T]) Get(h HeapHandle[T]) Node[T, HeapHandle[T]]    { return h.n }
func (s heapStorage[T]) GetMut(h HeapHandle[T]) Node[T, HeapHandle[T]] { return s.Get(h) }

func (heapStorage[T]) StartDropping() opt.Option[Dropper[HeapHandle[T]]] {
	return opt.None[Dropper[HeapHandle[T]]]()
}
