// Package btree is the core of a generic, in-memory B-tree: the node
// storage and tree maintenance engine that higher-level ordered containers
// (maps, sets, multi-maps) would be built on top of.
//
// It stores fully-ordered elements of a caller-supplied type T, keyed by an
// externally supplied comparator (see [github.com/flier/btreecore/pkg/order]).
// The comparator is not baked into T, which is what lets the same storage
// machinery serve both key-indexed maps (where the probe type differs from
// the stored element) and plain sorted sets.
//
// The package is deliberately narrow. It does not expose an ordered-map or
// ordered-set facade, higher-order iteration helpers, serialization,
// graph-visualization output, bulk-construction convenience, or
// dynamic-typing adaptors — those are external collaborators. It performs
// no I/O, has no persistence, and has no concurrency: every [Tree] is
// single-threaded and exclusively owned by its caller.
//
// # Order
//
// The branching factor is the package constant [Order], fixed at compile
// time (this package does not support per-tree configurable order).
//
// # Storage
//
// [Tree] is generic over both the stored element type T and a node-handle
// type H, via the [Storage] interface. The default backend, obtained with
// [NewHeapStorage], allocates one Go heap value per node and uses its
// pointer as the handle. An alternative arena-backed backend lives in
// [github.com/flier/btreecore/pkg/btree/slotarena], where handles are
// indices into a growable, free-list-recycled slice.
package btree

// Order is the maximum number of children an internal node may hold, and
// equivalently one more than the maximum number of separator items it may
// hold. It must be at least 4; this package fixes it at compile time rather
// than making it configurable per tree.
const Order = 16

// U is the underflow threshold: the minimum number of items a non-root node
// must hold once balanced.
const U = Order/2 - 1
