// Command btreedemo is a small smoke driver over pkg/btree: it inserts,
// looks up, iterates, and removes a handful of integer keys, printing what
// it did. It exercises no I/O or persistence beyond stdout — the core
// library itself never touches a disk or a wire.
package main

import (
	"flag"
	"fmt"
	"math/rand"

	"github.com/flier/btreecore/pkg/btree"
	"github.com/flier/btreecore/pkg/order"
	"github.com/flier/btreecore/pkg/tuple"
)

func main() {
	n := flag.Int("n", 20, "number of random keys to insert")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	setDemo(*n, *seed)
	mapDemo(*n, *seed)
}

// setDemo builds a plain ordered set of ints, where the probe type equals
// the stored element type.
func setDemo(n int, seed int64) {
	cmp := order.Ordered[int]()
	t := btree.New[int, btree.HeapHandle[int]](btree.NewHeapStorage[int]())

	r := rand.New(rand.NewSource(seed))
	keys := r.Perm(n)

	for _, k := range keys {
		if old := t.Insert(cmp, k); old.IsSome() {
			fmt.Printf("insert %d: replaced %d\n", k, old.Unwrap())
		}
	}

	fmt.Printf("set: inserted %d keys, tree holds %d\n", len(keys), t.Len())

	btree.Validate[int, btree.HeapHandle[int]](t, cmp)
	fmt.Println("set: invariants hold")

	fmt.Print("set: ascending: ")
	for v := range t.Iter() {
		fmt.Printf("%d ", v)
	}
	fmt.Println()

	probe := keys[0]
	if got := t.Get(cmp, probe); got.IsSome() {
		fmt.Printf("set: get(%d) = %d\n", probe, got.Unwrap())
	}

	for i := 0; i < len(keys); i += 2 {
		t.Remove(cmp, keys[i])
	}

	btree.Validate[int, btree.HeapHandle[int]](t, cmp)
	fmt.Printf("set: removed every other key, %d remain, invariants hold\n", t.Len())
}

// mapDemo builds a key/value tree where the stored element is a
// tuple.Tuple2[int, string] and lookups probe by the bare int key (Q != T),
// exercising the free, Q-polymorphic Get/Remove functions in pkg/btree/ops.go.
func mapDemo(n int, seed int64) {
	type pair = tuple.Tuple2[int, string]

	byKey := func(elem pair, key int) order.Ordering { return order.Ordered[int]()(elem.V0, key) }
	elemCmp := func(a, b pair) order.Ordering { return byKey(a, b.V0) }

	t := btree.New[pair, btree.HeapHandle[pair]](btree.NewHeapStorage[pair]())

	r := rand.New(rand.NewSource(seed))
	keys := r.Perm(n)

	for _, k := range keys {
		t.Insert(elemCmp, tuple.New2(k, fmt.Sprintf("v%d", k)))
	}

	fmt.Printf("map: inserted %d pairs, tree holds %d\n", len(keys), t.Len())

	btree.Validate[pair, btree.HeapHandle[pair]](t, elemCmp)

	probe := keys[0]
	if got := btree.Get[pair, int, btree.HeapHandle[pair]](t, byKey, probe); got.IsSome() {
		fmt.Printf("map: get(%d) = %s\n", probe, got.Unwrap())
	}

	if removed := btree.Remove[pair, int, btree.HeapHandle[pair]](t, byKey, keys[0]); removed.IsSome() {
		fmt.Printf("map: removed %s\n", removed.Unwrap())
	}

	btree.Validate[pair, btree.HeapHandle[pair]](t, elemCmp)
	fmt.Printf("map: %d pairs remain, invariants hold\n", t.Len())
}
