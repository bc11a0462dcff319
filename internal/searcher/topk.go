package searcher

import (
	"container/heap"

	"github.com/kettleby/autoctx/pkg/types"
)

// topK keeps the best k results seen so far in a min-heap keyed by the
// final result ordering. Offering n results costs O(n log k) instead of
// sorting all n, and drain returns exactly the prefix a full sort would.
type topK struct {
	k     int
	items resultHeap
}

func newTopK(k int) *topK {
	return &topK{k: k}
}

// offer considers one result. It is kept only if fewer than k results
// are held or it orders before the current worst.
func (t *topK) offer(r types.SearchResult) {
	if t.k <= 0 {
		return
	}
	if t.items.Len() < t.k {
		heap.Push(&t.items, r)
		return
	}
	if resultLess(r, t.items[0]) {
		t.items[0] = r
		heap.Fix(&t.items, 0)
	}
}

// drain returns the held results best first and empties the heap.
func (t *topK) drain() []types.SearchResult {
	out := make([]types.SearchResult, t.items.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&t.items).(types.SearchResult)
	}
	return out
}

// resultHeap is a min-heap: the root is the worst held result, the first
// candidate for eviction.
type resultHeap []types.SearchResult

func (h resultHeap) Len() int { return len(h) }

func (h resultHeap) Less(i, j int) bool {
	// Inverted: the heap root must be the result that orders last.
	return resultLess(h[j], h[i])
}

func (h resultHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x any) {
	*h = append(*h, x.(types.SearchResult))
}

func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
