package driver

// outputBlock carries one worker batch's rendered output strings plus the
// bookkeeping the stats fold needs, keyed by the input-order block id the
// reorder buffer sorts on.
type outputBlock struct {
	blockID uint64

	normal                      string
	classified1, unclassified1 string
	classified2, unclassified2 string
	results                    []fragResult
}

type fragResult struct {
	classified bool
	called     TaxonId
	bases      uint64
}

// blockHeap is a min-heap of *outputBlock ordered by blockID, implementing
// container/heap.Interface.
type blockHeap []*outputBlock

func (h blockHeap) Len() int            { return len(h) }
func (h blockHeap) Less(i, j int) bool  { return h[i].blockID < h[j].blockID }
func (h blockHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *blockHeap) Push(x interface{}) { *h = append(*h, x.(*outputBlock)) }
func (h *blockHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
