package shortest

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/network"
)

// Compute builds the shortest-path tree rooted at origin under the given
// per-link cost vector.
//
// Preconditions and validation (in order):
//  1. nw must be non-nil (ErrNilNetwork).
//  2. len(costs) must equal nw.NumLinks() (ErrCostDimension).
//  3. Every cost must be non-negative (ErrNegativeCost, fail fast).
//  4. origin must exist in nw (ErrNodeNotFound).
//
// Tie-breaking is deterministic: equal distances are ordered by node
// identifier in the heap, and among equal-cost predecessors the one with the
// lowest tail identifier wins.
func Compute(nw *network.Network, costs []float64, origin int) (*Tree, error) {
	if nw == nil {
		return nil, ErrNilNetwork
	}
	if len(costs) != nw.NumLinks() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCostDimension, len(costs), nw.NumLinks())
	}
	for i, c := range costs {
		if c < 0 {
			l := nw.Link(i)

			return nil, fmt.Errorf("%w: %g on link %d→%d", ErrNegativeCost, c, l.From, l.To)
		}
	}
	src, ok := nw.NodeIndex(origin)
	if !ok {
		return nil, fmt.Errorf("%w: origin %d", ErrNodeNotFound, origin)
	}

	r := &runner{
		net:     nw,
		costs:   costs,
		dist:    make([]float64, nw.NumNodes()),
		pred:    make([]int, nw.NumNodes()),
		visited: make([]bool, nw.NumNodes()),
		pq:      make(nodePQ, 0, nw.NumNodes()),
	}
	r.run(src)

	return &Tree{net: nw, origin: origin, dist: r.dist, pred: r.pred}, nil
}

// runner holds the mutable state of a single Dijkstra execution.
type runner struct {
	net     *network.Network
	costs   []float64
	dist    []float64
	pred    []int
	visited []bool
	pq      nodePQ
}

// run executes the main loop: pop the closest unfinalized node, relax its
// outgoing links, repeat until the heap drains.
func (r *runner) run(src int) {
	for i := range r.dist {
		r.dist[i] = math.Inf(1)
		r.pred[i] = -1
	}
	r.dist[src] = 0

	heap.Init(&r.pq)
	heap.Push(&r.pq, nodeItem{idx: src, id: r.net.NodeID(src), dist: 0})

	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(nodeItem)
		u := item.idx
		if r.visited[u] {
			// Stale lazy-decrease-key entry.
			continue
		}
		r.visited[u] = true
		r.relax(u)
	}
}

// relax attempts to improve the distance of every head reachable from u.
// On an exact distance tie the predecessor with the lowest tail identifier
// is kept, so tree shape does not depend on heap pop order.
func (r *runner) relax(u int) {
	uID := r.net.NodeID(u)
	for _, li := range r.net.OutLinks(u) {
		l := r.net.Link(li)
		v, _ := r.net.NodeIndex(l.To)
		if r.visited[v] {
			continue
		}
		nd := r.dist[u] + r.costs[li]
		switch {
		case nd < r.dist[v]:
			r.dist[v] = nd
			r.pred[v] = li
			heap.Push(&r.pq, nodeItem{idx: v, id: l.To, dist: nd})
		case nd == r.dist[v] && r.pred[v] >= 0 && uID < r.net.Link(r.pred[v]).From:
			r.pred[v] = li
		}
	}
}

// nodeItem is one (node, distance) heap entry. id duplicates the node
// identifier so ties order without an indirection.
type nodeItem struct {
	idx  int // dense node index
	id   int // node identifier, for deterministic tie-break
	dist float64
}

// nodePQ is a min-heap of nodeItem ordered by (dist, id) ascending, used with
// the lazy-decrease-key pattern: shorter rediscoveries push duplicates and
// stale entries are skipped when popped.
type nodePQ []nodeItem

func (pq nodePQ) Len() int { return len(pq) }

func (pq nodePQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}

	return pq[i].id < pq[j].id
}

func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(nodeItem)) }

func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
