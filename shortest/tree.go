package shortest

import (
	"errors"
	"fmt"
	"math"

	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/network"
)

// Sentinel errors for shortest-path computation.
var (
	// ErrNilNetwork indicates a nil *network.Network was passed to Compute.
	ErrNilNetwork = errors.New("shortest: network is nil")

	// ErrNodeNotFound indicates the requested node is absent from the network.
	ErrNodeNotFound = errors.New("shortest: node not found")

	// ErrCostDimension indicates the cost vector length differs from the link count.
	ErrCostDimension = errors.New("shortest: cost vector length mismatch")

	// ErrNegativeCost indicates a negative link cost. Travel times are
	// physically non-negative; Dijkstra's invariants require it.
	ErrNegativeCost = errors.New("shortest: negative link cost")

	// ErrUnreachable indicates the requested node cannot be reached from the
	// tree's origin.
	ErrUnreachable = errors.New("shortest: node unreachable from origin")
)

// Tree is a shortest-path tree rooted at one origin: per node, the distance
// from the origin and the incoming link on a least-cost path. Distances of
// unreachable nodes are +Inf and their predecessor link is -1.
//
// A Tree is immutable and safe for concurrent readers.
type Tree struct {
	net    *network.Network
	origin int       // origin node identifier
	dist   []float64 // by dense node index
	pred   []int     // incoming link index by dense node index; -1 if none
}

// Origin returns the origin node identifier.
func (t *Tree) Origin() int { return t.origin }

// Dist returns the shortest distance from the origin to the given node
// (+Inf if unreachable), or ErrNodeNotFound for an unknown identifier.
func (t *Tree) Dist(node int) (float64, error) {
	idx, ok := t.net.NodeIndex(node)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNodeNotFound, node)
	}

	return t.dist[idx], nil
}

// Reachable reports whether the given node is reachable from the origin.
// Unknown identifiers report false.
func (t *Tree) Reachable(node int) bool {
	idx, ok := t.net.NodeIndex(node)

	return ok && !math.IsInf(t.dist[idx], 1)
}

// WalkLinks calls fn with each link index on the shortest path from the
// origin to node, in reverse (destination → origin) order. It is the
// zero-allocation primitive under all-or-nothing flow accumulation.
func (t *Tree) WalkLinks(node int, fn func(linkIdx int)) error {
	idx, ok := t.net.NodeIndex(node)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, node)
	}
	if math.IsInf(t.dist[idx], 1) {
		return fmt.Errorf("%w: %d from %d", ErrUnreachable, node, t.origin)
	}
	for t.pred[idx] >= 0 {
		li := t.pred[idx]
		fn(li)
		from := t.net.Link(li).From
		idx, _ = t.net.NodeIndex(from)
	}

	return nil
}

// PathLinks returns the link indices of the shortest path from the origin to
// node, in forward (origin → destination) order.
func (t *Tree) PathLinks(node int) ([]int, error) {
	var rev []int
	if err := t.WalkLinks(node, func(li int) { rev = append(rev, li) }); err != nil {
		return nil, err
	}
	for l, r := 0, len(rev)-1; l < r; l, r = l+1, r-1 {
		rev[l], rev[r] = rev[r], rev[l]
	}

	return rev, nil
}
