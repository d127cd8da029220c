package network

import (
	"fmt"
	"sort"
)

// Network is an immutable directed road network. Nodes are identified by the
// integers appearing on links; internally each node gets a dense index
// (sorted by identifier) and each link keeps its position in the input slice.
//
// All accessors are read-only and safe for concurrent use.
type Network struct {
	links []Link
	nodes []int       // sorted distinct node identifiers
	index map[int]int // node identifier → dense index
	out   [][]int     // dense node index → outgoing link indices, sorted by head id
}

// New validates the given links and builds a Network.
//
// Validation (in order, fail fast):
//  1. at least one link (ErrNoLinks);
//  2. no self-loops (ErrSelfLoop);
//  3. non-negative free-flow time, capacity, length, alpha, beta and speed
//     limit (ErrBadLinkParam);
//  4. no duplicate (tail, head) pair (ErrDuplicateLink).
//
// The input slice is copied; callers may reuse it afterwards.
func New(links []Link) (*Network, error) {
	if len(links) == 0 {
		return nil, ErrNoLinks
	}

	seen := make(map[[2]int]struct{}, len(links))
	nodeSet := make(map[int]struct{}, len(links))
	for i, l := range links {
		if l.From == l.To {
			return nil, fmt.Errorf("%w: link %d (%d→%d)", ErrSelfLoop, i, l.From, l.To)
		}
		if l.FreeFlowTime < 0 || l.Capacity < 0 || l.Length < 0 ||
			l.Alpha < 0 || l.Beta < 0 || l.SpeedLimit < 0 {
			return nil, fmt.Errorf("%w: link %d (%d→%d)", ErrBadLinkParam, i, l.From, l.To)
		}
		key := [2]int{l.From, l.To}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %d→%d", ErrDuplicateLink, l.From, l.To)
		}
		seen[key] = struct{}{}
		nodeSet[l.From] = struct{}{}
		nodeSet[l.To] = struct{}{}
	}

	nodes := make([]int, 0, len(nodeSet))
	for id := range nodeSet {
		nodes = append(nodes, id)
	}
	sort.Ints(nodes)

	index := make(map[int]int, len(nodes))
	for i, id := range nodes {
		index[id] = i
	}

	n := &Network{
		links: append([]Link(nil), links...),
		nodes: nodes,
		index: index,
		out:   make([][]int, len(nodes)),
	}
	for li, l := range n.links {
		u := index[l.From]
		n.out[u] = append(n.out[u], li)
	}
	// Sort each adjacency list by head identifier so traversal order is
	// independent of input order. Heads are unique per tail (no duplicates).
	for _, adj := range n.out {
		sort.Slice(adj, func(a, b int) bool {
			return n.links[adj[a]].To < n.links[adj[b]].To
		})
	}

	return n, nil
}

// NumLinks returns the number of links.
func (n *Network) NumLinks() int { return len(n.links) }

// NumNodes returns the number of distinct nodes.
func (n *Network) NumNodes() int { return len(n.nodes) }

// Link returns the link at dense index i.
func (n *Network) Link(i int) Link { return n.links[i] }

// Links returns a copy of all links in index order.
func (n *Network) Links() []Link { return append([]Link(nil), n.links...) }

// Nodes returns a copy of the sorted node identifiers.
func (n *Network) Nodes() []int { return append([]int(nil), n.nodes...) }

// HasNode reports whether the node identifier exists in the network.
func (n *Network) HasNode(id int) bool {
	_, ok := n.index[id]

	return ok
}

// NodeIndex maps a node identifier to its dense index.
func (n *Network) NodeIndex(id int) (int, bool) {
	i, ok := n.index[id]

	return i, ok
}

// NodeID maps a dense index back to the node identifier.
func (n *Network) NodeID(idx int) int { return n.nodes[idx] }

// OutLinks returns the outgoing link indices of the node at dense index idx,
// sorted by head identifier. The returned slice is shared internal state and
// must not be modified.
func (n *Network) OutLinks(idx int) []int { return n.out[idx] }

// LinkIndex returns the dense index of the (from, to) link, if present.
func (n *Network) LinkIndex(from, to int) (int, bool) {
	u, ok := n.index[from]
	if !ok {
		return 0, false
	}
	for _, li := range n.out[u] {
		if n.links[li].To == to {
			return li, true
		}
	}

	return 0, false
}

// CheckFlows validates a link-flow vector: its length must equal the link
// count (ErrFlowDimension) and every entry must be non-negative
// (ErrNegativeFlow).
func (n *Network) CheckFlows(flows []float64) error {
	if len(flows) != len(n.links) {
		return fmt.Errorf("%w: got %d, want %d", ErrFlowDimension, len(flows), len(n.links))
	}
	for i, f := range flows {
		if f < 0 {
			l := n.links[i]

			return fmt.Errorf("%w: %g on link %d→%d", ErrNegativeFlow, f, l.From, l.To)
		}
	}

	return nil
}

// TravelTimes evaluates m.Cost on every link at the given flows and returns
// the per-link travel-time vector. The flow vector is validated first.
func (n *Network) TravelTimes(m CostModel, flows []float64) ([]float64, error) {
	if err := n.CheckFlows(flows); err != nil {
		return nil, err
	}
	times := make([]float64, len(n.links))
	for i, l := range n.links {
		times[i] = m.Cost(l, flows[i])
	}

	return times, nil
}

// MarginalTimes evaluates m.Marginal on every link at the given flows: the
// cost field driving system-optimal assignment.
func (n *Network) MarginalTimes(m CostModel, flows []float64) ([]float64, error) {
	if err := n.CheckFlows(flows); err != nil {
		return nil, err
	}
	times := make([]float64, len(n.links))
	for i, l := range n.links {
		times[i] = m.Marginal(l, flows[i])
	}

	return times, nil
}

// FreeFlowTimes returns m.Cost at zero flow on every link.
func (n *Network) FreeFlowTimes(m CostModel) []float64 {
	times := make([]float64, len(n.links))
	for i, l := range n.links {
		times[i] = m.Cost(l, 0)
	}

	return times
}
