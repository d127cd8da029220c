package assign

import (
	"math"
	"slices"
	"sort"

	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/network"
)

// zeroFlowGrace is the number of consecutive iterations a path may sit at
// zero flow before it is pruned from the arena. One full iteration of grace
// lets a just-clamped path be re-selected as the shortest before removal.
const zeroFlowGrace = 2

// PathSet is the arena of explicit paths maintained by the path-based
// algorithms: per OD pair (in ascending origin, destination order) a slice of
// paths with individual flows. Pruning removes by index with a swap, O(1).
type PathSet struct {
	buckets []odBucket
}

type odBucket struct {
	trip      network.Trip
	originPos int // index into state.origins
	paths     []pathEntry
}

type pathEntry struct {
	links   []int
	flow    float64
	cost    float64
	zeroAge int
}

// Path is a read-only snapshot of one path: its link indices in forward
// order, its assigned flow, and its cost at the final link travel times.
type Path struct {
	Links []int
	Flow  float64
	Cost  float64
}

// Pairs returns the OD pairs of the set in ascending (origin, destination)
// order.
func (p *PathSet) Pairs() []network.Trip {
	pairs := make([]network.Trip, len(p.buckets))
	for i, b := range p.buckets {
		pairs[i] = b.trip
	}

	return pairs
}

// Paths returns snapshots of the paths carrying the given OD pair's demand.
// Nil if the pair is not in the set.
func (p *PathSet) Paths(origin, dest int) []Path {
	for bi := range p.buckets {
		b := &p.buckets[bi]
		if b.trip.Origin != origin || b.trip.Dest != dest {
			continue
		}
		out := make([]Path, len(b.paths))
		for pi, pe := range b.paths {
			out[pi] = Path{
				Links: append([]int(nil), pe.links...),
				Flow:  pe.flow,
				Cost:  pe.cost,
			}
		}

		return out
	}

	return nil
}

// Len returns the total number of paths across all OD pairs.
func (p *PathSet) Len() int {
	var n int
	for i := range p.buckets {
		n += len(p.buckets[i].paths)
	}

	return n
}

// spRoute is the current shortest route of one OD pair.
type spRoute struct {
	links []int
	cost  float64
}

// gradientProjection is the path-based family: per OD pair, flow is shifted
// from costlier existing paths toward the current shortest path. The shift of
// each path is its cost excess over the shortest path divided by the second
// derivative of the objective along the swap (a diagonal Newton step), scaled
// by a step size from exact line search (GP-E) or a fixed schedule (GP).
type gradientProjection struct {
	exact bool
	set   *PathSet
}

// init seeds every OD pair with its free-flow shortest path carrying the full
// demand.
func (g *gradientProjection) init(s *state) error {
	trees, err := s.shortestTrees(s.costs)
	if err != nil {
		return err
	}
	g.set = &PathSet{}
	for i := range s.origins {
		for _, trip := range s.tripsByOrigin[i] {
			links, err := trees[i].PathLinks(trip.Dest)
			if err != nil {
				return err
			}
			d, err := trees[i].Dist(trip.Dest)
			if err != nil {
				return err
			}
			g.set.buckets = append(g.set.buckets, odBucket{
				trip:      trip,
				originPos: i,
				paths:     []pathEntry{{links: links, flow: trip.Volume, cost: d}},
			})
		}
	}
	g.rebuildFlows(s)

	return g.refresh(s)
}

func (g *gradientProjection) step(s *state, k int) (stepInfo, error) {
	trees, err := s.shortestTrees(s.costs)
	if err != nil {
		return stepInfo{}, err
	}

	// Current shortest route per OD pair.
	sps := make([]spRoute, len(g.set.buckets))
	for bi := range g.set.buckets {
		b := &g.set.buckets[bi]
		t := trees[b.originPos]
		links, err := t.PathLinks(b.trip.Dest)
		if err != nil {
			return stepInfo{}, err
		}
		d, err := t.Dist(b.trip.Dest)
		if err != nil {
			return stepInfo{}, err
		}
		sps[bi] = spRoute{links: links, cost: d}
	}

	// Shift directions. The basic path (the one equal to the shortest route,
	// if already present) absorbs whatever the others give up.
	dirs := make([][]float64, len(g.set.buckets))
	basics := make([]int, len(g.set.buckets))
	fallback := false
	for bi := range g.set.buckets {
		b := &g.set.buckets[bi]
		basic := -1
		for pi := range b.paths {
			if slices.Equal(b.paths[pi].links, sps[bi].links) {
				basic = pi
				break
			}
		}
		basics[bi] = basic
		dir := make([]float64, len(b.paths))
		for pi := range b.paths {
			if pi == basic {
				continue
			}
			h := s.symDiffDerivative(b.paths[pi].links, sps[bi].links)
			if h == 0 {
				// Flat second derivative: the Newton denominator vanishes.
				// Shift the whole path flow away in one move.
				dir[pi] = math.Inf(1)
				fallback = true

				continue
			}
			dir[pi] = (b.paths[pi].cost - sps[bi].cost) / h
		}
		dirs[bi] = dir
	}

	alpha := s.opts.StepSize
	if g.exact {
		alpha = g.exactShiftStep(s, sps, dirs, basics)
	}

	// Apply the shift: non-basic paths give up α·direction (clamped at
	// zero), the basic path receives the OD pair's remaining demand, so the
	// per-pair flow total is conserved exactly.
	for bi := range g.set.buckets {
		b := &g.set.buckets[bi]
		var flowSum float64
		for pi := range b.paths {
			if pi == basics[bi] {
				continue
			}
			nf := shiftedFlow(b.paths[pi].flow, alpha, dirs[bi][pi])
			b.paths[pi].flow = nf
			flowSum += nf
		}
		rem := b.trip.Volume - flowSum
		if rem < 0 {
			rem = 0
		}
		if basics[bi] >= 0 {
			b.paths[basics[bi]].flow = rem
		} else {
			b.paths = append(b.paths, pathEntry{links: sps[bi].links, flow: rem, cost: sps[bi].cost})
			basics[bi] = len(b.paths) - 1
		}
		pruneBucket(b, basics[bi])
	}

	g.rebuildFlows(s)

	return stepInfo{Step: alpha, Fallback: fallback}, g.refresh(s)
}

// exactShiftStep minimizes the objective of the post-shift link flows over
// α ∈ [0,1] by golden-section search. A result collapsed onto the zero bound
// is lifted to gpMinStep so the newest shortest path always receives flow.
func (g *gradientProjection) exactShiftStep(s *state, sps []spRoute, dirs [][]float64, basics []int) float64 {
	tmp := make([]float64, s.net.NumLinks())
	phi := func(alpha float64) float64 {
		for i := range tmp {
			tmp[i] = 0
		}
		for bi := range g.set.buckets {
			b := &g.set.buckets[bi]
			var flowSum float64
			for pi := range b.paths {
				if pi == basics[bi] {
					continue
				}
				nf := shiftedFlow(b.paths[pi].flow, alpha, dirs[bi][pi])
				flowSum += nf
				for _, li := range b.paths[pi].links {
					tmp[li] += nf
				}
			}
			rem := b.trip.Volume - flowSum
			if rem < 0 {
				rem = 0
			}
			spLinks := sps[bi].links
			if basics[bi] >= 0 {
				spLinks = b.paths[basics[bi]].links
			}
			for _, li := range spLinks {
				tmp[li] += rem
			}
		}
		var total float64
		for li, f := range tmp {
			total += s.objPotential(li, f)
		}

		return total
	}

	return liftShiftStep(goldenSection(phi, 0, 1, goldenTol))
}

// shiftedFlow applies one path's shift: an infinite direction empties the
// path, otherwise the flow decreases by α·dir and clamps at zero.
func shiftedFlow(flow, alpha, dir float64) float64 {
	if math.IsInf(dir, 1) {
		return 0
	}
	nf := flow - alpha*dir
	if nf < 0 {
		return 0
	}

	return nf
}

// symDiffDerivative sums the link-cost derivative over the symmetric
// difference of two paths: the second derivative of the objective along the
// swap of one unit of flow between them. Links are summed in sorted index
// order so the reduction is deterministic.
func (s *state) symDiffDerivative(a, b []int) float64 {
	mark := make(map[int]bool, len(a)+len(b))
	for _, li := range a {
		mark[li] = !mark[li]
	}
	for _, li := range b {
		mark[li] = !mark[li]
	}
	odd := make([]int, 0, len(mark))
	for li, in := range mark {
		if in {
			odd = append(odd, li)
		}
	}
	sort.Ints(odd)

	var h float64
	model := s.opts.CostModel
	for _, li := range odd {
		h += model.Derivative(s.net.Link(li), s.x[li])
	}

	return h
}

// rebuildFlows recomputes the link-flow vector from the path arena.
func (g *gradientProjection) rebuildFlows(s *state) {
	for i := range s.x {
		s.x[i] = 0
	}
	for bi := range g.set.buckets {
		b := &g.set.buckets[bi]
		for pi := range b.paths {
			for _, li := range b.paths[pi].links {
				s.x[li] += b.paths[pi].flow
			}
		}
	}
}

// refresh recomputes link costs from the flows and path costs from the link
// costs, restoring the state invariant after a path update.
func (g *gradientProjection) refresh(s *state) error {
	if err := s.updateCosts(); err != nil {
		return err
	}
	for bi := range g.set.buckets {
		b := &g.set.buckets[bi]
		for pi := range b.paths {
			var c float64
			for _, li := range b.paths[pi].links {
				c += s.costs[li]
			}
			b.paths[pi].cost = c
		}
	}

	return nil
}

// pruneBucket ages zero-flow paths and removes, by index swap, those at zero
// for zeroFlowGrace consecutive iterations. The basic path is never pruned.
func pruneBucket(b *odBucket, basic int) {
	for pi := 0; pi < len(b.paths); {
		p := &b.paths[pi]
		if pi == basic || p.flow > 0 {
			p.zeroAge = 0
			pi++

			continue
		}
		p.zeroAge++
		if p.zeroAge < zeroFlowGrace {
			pi++

			continue
		}
		last := len(b.paths) - 1
		b.paths[pi] = b.paths[last]
		b.paths = b.paths[:last]
		if basic == last {
			basic = pi
		}
	}
}
