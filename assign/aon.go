// aon.go — all-or-nothing loading: route every OD pair's demand along its
// current shortest path. Shortest-path trees are computed in parallel across
// origins (each origin is independent and reads only the cost snapshot);
// per-origin results are then reduced sequentially in ascending origin order
// so that floating-point summation order, and therefore the whole flow
// trajectory, is reproducible across runs.

package assign

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/shortest"
)

// shortestTrees computes one shortest-path tree per demand origin under the
// given cost vector, fanned out across GOMAXPROCS workers.
func (s *state) shortestTrees(costs []float64) ([]*shortest.Tree, error) {
	trees := make([]*shortest.Tree, len(s.origins))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, origin := range s.origins {
		i, origin := i, origin
		g.Go(func() error {
			t, err := shortest.Compute(s.net, costs, origin)
			if err != nil {
				return err
			}
			trees[i] = t

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return trees, nil
}

// allOrNothing returns the shortest-path travel-time total (SPTT, the lower
// bound driving the relative gap) and, when wantFlows is set, the auxiliary
// link-flow vector of the all-or-nothing load under the given costs.
func (s *state) allOrNothing(costs []float64, wantFlows bool) (float64, []float64, error) {
	trees, err := s.shortestTrees(costs)
	if err != nil {
		return 0, nil, err
	}

	var xbar []float64
	if wantFlows {
		xbar = make([]float64, s.net.NumLinks())
	}
	var sptt float64
	for i := range s.origins {
		t := trees[i]
		for _, trip := range s.tripsByOrigin[i] {
			d, err := t.Dist(trip.Dest)
			if err != nil {
				return 0, nil, err
			}
			if math.IsInf(d, 1) {
				return 0, nil, fmt.Errorf("%w: %d→%d", ErrUnreachable, trip.Origin, trip.Dest)
			}
			sptt += d * trip.Volume
			if wantFlows {
				vol := trip.Volume
				if err := t.WalkLinks(trip.Dest, func(li int) { xbar[li] += vol }); err != nil {
					return 0, nil, err
				}
			}
		}
	}

	return sptt, xbar, nil
}

// validateReachability verifies, on the current (free-flow) cost field, that
// every OD pair's destination is reachable from its origin. Costs only grow
// with flow, so reachability here guarantees it for the whole solve.
func (s *state) validateReachability() error {
	trees, err := s.shortestTrees(s.costs)
	if err != nil {
		return err
	}
	for i := range s.origins {
		for _, trip := range s.tripsByOrigin[i] {
			if !trees[i].Reachable(trip.Dest) {
				return fmt.Errorf("%w: %d→%d (demand %g)", ErrUnreachable, trip.Origin, trip.Dest, trip.Volume)
			}
		}
	}

	return nil
}
