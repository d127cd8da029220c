package assign

// frankWolfe is the link-based Frank-Wolfe family. Each iterate loads the
// whole demand all-or-nothing onto the shortest paths of the current cost
// field, then moves the flow vector toward that auxiliary target by a convex
// combination: the step comes from an exact line search (FW) or from the
// fixed 2/(k+1) schedule (MSA).
type frankWolfe struct {
	exact bool
}

// init seeds the flows with the all-or-nothing load on free-flow costs, or
// with the caller's warm start.
func (f *frankWolfe) init(s *state) error {
	if s.opts.WarmStart != nil {
		copy(s.x, s.opts.WarmStart)

		return s.updateCosts()
	}
	_, xbar, err := s.allOrNothing(s.costs, true)
	if err != nil {
		return err
	}
	s.x = xbar

	return s.updateCosts()
}

func (f *frankWolfe) step(s *state, k int) (stepInfo, error) {
	_, xbar, err := s.allOrNothing(s.costs, true)
	if err != nil {
		return stepInfo{}, err
	}
	alpha := fixedStep(k)
	if f.exact {
		alpha = s.exactStep(s.x, xbar)
	}
	blend(s.x, xbar, alpha)

	return stepInfo{Step: alpha}, s.updateCosts()
}

// blend moves x toward y in place: x ← x + α(y − x). With α ∈ [0,1] and both
// endpoints feasible, the result is feasible and flow conservation is
// preserved exactly (both operands satisfy it for the same demand).
func blend(x, y []float64, alpha float64) {
	for i := range x {
		x[i] += alpha * (y[i] - x[i])
	}
}
