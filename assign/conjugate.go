package assign

import "math"

// Safeguards of the conjugacy coefficient. The published formulas leave the
// near-zero denominator unspecified; these constants were validated
// empirically on the bundled test networks.
const (
	// conjugateDenomEps is the denominator magnitude below which the
	// conjugate correction is skipped for the iteration.
	conjugateDenomEps = 1e-12

	// conjugateBetaMax bounds the coefficient away from 1, where the blended
	// direction would collapse onto the previous one.
	conjugateBetaMax = 1 - 1e-9
)

// conjugateFrankWolfe blends the Frank-Wolfe all-or-nothing direction with
// the previous iteration's direction, choosing the conjugacy coefficient β so
// that the blend stays conjugate with respect to the objective's Hessian
// (diagonal, one cost derivative per link). This corrects the zig-zagging of
// plain Frank-Wolfe near the optimum.
type conjugateFrankWolfe struct {
	dir      []float64 // previous search direction
	prevStep float64   // step applied to it
}

func (c *conjugateFrankWolfe) init(s *state) error {
	fw := frankWolfe{}

	return fw.init(s)
}

func (c *conjugateFrankWolfe) step(s *state, k int) (stepInfo, error) {
	_, xbar, err := s.allOrNothing(s.costs, true)
	if err != nil {
		return stepInfo{}, err
	}

	n := len(s.x)
	target := xbar
	fallback := false
	if c.dir == nil {
		// First iterate has no history: plain Frank-Wolfe direction.
		c.dir = make([]float64, n)
		for i := range c.dir {
			c.dir[i] = xbar[i] - s.x[i]
		}
	} else {
		// β = (d̄·H·d_FW) / (d̄·H·(d_FW − d̄)) with d̄ the leftover of the
		// previous direction and H the diagonal of cost derivatives.
		var num, den float64
		model := s.opts.CostModel
		for i := 0; i < n; i++ {
			dFW := xbar[i] - s.x[i]
			dBar := (1 - c.prevStep) * c.dir[i]
			der := model.Derivative(s.net.Link(i), s.x[i])
			num += dBar * dFW * der
			den += dBar * (dFW - dBar) * der
		}
		var beta float64
		degenerate := math.Abs(den) < conjugateDenomEps ||
			math.IsNaN(num) || math.IsInf(num, 0) ||
			math.IsNaN(den) || math.IsInf(den, 0)
		if degenerate {
			// Vanishing or non-finite sums: fall back to the plain
			// Frank-Wolfe direction for this iteration rather than let a
			// degenerate β poison the flows.
			beta, fallback = 0, true
		} else {
			beta = num / den
			if beta < 0 {
				beta = 0
			} else if beta > conjugateBetaMax {
				beta = conjugateBetaMax
			}
		}
		for i := 0; i < n; i++ {
			dFW := xbar[i] - s.x[i]
			dBar := (1 - c.prevStep) * c.dir[i]
			c.dir[i] = dFW + beta*(dBar-dFW)
		}
		target = make([]float64, n)
		for i := range target {
			target[i] = s.x[i] + c.dir[i]
		}
	}

	alpha := s.exactStep(s.x, target)
	blend(s.x, target, alpha)
	c.prevStep = alpha

	return stepInfo{Step: alpha, Fallback: fallback}, s.updateCosts()
}
