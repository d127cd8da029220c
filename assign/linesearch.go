package assign

import "math"

// Numerical constants of the line searches. Tolerances are tuned for link
// flows in the usual vehicles-per-hour range.
const (
	// bisectionMaxIter bounds the bisection of the directional derivative.
	bisectionMaxIter = 64

	// bisectionTol is the bracket width at which bisection stops.
	bisectionTol = 1e-12

	// goldenTol is the bracket width at which golden-section search stops.
	goldenTol = 1e-4

	// gpMinStep is the floor applied when the exact path-shift step
	// collapses onto the zero bound, so a newly found shortest path still
	// receives some flow.
	gpMinStep = 1e-2
)

// fixedStep is the step schedule of the method of successive averages,
// 2/(k+1) with k counting from 1 (the initial load takes the full step).
func fixedStep(k int) float64 { return 2 / float64(k+1) }

// exactStep finds the step α ∈ [0,1] minimizing the objective along the
// segment x + α(y−x), by bisection on the directional derivative
//
//	g(α) = Σ_l (y_l − x_l) · c_l(x_l + α(y_l − x_l)).
//
// Link costs are nondecreasing in flow, so g is nondecreasing and a sign
// change over [0,1] brackets the root; when no sign change exists the
// minimizer lies on a bound and is clamped there.
func (s *state) exactStep(x, y []float64) float64 {
	if s.dirDerivative(x, y, 0) >= 0 {
		return 0
	}
	if s.dirDerivative(x, y, 1) <= 0 {
		return 1
	}
	lo, hi := 0.0, 1.0
	for i := 0; i < bisectionMaxIter && hi-lo > bisectionTol; i++ {
		mid := (lo + hi) / 2
		if s.dirDerivative(x, y, mid) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}

	return (lo + hi) / 2
}

// dirDerivative evaluates the directional derivative of the objective at
// step a along x → y.
func (s *state) dirDerivative(x, y []float64, a float64) float64 {
	var sum float64
	for i := range x {
		d := y[i] - x[i]
		if d == 0 {
			continue
		}
		sum += d * s.objLinkCost(i, x[i]+a*d)
	}

	return sum
}

// liftShiftStep clamps the exact path-shift step to (0, 1]. A result below
// the search tolerance means the bracket collapsed onto the zero bound, where
// a vanishing shift would starve the newest shortest path; it is lifted to
// gpMinStep instead.
func liftShiftStep(alpha float64) float64 {
	if alpha < goldenTol {
		return gpMinStep
	}
	if alpha > 1 {
		return 1
	}

	return alpha
}

// goldenSection minimizes a unimodal f over [lo, hi] to within tol and
// returns the bracket midpoint. Used by the path-based exact line search,
// whose restricted objective is piecewise smooth (flow clamping at zero) and
// therefore unsuited to derivative bisection.
func goldenSection(f func(float64) float64, lo, hi, tol float64) float64 {
	invphi := (math.Sqrt(5) - 1) / 2
	a, b := lo, hi
	c := b - invphi*(b-a)
	d := a + invphi*(b-a)
	fc, fd := f(c), f(d)
	for b-a > tol {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - invphi*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + invphi*(b-a)
			fd = f(d)
		}
	}

	return (a + b) / 2
}
