package assign

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/network"
)

// strategy is the iterate transition of one algorithm variant. All five share
// the same driver: init seeds the flow state (all-or-nothing on free-flow
// costs, or Options.WarmStart), step performs one descent update. Both must
// leave state.x, state.costs and state.times mutually consistent.
type strategy interface {
	init(s *state) error
	step(s *state, k int) (stepInfo, error)
}

// stepInfo reports what one iterate did, for the trace.
type stepInfo struct {
	Step     float64
	Fallback bool
}

// state is the mutable per-solve state shared by the driver and the
// strategies. The flow vector is written only at iteration boundaries by the
// active strategy; the parallel shortest-path phase reads the cost snapshot
// taken at the start of the iteration.
type state struct {
	net           *network.Network
	dem           *network.Demand
	opts          Options
	origins       []int
	tripsByOrigin [][]network.Trip
	x             []float64 // link flows
	costs         []float64 // objective cost field at x (marginal under SO)
	times         []float64 // actual travel times at x
}

func newState(nw *network.Network, dem *network.Demand, opts Options) *state {
	origins := dem.Origins()
	byOrigin := make([][]network.Trip, len(origins))
	for i, o := range origins {
		byOrigin[i] = dem.FromOrigin(o)
	}

	return &state{
		net:           nw,
		dem:           dem,
		opts:          opts,
		origins:       origins,
		tripsByOrigin: byOrigin,
		x:             make([]float64, nw.NumLinks()),
	}
}

// updateCosts recomputes travel times and the objective cost field from the
// current flows.
func (s *state) updateCosts() error {
	times, err := s.net.TravelTimes(s.opts.CostModel, s.x)
	if err != nil {
		return err
	}
	s.times = times
	if s.opts.Objective == SystemOptimal {
		costs, err := s.net.MarginalTimes(s.opts.CostModel, s.x)
		if err != nil {
			return err
		}
		s.costs = costs

		return nil
	}
	s.costs = times

	return nil
}

// objLinkCost is the objective cost of one link at the given flow. Flows are
// feasible by construction; the clamp absorbs float round-off from line
// search arithmetic.
func (s *state) objLinkCost(li int, flow float64) float64 {
	if flow < 0 {
		flow = 0
	}
	l := s.net.Link(li)
	if s.opts.Objective == SystemOptimal {
		return s.opts.CostModel.Marginal(l, flow)
	}

	return s.opts.CostModel.Cost(l, flow)
}

// objPotential is the link's contribution to the minimized objective: the
// Beckmann integral under user equilibrium, flow·cost under system optimum.
func (s *state) objPotential(li int, flow float64) float64 {
	if flow < 0 {
		flow = 0
	}
	l := s.net.Link(li)
	if s.opts.Objective == SystemOptimal {
		return flow * s.opts.CostModel.Cost(l, flow)
	}

	return s.opts.CostModel.Integral(l, flow)
}

// Solve computes the equilibrium assignment for the given network and demand
// under opts. Configuration errors are returned before any iteration begins;
// failing to reach Options.Tolerance within the iteration or time cap is not
// an error and is reported via Result.Converged.
//
// The context is checked between iterations; a cancelled context aborts the
// solve with the context's error.
func Solve(ctx context.Context, nw *network.Network, dem *network.Demand, opts Options) (*Result, error) {
	if nw == nil {
		return nil, ErrNilNetwork
	}
	if dem == nil {
		return nil, ErrNilDemand
	}
	if opts.CostModel == nil {
		opts.CostModel = network.BPR{}
	}
	if err := validateOptions(nw, dem, opts); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := newState(nw, dem, opts)
	if err := s.updateCosts(); err != nil {
		return nil, err
	}
	if err := s.validateReachability(); err != nil {
		return nil, err
	}

	strat := newStrategy(opts)
	start := time.Now()
	if err := strat.init(s); err != nil {
		return nil, err
	}

	var (
		trace     []TracePoint
		converged bool
		gap, tstt float64
		k         int
	)
	info := stepInfo{Step: 1} // the initial load is a full step
	for {
		k++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if k > 1 {
			var err error
			if info, err = strat.step(s, k); err != nil {
				return nil, err
			}
		}

		var err error
		if gap, tstt, err = s.relativeGap(); err != nil {
			return nil, err
		}
		trace = append(trace, TracePoint{
			Iteration: k,
			Gap:       gap,
			TSTT:      tstt,
			Step:      info.Step,
			Elapsed:   time.Since(start),
			Fallback:  info.Fallback,
		})
		if info.Fallback {
			log.Warn("numerical fallback", "algorithm", opts.Algorithm.String(), "iteration", k)
		}
		log.Debug("iteration",
			"algorithm", opts.Algorithm.String(),
			"iteration", k,
			"gap", gap,
			"step", info.Step,
			"tstt", tstt,
		)

		if gap < opts.Tolerance {
			converged = true
			break
		}
		if k >= opts.MaxIterations {
			break
		}
		if opts.MaxRunTime > 0 && time.Since(start) >= opts.MaxRunTime {
			break
		}
	}

	res := &Result{
		Flows:      append([]float64(nil), s.x...),
		Times:      append([]float64(nil), s.times...),
		Gap:        gap,
		Iterations: k,
		Converged:  converged,
		TSTT:       tstt,
		Trace:      trace,
	}
	if gp, ok := strat.(*gradientProjection); ok {
		res.Paths = gp.set
	}

	if converged {
		log.Info("assignment converged",
			"algorithm", opts.Algorithm.String(),
			"iterations", k,
			"gap", gap,
			"tstt", tstt,
			"elapsed", time.Since(start),
		)
	} else {
		log.Warn("assignment did not converge",
			"algorithm", opts.Algorithm.String(),
			"iterations", k,
			"gap", gap,
			"tolerance", opts.Tolerance,
			"elapsed", time.Since(start),
		)
	}

	return res, nil
}

// validateOptions checks the configuration in a fixed order: algorithm,
// tolerance, iteration cap, step size, warm start, then demand node
// references. Reachability is validated separately once free-flow costs are
// available.
func validateOptions(nw *network.Network, dem *network.Demand, opts Options) error {
	switch opts.Algorithm {
	case FrankWolfe, SuccessiveAverages, ConjugateFrankWolfe,
		GradientProjectionExact, GradientProjectionFixed:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(opts.Algorithm))
	}
	if opts.Tolerance <= 0 {
		return fmt.Errorf("%w: %g", ErrBadTolerance, opts.Tolerance)
	}
	if opts.MaxIterations <= 0 {
		return fmt.Errorf("%w: %d", ErrBadMaxIterations, opts.MaxIterations)
	}
	if opts.Algorithm == GradientProjectionFixed && (opts.StepSize <= 0 || opts.StepSize > 1) {
		return fmt.Errorf("%w: %g", ErrBadStepSize, opts.StepSize)
	}
	if opts.WarmStart != nil {
		if opts.Algorithm.PathBased() {
			return fmt.Errorf("%w: %s is path-based", ErrBadWarmStart, opts.Algorithm)
		}
		if err := nw.CheckFlows(opts.WarmStart); err != nil {
			return fmt.Errorf("%w: %v", ErrBadWarmStart, err)
		}
	}
	for _, t := range dem.Trips() {
		if !nw.HasNode(t.Origin) {
			return fmt.Errorf("%w: origin %d", ErrDemandNode, t.Origin)
		}
		if !nw.HasNode(t.Dest) {
			return fmt.Errorf("%w: destination %d", ErrDemandNode, t.Dest)
		}
	}

	return nil
}

// newStrategy dispatches the algorithm variant. Options are validated before
// this is called.
func newStrategy(opts Options) strategy {
	switch opts.Algorithm {
	case FrankWolfe:
		return &frankWolfe{exact: true}
	case SuccessiveAverages:
		return &frankWolfe{}
	case ConjugateFrankWolfe:
		return &conjugateFrankWolfe{}
	default:
		return &gradientProjection{exact: opts.Algorithm == GradientProjectionExact}
	}
}
