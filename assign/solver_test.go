package assign_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/assign"
	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/network"
)

// triangleNet builds the two-route test network: a direct link 1→2 with
// travel time 1+x and a detour 1→3→2 whose links each cost 1+x/2, so the
// routes price at 1+x versus 2+x.
//
// With demand 4 the user equilibrium splits 2.5 / 1.5 (route cost 3.5) and
// the system optimum splits 2.25 / 1.75.
func triangleNet(t *testing.T) *network.Network {
	t.Helper()
	nw, err := network.New([]network.Link{
		{From: 1, To: 2, FreeFlowTime: 1, Capacity: 1, Alpha: 1, Beta: 1},
		{From: 1, To: 3, FreeFlowTime: 1, Capacity: 1, Alpha: 0.5, Beta: 1},
		{From: 3, To: 2, FreeFlowTime: 1, Capacity: 1, Alpha: 0.5, Beta: 1},
	})
	require.NoError(t, err)

	return nw
}

func triangleDemand(t *testing.T) *network.Demand {
	t.Helper()
	d, err := network.NewDemand([]network.Trip{{Origin: 1, Dest: 2, Volume: 4}})
	require.NoError(t, err)

	return d
}

// SolverSuite exercises configuration validation, the driver loop, and the
// equilibrium quality of all five algorithms on closed-form networks.
type SolverSuite struct {
	suite.Suite

	net *network.Network
	dem *network.Demand
}

func (s *SolverSuite) SetupTest() {
	s.net = triangleNet(s.T())
	s.dem = triangleDemand(s.T())
}

// ------------------------------------------------------------------------
// 1. Configuration validation.
// ------------------------------------------------------------------------

func (s *SolverSuite) TestNilInputs() {
	_, err := assign.Solve(context.Background(), nil, s.dem, assign.DefaultOptions())
	require.ErrorIs(s.T(), err, assign.ErrNilNetwork)

	_, err = assign.Solve(context.Background(), s.net, nil, assign.DefaultOptions())
	require.ErrorIs(s.T(), err, assign.ErrNilDemand)
}

func (s *SolverSuite) TestBadOptions() {
	opts := assign.DefaultOptions()
	opts.Algorithm = assign.Algorithm(99)
	_, err := assign.Solve(context.Background(), s.net, s.dem, opts)
	require.ErrorIs(s.T(), err, assign.ErrUnknownAlgorithm)

	opts = assign.DefaultOptions()
	opts.Tolerance = 0
	_, err = assign.Solve(context.Background(), s.net, s.dem, opts)
	require.ErrorIs(s.T(), err, assign.ErrBadTolerance)

	opts = assign.DefaultOptions()
	opts.MaxIterations = 0
	_, err = assign.Solve(context.Background(), s.net, s.dem, opts)
	require.ErrorIs(s.T(), err, assign.ErrBadMaxIterations)

	opts = assign.DefaultOptions()
	opts.Algorithm = assign.GradientProjectionFixed
	opts.StepSize = 1.5
	_, err = assign.Solve(context.Background(), s.net, s.dem, opts)
	require.ErrorIs(s.T(), err, assign.ErrBadStepSize)
}

func (s *SolverSuite) TestBadWarmStart() {
	opts := assign.DefaultOptions()
	opts.WarmStart = []float64{1, 2} // wrong dimension
	_, err := assign.Solve(context.Background(), s.net, s.dem, opts)
	require.ErrorIs(s.T(), err, assign.ErrBadWarmStart)

	opts = assign.DefaultOptions()
	opts.Algorithm = assign.GradientProjectionExact
	opts.WarmStart = []float64{0, 0, 0}
	_, err = assign.Solve(context.Background(), s.net, s.dem, opts)
	require.ErrorIs(s.T(), err, assign.ErrBadWarmStart)
}

func (s *SolverSuite) TestDemandNodeUnknown() {
	d, err := network.NewDemand([]network.Trip{{Origin: 1, Dest: 42, Volume: 1}})
	require.NoError(s.T(), err)

	_, err = assign.Solve(context.Background(), s.net, d, assign.DefaultOptions())
	require.ErrorIs(s.T(), err, assign.ErrDemandNode)
}

func (s *SolverSuite) TestUnreachableDestination() {
	// Node 2 has no outgoing links, so 2→3 cannot be loaded.
	d, err := network.NewDemand([]network.Trip{{Origin: 2, Dest: 3, Volume: 1}})
	require.NoError(s.T(), err)

	_, err = assign.Solve(context.Background(), s.net, d, assign.DefaultOptions())
	require.ErrorIs(s.T(), err, assign.ErrUnreachable)
}

func (s *SolverSuite) TestContextCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := assign.Solve(ctx, s.net, s.dem, assign.DefaultOptions())
	require.ErrorIs(s.T(), err, context.Canceled)
}

// ------------------------------------------------------------------------
// 2. Equilibrium quality on the closed-form triangle.
// ------------------------------------------------------------------------

// TestFrankWolfeExact verifies that exact line search lands on the analytic
// equilibrium in a single descent step on a two-route network.
func (s *SolverSuite) TestFrankWolfeExact() {
	res, err := assign.Solve(context.Background(), s.net, s.dem, assign.DefaultOptions())
	require.NoError(s.T(), err)

	require.True(s.T(), res.Converged)
	require.Equal(s.T(), 2, res.Iterations)
	require.InDelta(s.T(), 2.5, res.Flows[0], 1e-6)
	require.InDelta(s.T(), 1.5, res.Flows[1], 1e-6)
	require.InDelta(s.T(), 3.5, res.Times[0], 1e-6)
	require.InDelta(s.T(), 14.0, res.TSTT, 1e-5)
	require.Nil(s.T(), res.Paths)
}

// TestSuccessiveAverages verifies MSA convergence under its fixed schedule.
// MSA closes the gap like 1/k, so the tolerance is looser than the default.
func (s *SolverSuite) TestSuccessiveAverages() {
	opts := assign.DefaultOptions()
	opts.Algorithm = assign.SuccessiveAverages
	opts.Tolerance = 1e-3
	opts.MaxIterations = 5000

	res, err := assign.Solve(context.Background(), s.net, s.dem, opts)
	require.NoError(s.T(), err)

	require.True(s.T(), res.Converged)
	require.Less(s.T(), res.Gap, 1e-3)
	require.InDelta(s.T(), 2.5, res.Flows[0], 5e-2)
}

// TestConjugateFrankWolfe verifies CFW on the triangle, where its first
// iterate coincides with plain Frank-Wolfe.
func (s *SolverSuite) TestConjugateFrankWolfe() {
	opts := assign.DefaultOptions()
	opts.Algorithm = assign.ConjugateFrankWolfe

	res, err := assign.Solve(context.Background(), s.net, s.dem, opts)
	require.NoError(s.T(), err)

	require.True(s.T(), res.Converged)
	require.InDelta(s.T(), 2.5, res.Flows[0], 1e-6)
}

// TestGradientProjectionExact verifies the path-based solver with exact line
// search, including the path-flow decomposition of the result.
func (s *SolverSuite) TestGradientProjectionExact() {
	opts := assign.DefaultOptions()
	opts.Algorithm = assign.GradientProjectionExact

	res, err := assign.Solve(context.Background(), s.net, s.dem, opts)
	require.NoError(s.T(), err)

	require.True(s.T(), res.Converged)
	require.InDelta(s.T(), 2.5, res.Flows[0], 1e-2)
	require.NotNil(s.T(), res.Paths)

	var total float64
	for _, p := range res.Paths.Paths(1, 2) {
		require.GreaterOrEqual(s.T(), p.Flow, 0.0)
		total += p.Flow
	}
	require.InDelta(s.T(), 4.0, total, 1e-9, "path flows must decompose the OD demand")
}

// TestGradientProjectionFixed verifies the fixed-step path-based solver.
func (s *SolverSuite) TestGradientProjectionFixed() {
	opts := assign.DefaultOptions()
	opts.Algorithm = assign.GradientProjectionFixed
	opts.StepSize = 0.05

	res, err := assign.Solve(context.Background(), s.net, s.dem, opts)
	require.NoError(s.T(), err)

	require.True(s.T(), res.Converged)
	require.InDelta(s.T(), 2.5, res.Flows[0], 1e-2)
	require.NotNil(s.T(), res.Paths)
}

// TestSystemOptimal verifies that the SO objective shifts the split to the
// marginal-cost equalizer 2.25 / 1.75.
func (s *SolverSuite) TestSystemOptimal() {
	opts := assign.DefaultOptions()
	opts.Objective = assign.SystemOptimal

	res, err := assign.Solve(context.Background(), s.net, s.dem, opts)
	require.NoError(s.T(), err)

	require.True(s.T(), res.Converged)
	require.InDelta(s.T(), 2.25, res.Flows[0], 1e-6)
	require.InDelta(s.T(), 1.75, res.Flows[1], 1e-6)
}

// TestSingleLinkTrivial verifies immediate convergence when only one route
// exists: the initial load is already at equilibrium.
func (s *SolverSuite) TestSingleLinkTrivial() {
	nw, err := network.New([]network.Link{
		{From: 1, To: 2, FreeFlowTime: 1, Capacity: 1, Alpha: 1, Beta: 1},
	})
	require.NoError(s.T(), err)
	d, err := network.NewDemand([]network.Trip{{Origin: 1, Dest: 2, Volume: 4}})
	require.NoError(s.T(), err)

	for _, alg := range []assign.Algorithm{
		assign.FrankWolfe, assign.SuccessiveAverages, assign.ConjugateFrankWolfe,
		assign.GradientProjectionExact, assign.GradientProjectionFixed,
	} {
		opts := assign.DefaultOptions()
		opts.Algorithm = alg
		res, err := assign.Solve(context.Background(), nw, d, opts)
		require.NoError(s.T(), err, alg.String())
		require.True(s.T(), res.Converged, alg.String())
		require.Equal(s.T(), 1, res.Iterations, alg.String())
		require.Equal(s.T(), 0.0, res.Gap, alg.String())
		require.Equal(s.T(), 4.0, res.Flows[0], alg.String())
		require.InDelta(s.T(), 20.0, res.TSTT, 1e-9, alg.String()) // 4 · (1+4)
	}
}

// ------------------------------------------------------------------------
// 3. Structural properties: conservation, non-negativity, trace shape.
// ------------------------------------------------------------------------

// TestFlowConservation verifies that the detour links carry identical flow
// and the two routes sum to the demand, for every algorithm.
func (s *SolverSuite) TestFlowConservation() {
	for _, alg := range []assign.Algorithm{
		assign.FrankWolfe, assign.SuccessiveAverages, assign.ConjugateFrankWolfe,
		assign.GradientProjectionExact, assign.GradientProjectionFixed,
	} {
		opts := assign.DefaultOptions()
		opts.Algorithm = alg
		opts.Tolerance = 1e-3
		opts.MaxIterations = 5000

		res, err := assign.Solve(context.Background(), s.net, s.dem, opts)
		require.NoError(s.T(), err, alg.String())
		require.InDelta(s.T(), res.Flows[1], res.Flows[2], 1e-9, "%s: detour links must match", alg)
		require.InDelta(s.T(), 4.0, res.Flows[0]+res.Flows[1], 1e-9, "%s: routes must carry the demand", alg)
		for i, f := range res.Flows {
			require.GreaterOrEqual(s.T(), f, 0.0, "%s: link %d", alg, i)
		}
	}
}

// TestTraceShape verifies the per-iteration record: 1-based contiguous
// iteration numbers, the full first step, and steps within [0,1].
func (s *SolverSuite) TestTraceShape() {
	res, err := assign.Solve(context.Background(), s.net, s.dem, assign.DefaultOptions())
	require.NoError(s.T(), err)

	require.Len(s.T(), res.Trace, res.Iterations)
	require.Equal(s.T(), 1.0, res.Trace[0].Step)
	for i, tp := range res.Trace {
		require.Equal(s.T(), i+1, tp.Iteration)
		require.GreaterOrEqual(s.T(), tp.Step, 0.0)
		require.LessOrEqual(s.T(), tp.Step, 1.0)
		require.GreaterOrEqual(s.T(), tp.Gap, 0.0)
		require.Greater(s.T(), tp.TSTT, 0.0)
	}
	require.Equal(s.T(), res.Gap, res.Trace[len(res.Trace)-1].Gap)
}

// TestMaxRunTimeCap verifies that an expired wall-clock budget stops the
// solve after the iteration in flight, without error.
func (s *SolverSuite) TestMaxRunTimeCap() {
	opts := assign.DefaultOptions()
	opts.Algorithm = assign.SuccessiveAverages
	opts.Tolerance = 1e-15 // unreachable for MSA
	opts.MaxRunTime = time.Nanosecond

	res, err := assign.Solve(context.Background(), s.net, s.dem, opts)
	require.NoError(s.T(), err)
	require.False(s.T(), res.Converged)
	require.Equal(s.T(), 1, res.Iterations)
}

// TestMaxIterationsCap verifies the iteration cap and the non-convergence
// report.
func (s *SolverSuite) TestMaxIterationsCap() {
	opts := assign.DefaultOptions()
	opts.Algorithm = assign.SuccessiveAverages
	opts.Tolerance = 1e-15
	opts.MaxIterations = 10

	res, err := assign.Solve(context.Background(), s.net, s.dem, opts)
	require.NoError(s.T(), err)
	require.False(s.T(), res.Converged)
	require.Equal(s.T(), 10, res.Iterations)
	require.Len(s.T(), res.Trace, 10)
}

// ------------------------------------------------------------------------
// 4. Reproducibility: determinism, warm-start idempotence, descent.
// ------------------------------------------------------------------------

// TestDeterministicRuns verifies that repeated solves produce bit-identical
// flow vectors and gap traces.
func (s *SolverSuite) TestDeterministicRuns() {
	for _, alg := range []assign.Algorithm{
		assign.FrankWolfe, assign.ConjugateFrankWolfe, assign.GradientProjectionExact,
	} {
		opts := assign.DefaultOptions()
		opts.Algorithm = alg

		a, err := assign.Solve(context.Background(), s.net, s.dem, opts)
		require.NoError(s.T(), err, alg.String())
		b, err := assign.Solve(context.Background(), s.net, s.dem, opts)
		require.NoError(s.T(), err, alg.String())

		require.Equal(s.T(), a.Flows, b.Flows, alg.String())
		require.Equal(s.T(), a.Iterations, b.Iterations, alg.String())
		for i := range a.Trace {
			require.Equal(s.T(), a.Trace[i].Gap, b.Trace[i].Gap, "%s: iteration %d", alg, i+1)
		}
	}
}

// TestWarmStartIdempotence verifies that re-solving from a converged flow
// vector terminates immediately at the same solution.
func (s *SolverSuite) TestWarmStartIdempotence() {
	first, err := assign.Solve(context.Background(), s.net, s.dem, assign.DefaultOptions())
	require.NoError(s.T(), err)
	require.True(s.T(), first.Converged)

	opts := assign.DefaultOptions()
	opts.WarmStart = first.Flows
	second, err := assign.Solve(context.Background(), s.net, s.dem, opts)
	require.NoError(s.T(), err)

	require.True(s.T(), second.Converged)
	require.Equal(s.T(), 1, second.Iterations)
	require.InDelta(s.T(), first.Flows[0], second.Flows[0], 1e-9)
}

// TestObjectiveDescent verifies that each exact-line-search step does not
// increase the Beckmann objective, stepping one iteration at a time through
// warm starts.
func (s *SolverSuite) TestObjectiveDescent() {
	beckmann := func(flows []float64) float64 {
		var total float64
		for i, f := range flows {
			total += network.BPR{}.Integral(s.net.Link(i), f)
		}

		return total
	}

	// Start from the free-flow all-or-nothing load (one iteration, no step).
	opts := assign.DefaultOptions()
	opts.MaxIterations = 1
	opts.Tolerance = 1e-15
	res, err := assign.Solve(context.Background(), s.net, s.dem, opts)
	require.NoError(s.T(), err)

	prev := beckmann(res.Flows)
	flows := res.Flows
	for step := 0; step < 5; step++ {
		opts := assign.DefaultOptions()
		opts.MaxIterations = 2
		opts.Tolerance = 1e-15
		opts.WarmStart = flows
		res, err := assign.Solve(context.Background(), s.net, s.dem, opts)
		require.NoError(s.T(), err)

		cur := beckmann(res.Flows)
		require.LessOrEqual(s.T(), cur, prev+1e-9, "objective rose at step %d", step)
		prev, flows = cur, res.Flows
	}
}

func TestSolverSuite(t *testing.T) {
	suite.Run(t, new(SolverSuite))
}

// ------------------------------------------------------------------------
// Enum round trips.
// ------------------------------------------------------------------------

func TestParseAlgorithm(t *testing.T) {
	for _, alg := range []assign.Algorithm{
		assign.FrankWolfe, assign.SuccessiveAverages, assign.ConjugateFrankWolfe,
		assign.GradientProjectionExact, assign.GradientProjectionFixed,
	} {
		got, err := assign.ParseAlgorithm(alg.String())
		require.NoError(t, err)
		require.Equal(t, alg, got)
	}

	got, err := assign.ParseAlgorithm("gp-e")
	require.NoError(t, err)
	require.Equal(t, assign.GradientProjectionExact, got)

	_, err = assign.ParseAlgorithm("simplex")
	require.ErrorIs(t, err, assign.ErrUnknownAlgorithm)
}

func TestAlgorithmPathBased(t *testing.T) {
	require.False(t, assign.FrankWolfe.PathBased())
	require.False(t, assign.ConjugateFrankWolfe.PathBased())
	require.True(t, assign.GradientProjectionExact.PathBased())
	require.True(t, assign.GradientProjectionFixed.PathBased())
}

func TestObjectiveString(t *testing.T) {
	require.Equal(t, "UE", assign.UserEquilibrium.String())
	require.Equal(t, "SO", assign.SystemOptimal.String())
}
