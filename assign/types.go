// types.go — algorithm/objective enums, solve options, result and trace
// types, and the package's sentinel errors.

package assign

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/network"
)

// Sentinel errors surfaced by Solve before any iteration begins.
var (
	// ErrNilNetwork indicates a nil network was passed to Solve.
	ErrNilNetwork = errors.New("assign: network is nil")

	// ErrNilDemand indicates a nil demand matrix was passed to Solve.
	ErrNilDemand = errors.New("assign: demand is nil")

	// ErrUnknownAlgorithm indicates Options.Algorithm is not one of the five variants.
	ErrUnknownAlgorithm = errors.New("assign: unknown algorithm")

	// ErrBadTolerance indicates a non-positive convergence tolerance.
	ErrBadTolerance = errors.New("assign: tolerance must be positive")

	// ErrBadMaxIterations indicates a non-positive iteration cap.
	ErrBadMaxIterations = errors.New("assign: max iterations must be positive")

	// ErrBadStepSize indicates a fixed step size outside (0, 1].
	ErrBadStepSize = errors.New("assign: step size must be in (0, 1]")

	// ErrDemandNode indicates a demand entry referencing a node absent from the network.
	ErrDemandNode = errors.New("assign: demand references unknown node")

	// ErrUnreachable indicates an OD pair whose destination cannot be reached
	// from its origin, so its demand cannot be loaded. Fatal configuration
	// error, detected on free-flow costs before iterating.
	ErrUnreachable = errors.New("assign: destination unreachable from origin")

	// ErrBadWarmStart indicates Options.WarmStart is invalid for this solve:
	// wrong dimension, negative entries, or a path-based algorithm (which
	// needs path flows, not link flows, as its state).
	ErrBadWarmStart = errors.New("assign: invalid warm start")
)

// Algorithm selects one of the five equilibrium algorithms.
type Algorithm int

const (
	// FrankWolfe is the link-based Frank-Wolfe algorithm with exact line search.
	FrankWolfe Algorithm = iota

	// SuccessiveAverages is Frank-Wolfe with the fixed step schedule 2/(k+1)
	// (the method of successive averages).
	SuccessiveAverages

	// ConjugateFrankWolfe blends the Frank-Wolfe direction with the previous
	// iteration's direction using a conjugacy coefficient.
	ConjugateFrankWolfe

	// GradientProjectionExact is path-based gradient projection with the shift
	// magnitude chosen by exact line search.
	GradientProjectionExact

	// GradientProjectionFixed is path-based gradient projection with a fixed
	// step size (Options.StepSize).
	GradientProjectionFixed
)

// String returns the conventional short name: FW, MSA, CFW, GP-E, GP.
func (a Algorithm) String() string {
	switch a {
	case FrankWolfe:
		return "FW"
	case SuccessiveAverages:
		return "MSA"
	case ConjugateFrankWolfe:
		return "CFW"
	case GradientProjectionExact:
		return "GP-E"
	case GradientProjectionFixed:
		return "GP"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// PathBased reports whether the algorithm maintains explicit path flows.
func (a Algorithm) PathBased() bool {
	return a == GradientProjectionExact || a == GradientProjectionFixed
}

// ParseAlgorithm resolves the short names accepted on the CLI and in
// scenario files (case-insensitive): FW, MSA, CFW, GP-E, GP.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FW":
		return FrankWolfe, nil
	case "MSA":
		return SuccessiveAverages, nil
	case "CFW":
		return ConjugateFrankWolfe, nil
	case "GP-E", "GPE":
		return GradientProjectionExact, nil
	case "GP":
		return GradientProjectionFixed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

// Objective selects the assignment objective.
type Objective int

const (
	// UserEquilibrium seeks Wardrop user equilibrium (default).
	UserEquilibrium Objective = iota

	// SystemOptimal seeks the system-optimal assignment; loading and gap
	// computation run on marginal link costs.
	SystemOptimal
)

// String returns "UE" or "SO".
func (o Objective) String() string {
	if o == SystemOptimal {
		return "SO"
	}

	return "UE"
}

// Options configures a solve. The zero value is not usable; start from
// DefaultOptions. Options is passed by value and never retained, so one
// configuration can drive many solves.
type Options struct {
	// Algorithm selects the equilibrium algorithm. Default FrankWolfe.
	Algorithm Algorithm

	// Objective selects user-equilibrium or system-optimal assignment.
	Objective Objective

	// Tolerance is the relative-gap target. Must be positive.
	Tolerance float64

	// MaxIterations caps the outer iterations. A safety bound, not a
	// correctness requirement: hitting it yields Result.Converged == false.
	MaxIterations int

	// MaxRunTime optionally caps wall-clock time, checked between
	// iterations. Zero disables the cap.
	MaxRunTime time.Duration

	// StepSize is the fixed step for GradientProjectionFixed. Must be in
	// (0, 1]. Default 0.05.
	StepSize float64

	// CostModel evaluates link travel times. Default network.BPR.
	CostModel network.CostModel

	// WarmStart optionally seeds the link-based algorithms with an existing
	// flow vector instead of the free-flow all-or-nothing load. Must have
	// one non-negative entry per link. Not supported by the path-based
	// algorithms.
	WarmStart []float64

	// Logger receives per-iteration Debug records, Warn records on numerical
	// fallbacks, and an Info summary. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns the configuration used throughout the tests:
// Frank-Wolfe, user equilibrium, BPR costs, gap 1e-4, 1000 iterations.
func DefaultOptions() Options {
	return Options{
		Algorithm:     FrankWolfe,
		Objective:     UserEquilibrium,
		Tolerance:     1e-4,
		MaxIterations: 1000,
		StepSize:      0.05,
		CostModel:     network.BPR{},
	}
}

// TracePoint is one entry of the per-iteration convergence trace.
type TracePoint struct {
	// Iteration counts from 1 (the initial all-or-nothing load).
	Iteration int

	// Gap is the relative gap (TSTT − SPTT)/TSTT after this iteration.
	Gap float64

	// TSTT is the total system travel time at this iteration's flows,
	// always measured in actual (non-marginal) travel times.
	TSTT float64

	// Step is the step size applied this iteration.
	Step float64

	// Elapsed is wall-clock time since the solve started.
	Elapsed time.Duration

	// Fallback marks an iteration that recovered from a numerical
	// degeneracy (vanishing conjugacy denominator or flat path-shift
	// second derivative).
	Fallback bool
}

// Result is the outcome of a solve.
type Result struct {
	// Flows is the final link-flow vector, indexed like the network's links.
	Flows []float64

	// Times is the final per-link travel time at Flows.
	Times []float64

	// Gap is the final relative gap.
	Gap float64

	// Iterations is the number of outer iterations performed.
	Iterations int

	// Converged reports whether Gap < Tolerance was reached before the
	// iteration or time cap.
	Converged bool

	// TSTT is the final total system travel time.
	TSTT float64

	// Trace is the per-iteration convergence record.
	Trace []TracePoint

	// Paths is the final path-flow set for the path-based algorithms,
	// nil otherwise.
	Paths *PathSet
}
