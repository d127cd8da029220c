// Package assign computes static traffic-equilibrium assignments: link flows
// satisfying Wardrop's user-equilibrium condition (or the system-optimal
// condition) on a network.Network under a network.Demand trip matrix.
//
// Five interchangeable algorithms share one iteration driver:
//
//   - FrankWolfe           — all-or-nothing target, exact line search
//   - SuccessiveAverages   — all-or-nothing target, fixed step 2/(k+1)
//   - ConjugateFrankWolfe  — Frank-Wolfe direction blended with the previous
//     direction via a conjugacy coefficient, correcting the zig-zagging of
//     plain Frank-Wolfe near the optimum
//   - GradientProjectionExact — per-OD path flows shifted toward the current
//     shortest path, shift scaled by an exact line search
//   - GradientProjectionFixed — the same shift with a fixed step size
//
// Each iteration recomputes shortest-path trees for every origin under the
// current cost field (in parallel across origins, merged in a fixed order so
// runs are bit-reproducible), takes one descent step, and evaluates the
// relative gap (TSTT − SPTT)/TSTT. The solve terminates when the gap drops
// below Options.Tolerance; exhausting Options.MaxIterations or
// Options.MaxRunTime first is reported as Result.Converged == false, not as
// an error.
//
// Error taxonomy:
//
//   - configuration errors (nil inputs, non-positive tolerance or iteration
//     cap, unknown algorithm, demand on missing nodes, unreachable OD pairs)
//     surface from Solve before the first iteration;
//   - numerical degeneracies (a vanishing conjugacy denominator, a flat
//     second derivative in a path shift) are recovered locally with a safe
//     fallback and flagged on the iteration's TracePoint;
//   - non-convergence is a status on Result, never an error.
//
// Minimal usage:
//
//	res, err := assign.Solve(ctx, nw, dem, assign.DefaultOptions())
//	if err != nil { ... }
//	if !res.Converged { log.Printf("gap %.3g after %d iterations", res.Gap, res.Iterations) }
package assign
