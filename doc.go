// Package traffic solves static traffic-assignment problems: given a road
// network with flow-dependent travel times and an origin-destination trip
// matrix, it computes link flows satisfying Wardrop's user-equilibrium
// condition (no traveler can reduce travel time by switching routes).
//
// What the module provides:
//
//   - network/  — immutable directed road networks, BPR-family cost models,
//     OD demand matrices
//   - shortest/ — single-source shortest-path trees over a link-cost vector
//   - assign/   — the equilibrium solver: all-or-nothing loading, line
//     searches, and five interchangeable algorithms (Frank-Wolfe with exact
//     and fixed steps, conjugate-direction Frank-Wolfe, and path-based
//     gradient projection with exact and fixed steps)
//   - tntp/     — readers and writers for the TNTP network/trips text format
//   - cmd/assign — a CLI that loads TNTP files, runs one or more algorithms,
//     and writes flow results plus per-iteration gap traces
//
// Quick start:
//
//	nw, _ := network.New(links)
//	dem, _ := network.NewDemand(trips)
//	res, err := assign.Solve(ctx, nw, dem, assign.DefaultOptions())
//
// Both user-equilibrium and system-optimal objectives are supported; see
// assign.Options for tolerances, iteration caps, and algorithm selection.
package traffic
