// Package shortest computes single-source shortest-path trees over a road
// network under an externally supplied link-cost vector.
//
// The solver recomputes these trees every outer iteration because link costs
// change as flows change, so the implementation is tuned for repetition over
// a fixed topology: nodes and links are addressed by the dense indices the
// network assigns, and the priority queue uses the lazy-decrease-key pattern
// (duplicates are pushed and stale entries skipped on pop).
//
// Determinism: when several minimal-cost paths exist, the tree picks the
// predecessor with the lowest node identifier, and heap ordering breaks
// distance ties by node identifier. Repeated runs over identical inputs
// therefore produce identical trees, which the equilibrium solver requires
// for reproducible flow trajectories.
//
// Costs must be non-negative (they derive from physical travel times); the
// whole cost vector is scanned up front and a negative entry fails fast with
// ErrNegativeCost.
//
// Complexity per call: O((V + E) log V) time, O(V + E) space.
package shortest
