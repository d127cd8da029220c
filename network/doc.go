// Package network defines the immutable road-network and demand types the
// equilibrium solver operates on.
//
// A Network is a directed graph of Links between integer-identified nodes.
// Every link carries the parameters of a flow-dependent travel-time function
// (free-flow time, capacity, and the BPR alpha/beta shape coefficients, plus
// length, speed limit and toll for the alternative cost models). Links are
// unique per ordered (tail, head) pair; parallel links are rejected at
// construction time.
//
// Cost evaluation is separated from topology: a CostModel turns a Link and a
// scalar flow into a travel time, its derivative, and its integral. Three
// models are provided — BPR (the standard power law), Constant, and
// Greenshields — each also exposing the marginal cost used by system-optimal
// assignment.
//
// A Demand holds the origin-destination trip matrix. Intrazonal and
// zero-volume entries are dropped at construction; negative volumes are an
// error. Origins and per-origin destination lists are kept sorted so that
// iteration order, and therefore every floating-point reduction downstream,
// is deterministic.
//
// Both Network and Demand are immutable after construction and safe for
// concurrent readers, which the solver relies on when it fans shortest-path
// computations out across origins.
package network
