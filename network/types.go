// types.go — link/trip records and sentinel errors for the network package.
//
// Error policy follows the rest of the module: only package-level sentinels
// are exposed, callers branch with errors.Is, and implementations attach
// context via %w wrapping.

package network

import "errors"

// Sentinel errors for network construction and flow evaluation.
var (
	// ErrNoLinks indicates that a Network was constructed from an empty link set.
	ErrNoLinks = errors.New("network: no links")

	// ErrSelfLoop indicates a link whose tail and head are the same node.
	ErrSelfLoop = errors.New("network: link tail equals head")

	// ErrDuplicateLink indicates two links sharing the same (tail, head) pair.
	ErrDuplicateLink = errors.New("network: duplicate link")

	// ErrBadLinkParam indicates a negative free-flow time, capacity, length,
	// alpha, beta or speed limit on a link.
	ErrBadLinkParam = errors.New("network: invalid link parameter")

	// ErrNodeNotFound indicates an operation referenced a node absent from the network.
	ErrNodeNotFound = errors.New("network: node not found")

	// ErrLinkNotFound indicates an operation referenced a link index out of range.
	ErrLinkNotFound = errors.New("network: link not found")

	// ErrFlowDimension indicates a flow vector whose length differs from the link count.
	ErrFlowDimension = errors.New("network: flow vector length mismatch")

	// ErrNegativeFlow indicates a negative entry in a flow vector. Flows are
	// physically non-negative; cost models are undefined below zero.
	ErrNegativeFlow = errors.New("network: negative flow")

	// ErrNegativeDemand indicates a trip with negative volume.
	ErrNegativeDemand = errors.New("network: negative demand volume")

	// ErrNoTrips indicates a Demand constructed without a single positive entry.
	ErrNoTrips = errors.New("network: no demand entries")
)

// Link is one directed road segment with the parameters of its travel-time
// function. From and To are node identifiers; a Network assigns each link a
// dense index in insertion order.
type Link struct {
	// From is the tail node identifier.
	From int

	// To is the head node identifier.
	To int

	// FreeFlowTime is the travel time at zero flow.
	FreeFlowTime float64

	// Capacity is the practical capacity used by the BPR and Greenshields
	// models. Capacities below CapacityFloor make the link effectively
	// impassable (cost HighCost) rather than dividing by zero.
	Capacity float64

	// Length is the physical link length (Greenshields model).
	Length float64

	// Alpha is the BPR multiplier coefficient (commonly 0.15).
	Alpha float64

	// Beta is the BPR power coefficient (commonly 4).
	Beta float64

	// SpeedLimit is the free-flow speed (Greenshields model).
	SpeedLimit float64

	// Toll is carried through from the input for reporting; the bundled cost
	// models do not price it.
	Toll float64
}

// Trip is one origin-destination demand entry.
type Trip struct {
	// Origin is the node where the demand departs.
	Origin int

	// Dest is the node where the demand arrives.
	Dest int

	// Volume is the demand, in the same units as link capacity. Non-negative.
	Volume float64
}
