package network

import "math"

// CapacityFloor is the capacity below which a link is treated as impassable:
// cost models return HighCost instead of dividing by a vanishing capacity.
const CapacityFloor = 1e-3

// HighCost is the travel time reported for degenerate links (capacity below
// CapacityFloor, or flow at or beyond capacity under Greenshields). Large
// enough to keep shortest paths away, small enough to stay far from overflow
// when summed along a path.
const HighCost = math.MaxFloat32

// CostModel evaluates a link travel-time function and its calculus. All
// methods are pure functions of the link parameters and the given flow;
// implementations must be safe for concurrent use.
//
// Callers are responsible for non-negative flows: the Network flow-vector
// entry points (TravelTimes, MarginalTimes, CheckFlows) reject negative
// entries before any model is consulted.
type CostModel interface {
	// Cost returns the travel time on l at the given flow.
	Cost(l Link, flow float64) float64

	// Marginal returns cost + flow·derivative, the link cost field under a
	// system-optimal objective.
	Marginal(l Link, flow float64) float64

	// Derivative returns d Cost / d flow.
	Derivative(l Link, flow float64) float64

	// Integral returns ∫₀^flow Cost(s) ds, the link's Beckmann term.
	Integral(l Link, flow float64) float64

	// Name identifies the model in result files and logs.
	Name() string
}

// BPR is the Bureau of Public Roads power-law travel-time function:
//
//	t(x) = fft · (1 + α·(x/c)^β)
//
// with free-flow time fft, capacity c, and shape coefficients α, β taken from
// the link.
type BPR struct{}

// Cost returns fft·(1 + α·(x/c)^β), or HighCost for degenerate capacity.
func (BPR) Cost(l Link, flow float64) float64 {
	if l.Capacity < CapacityFloor {
		return HighCost
	}

	return l.FreeFlowTime * (1 + l.Alpha*math.Pow(flow/l.Capacity, l.Beta))
}

// Marginal returns fft·(1 + α·(x/c)^β·(β+1)), i.e. Cost + x·Derivative.
func (BPR) Marginal(l Link, flow float64) float64 {
	if l.Capacity < CapacityFloor {
		return HighCost
	}

	return l.FreeFlowTime * (1 + l.Alpha*math.Pow(flow/l.Capacity, l.Beta)*(l.Beta+1))
}

// Derivative returns fft·α·β·(x/c)^(β−1)/c, and 0 for degenerate capacity
// (the cost is pinned at HighCost there, so its slope is flat).
//
// β = 0 makes the cost flow-independent, so the derivative is 0; the power
// form would evaluate 0·(x/c)^(−1) and produce NaN at zero flow. Likewise
// β < 1 diverges at zero flow and is clamped to 0 there.
func (BPR) Derivative(l Link, flow float64) float64 {
	if l.Capacity < CapacityFloor || l.Beta == 0 {
		return 0
	}
	if flow == 0 && l.Beta < 1 {
		return 0
	}

	return l.FreeFlowTime * l.Alpha * l.Beta * math.Pow(flow/l.Capacity, l.Beta-1) / l.Capacity
}

// Integral returns fft·(x + α·x·(x/c)^β/(1+β)).
func (BPR) Integral(l Link, flow float64) float64 {
	if l.Capacity < CapacityFloor {
		return HighCost * flow
	}

	return l.FreeFlowTime * (flow + l.Alpha*flow*math.Pow(flow/l.Capacity, l.Beta)/(1+l.Beta))
}

// Name implements CostModel.
func (BPR) Name() string { return "BPR" }

// Constant is a flow-independent travel-time function: t(x) = fft. Useful for
// uncongested links and as a degenerate case in tests.
type Constant struct{}

// Cost returns the free-flow time regardless of flow.
func (Constant) Cost(l Link, _ float64) float64 { return l.FreeFlowTime }

// Marginal returns fft + flow, matching the reference marginal form for the
// constant model.
func (Constant) Marginal(l Link, flow float64) float64 { return l.FreeFlowTime + flow }

// Derivative is identically zero.
func (Constant) Derivative(Link, float64) float64 { return 0 }

// Integral returns fft·flow.
func (Constant) Integral(l Link, flow float64) float64 { return l.FreeFlowTime * flow }

// Name implements CostModel.
func (Constant) Name() string { return "Constant" }

// Greenshields is the hyperbolic travel-time function derived from the
// Greenshields speed-density relation:
//
//	t(x) = L / (v·(1 − x/c))
//
// with link length L, free-flow speed v, and capacity c. The cost diverges as
// flow approaches capacity; at or beyond capacity it is clamped to HighCost.
type Greenshields struct{}

// Cost returns L/(v·(1−x/c)), clamped to HighCost near and beyond capacity.
func (Greenshields) Cost(l Link, flow float64) float64 {
	if l.Capacity < CapacityFloor || l.SpeedLimit < CapacityFloor {
		return HighCost
	}
	if l.Capacity-flow < CapacityFloor {
		return HighCost
	}

	return l.Length / (l.SpeedLimit * (1 - flow/l.Capacity))
}

// Marginal returns L·c²/(v·(c−x)²), the cost experienced plus imposed.
func (g Greenshields) Marginal(l Link, flow float64) float64 {
	if l.Capacity < CapacityFloor || l.SpeedLimit < CapacityFloor {
		return HighCost
	}
	if l.Capacity-flow < CapacityFloor {
		return HighCost
	}

	return l.Length * l.Capacity * l.Capacity / (l.SpeedLimit * (l.Capacity - flow) * (l.Capacity - flow))
}

// Derivative returns L·c/(v·(c−x)²).
func (Greenshields) Derivative(l Link, flow float64) float64 {
	if l.Capacity < CapacityFloor || l.SpeedLimit < CapacityFloor {
		return 0
	}
	if l.Capacity-flow < CapacityFloor {
		return 0
	}

	return l.Length * l.Capacity / (l.SpeedLimit * (l.Capacity - flow) * (l.Capacity - flow))
}

// Integral returns (L·c/v)·ln(c/(c−x)), clamped once flow reaches capacity.
func (Greenshields) Integral(l Link, flow float64) float64 {
	if l.Capacity < CapacityFloor || l.SpeedLimit < CapacityFloor {
		return HighCost * flow
	}
	if l.Capacity-flow < CapacityFloor {
		return HighCost * flow
	}

	return l.Length * l.Capacity / l.SpeedLimit * math.Log(l.Capacity/(l.Capacity-flow))
}

// Name implements CostModel.
func (Greenshields) Name() string { return "Greenshields" }
