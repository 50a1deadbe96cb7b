package refroute

import (
	"fmt"

	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
)

const unrouted = -1

// RouteSet owns every vehicle's route simultaneously, as one pair of
// succ/pred arrays indexed by global node id, plus the Forward/Backward
// aggregate arrays kept in sync with them. Unrouted pickup/delivery nodes
// have succ = pred = unrouted and carry no meaningful aggregate.
//
// Grounded on the teacher's model.Route (backend/model/route.go), which
// likewise keeps stops as a flat slice mutated in place rather than rebuilt
// on every change; here the "in place" mutation is pointer-chasing through
// succ/pred instead of slice splicing, because REF aggregates need O(1)
// neighbor lookups in both directions.
type RouteSet struct {
	Instance *model.Instance
	SoftTW   bool

	Succ []int
	Pred []int

	Forward  []Aggregate
	Backward []Aggregate

	// RouteOf maps a node id to the vehicle id whose route currently
	// contains it, or -1 if unrouted. Maintained incrementally by
	// Insert/RemoveRequest rather than recomputed by walking.
	RouteOf []int
}

// New builds an empty RouteSet: every vehicle's route is just its two
// depots back to back, and every request node starts unrouted.
func New(instance *model.Instance, softTW bool) *RouteSet {
	n := len(instance.Nodes)
	rs := &RouteSet{
		Instance: instance,
		SoftTW:   softTW,
		Succ:     make([]int, n),
		Pred:     make([]int, n),
		Forward:  make([]Aggregate, n),
		Backward: make([]Aggregate, n),
		RouteOf:  make([]int, n),
	}
	for i := range rs.RouteOf {
		rs.RouteOf[i] = unrouted
	}
	for v, vehicle := range instance.Vehicles {
		start, end := vehicle.StartDepotID(), vehicle.EndDepotID()
		rs.Succ[start] = end
		rs.Pred[end] = start
		rs.Succ[end] = unrouted
		rs.Pred[start] = unrouted
		rs.RouteOf[start] = v
		rs.RouteOf[end] = v
	}
	for _, v := range instance.Vehicles {
		rs.recomputeRoute(v.ID)
	}
	return rs
}

// recomputeRoute fully rebuilds Forward and Backward for one vehicle's
// route from scratch. Used at construction and by SetRoute; incremental
// moves use PropagateForwardFrom/PropagateBackwardFrom instead.
func (rs *RouteSet) recomputeRoute(vehicleID int) {
	v := rs.Instance.Vehicles[vehicleID]
	rs.PropagateForwardFrom(v.StartDepotID())
	rs.PropagateBackwardFrom(v.EndDepotID())
}

// PropagateForwardFrom recomputes Forward aggregates starting at node and
// following Succ until (and including) the route's end depot.
func (rs *RouteSet) PropagateForwardFrom(node int) {
	for {
		n := rs.Instance.Nodes[node]
		if n.Type == model.DepotStart {
			rs.Forward[node] = baseForward(n)
		} else {
			p := rs.Pred[node]
			arc := rs.Instance.Matrix.Arc(p, node)
			rs.Forward[node] = computeForward(rs.Forward[p], arc.Distance, arc.Time, n, rs.SoftTW)
		}
		if n.Type == model.DepotEnd {
			return
		}
		node = rs.Succ[node]
	}
}

// PropagateBackwardFrom recomputes Backward aggregates starting at node and
// following Pred until (and including) the route's start depot.
func (rs *RouteSet) PropagateBackwardFrom(node int) {
	for {
		n := rs.Instance.Nodes[node]
		if n.Type == model.DepotEnd {
			rs.Backward[node] = baseBackward(n)
		} else {
			s := rs.Succ[node]
			arc := rs.Instance.Matrix.Arc(node, s)
			rs.Backward[node] = computeBackward(rs.Backward[s], arc.Distance, arc.Time, n, rs.SoftTW)
		}
		if n.Type == model.DepotStart {
			return
		}
		node = rs.Pred[node]
	}
}

// Insert splices pickupID in right after afterI, and deliveryID in right
// before beforeJ (afterI and beforeJ must already be in the same route, with
// beforeJ reachable from afterI by following Succ; afterI == beforeJ's
// current predecessor is the adjacent case, placing pickup and delivery back
// to back). Re-propagates forward from pickupID and backward from
// deliveryID, which covers exactly the nodes whose aggregates changed.
func (rs *RouteSet) Insert(afterI, pickupID, deliveryID, beforeJ int) {
	vehicleID := rs.RouteOf[afterI]

	nextAfterP := rs.Succ[afterI]
	rs.Succ[afterI] = pickupID
	rs.Pred[pickupID] = afterI
	rs.Succ[pickupID] = nextAfterP
	rs.Pred[nextAfterP] = pickupID

	predOfBeforeJ := rs.Pred[beforeJ]
	if predOfBeforeJ == afterI {
		predOfBeforeJ = pickupID
	}
	rs.Succ[predOfBeforeJ] = deliveryID
	rs.Pred[deliveryID] = predOfBeforeJ
	rs.Succ[deliveryID] = beforeJ
	rs.Pred[beforeJ] = deliveryID

	rs.RouteOf[pickupID] = vehicleID
	rs.RouteOf[deliveryID] = vehicleID

	rs.PropagateForwardFrom(pickupID)
	rs.PropagateBackwardFrom(deliveryID)
}

// RemoveRequest unsplices a pickup/delivery pair (pickupID and its paired
// deliveryID = pickupID+1) wherever they sit in their current route, and
// re-propagates exactly the affected prefix/suffix.
func (rs *RouteSet) RemoveRequest(pickupID int) {
	deliveryID := rs.Instance.DeliveryOf(pickupID)

	predP, succP := rs.Pred[pickupID], rs.Succ[pickupID]
	predD, succD := rs.Pred[deliveryID], rs.Succ[deliveryID]

	// Adjacent pickup->delivery: pickupID's successor is deliveryID itself,
	// which is about to be unrouted, so route succP past it to deliveryID's
	// own successor before using it as a splice/propagation anchor.
	if succP == deliveryID {
		succP = succD
	}
	if predD == pickupID {
		predD = predP
	}

	rs.Succ[predP] = succP
	rs.Pred[succP] = predP
	rs.Succ[predD] = succD
	rs.Pred[succD] = predD

	rs.RouteOf[pickupID] = unrouted
	rs.RouteOf[deliveryID] = unrouted
	rs.Succ[pickupID], rs.Pred[pickupID] = unrouted, unrouted
	rs.Succ[deliveryID], rs.Pred[deliveryID] = unrouted, unrouted

	rs.PropagateForwardFrom(succP)
	rs.PropagateBackwardFrom(predD)
}

// SetRoute rewires vehicleID's route to visit nodeIDs in order (excluding
// depots) and fully recomputes its Forward/Backward aggregates. Used to
// rebuild a RouteSet from a solution.Description rather than replaying
// every Insert call that produced it.
func (rs *RouteSet) SetRoute(vehicleID int, nodeIDs []int) {
	v := rs.Instance.Vehicles[vehicleID]
	start, end := v.StartDepotID(), v.EndDepotID()

	prev := start
	for _, n := range nodeIDs {
		rs.Succ[prev] = n
		rs.Pred[n] = prev
		rs.RouteOf[n] = vehicleID
		prev = n
	}
	rs.Succ[prev] = end
	rs.Pred[end] = prev

	rs.recomputeRoute(vehicleID)
}

// IsEmpty reports whether a vehicle's route currently carries no requests.
func (rs *RouteSet) IsEmpty(vehicleID int) bool {
	v := rs.Instance.Vehicles[vehicleID]
	return rs.Succ[v.StartDepotID()] == v.EndDepotID()
}

// IterRoute returns the request/ghost node ids of a vehicle's route, in
// visiting order, excluding both depots.
func (rs *RouteSet) IterRoute(vehicleID int) []int {
	v := rs.Instance.Vehicles[vehicleID]
	var ids []int
	for n := rs.Succ[v.StartDepotID()]; n != v.EndDepotID(); n = rs.Succ[n] {
		ids = append(ids, n)
	}
	return ids
}

// IterRouteWithDepots is IterRoute but includes the start and end depot ids.
func (rs *RouteSet) IterRouteWithDepots(vehicleID int) []int {
	v := rs.Instance.Vehicles[vehicleID]
	ids := []int{v.StartDepotID()}
	ids = append(ids, rs.IterRoute(vehicleID)...)
	ids = append(ids, v.EndDepotID())
	return ids
}

// RouteFeasible reports whether a vehicle's route, as currently built,
// satisfies capacity, time-window (hard mode) and shift-length constraints.
func (rs *RouteSet) RouteFeasible(vehicleID int) bool {
	v := rs.Instance.Vehicles[vehicleID]
	end := rs.Forward[v.EndDepotID()]
	start := rs.Forward[v.StartDepotID()]
	if !v.CheckCapacity(end.MaxLoad) {
		return false
	}
	if !rs.SoftTW && !end.TWFeasible {
		return false
	}
	duration := end.EarliestCompletion.Sub(start.EarliestStart)
	return duration <= v.ShiftLength
}

// InfeasibilityReason names why a CheckInsertion call rejected a candidate,
// per spec.md §4.D's "infeasible with reason (tw, capacity, shift)".
type InfeasibilityReason int

const (
	// ReasonNone means the candidate was feasible.
	ReasonNone InfeasibilityReason = iota
	// ReasonTimeWindow means some node's earliest start exceeded its due time.
	ReasonTimeWindow
	// ReasonCapacity means the vehicle's capacity would be exceeded.
	ReasonCapacity
	// ReasonShift means the route's total duration would exceed the
	// vehicle's shift length.
	ReasonShift
)

func (r InfeasibilityReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonTimeWindow:
		return "tw"
	case ReasonCapacity:
		return "capacity"
	case ReasonShift:
		return "shift"
	default:
		return "unknown"
	}
}

// CheckResult is the outcome of a non-mutating CheckInsertion call.
type CheckResult struct {
	Feasible      bool
	DeltaDistance numeric.Num
	Lateness      numeric.Num // additional soft-TW lateness introduced, approximate for the tail (see DESIGN.md)
	Reason        InfeasibilityReason
}

// String implements fmt.Stringer for debug printing.
func (r CheckResult) String() string {
	return fmt.Sprintf("CheckResult{Feasible:%v Delta:%v Lateness:%v Reason:%v}", r.Feasible, r.DeltaDistance, r.Lateness, r.Reason)
}
