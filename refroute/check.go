package refroute

import "github.com/pikasonix/pdptw/numeric"

// CheckInsertion evaluates inserting pickupID right after afterI and
// deliveryID right before beforeJ, both already belonging to vehicleID's
// current route (afterI == Pred[beforeJ] is the adjacent case), without
// mutating the route. It composes Forward[afterI], the two new nodes, any
// existing nodes strictly between afterI and beforeJ, and Backward[beforeJ],
// exactly as spec.md §4.D describes: "forward REF up to i, the new pickup,
// the chain from next(i) up to the node before j (also REF-composed), the
// new delivery, then the tail".
//
// The chain between afterI and beforeJ is walked node by node rather than
// looked up from a precomputed range structure, so this call costs O(gap
// length) rather than strict O(1); true O(1) arbitrary-position composition
// needs a full concatenation algebra (segment tree over route position) that
// is out of scope here. See DESIGN.md, refroute entry, for the tradeoff.
func (rs *RouteSet) CheckInsertion(vehicleID, afterI, pickupID, deliveryID, beforeJ int) CheckResult {
	vehicle := rs.Instance.Vehicles[vehicleID]
	nodeP := rs.Instance.Nodes[pickupID]
	nodeD := rs.Instance.Nodes[deliveryID]

	origPredJ := rs.Pred[beforeJ]

	fwdAtI := rs.Forward[afterI]
	arcIP := rs.Instance.Matrix.Arc(afterI, pickupID)
	fwdP := computeForward(fwdAtI, arcIP.Distance, arcIP.Time, nodeP, rs.SoftTW)

	if !rs.SoftTW && !fwdP.TWFeasible {
		return CheckResult{Feasible: false, Reason: ReasonTimeWindow}
	}

	curID := pickupID
	cur := fwdP
	next := rs.Succ[afterI]
	for next != beforeJ {
		n := rs.Instance.Nodes[next]
		arc := rs.Instance.Matrix.Arc(curID, next)
		cur = computeForward(cur, arc.Distance, arc.Time, n, rs.SoftTW)
		if !rs.SoftTW && !cur.TWFeasible {
			return CheckResult{Feasible: false, Reason: ReasonTimeWindow}
		}
		curID = next
		next = rs.Succ[next]
	}

	arcToD := rs.Instance.Matrix.Arc(curID, deliveryID)
	fwdD := computeForward(cur, arcToD.Distance, arcToD.Time, nodeD, rs.SoftTW)
	if !rs.SoftTW && !fwdD.TWFeasible {
		return CheckResult{Feasible: false, Reason: ReasonTimeWindow}
	}

	bw := rs.Backward[beforeJ]
	totalMaxLoad := fwdD.MaxLoad
	if tail := fwdD.Load + bw.MaxLoad; tail > totalMaxLoad {
		totalMaxLoad = tail
	}
	if !vehicle.CheckCapacity(totalMaxLoad) {
		return CheckResult{Feasible: false, Reason: ReasonCapacity}
	}

	arcToJ := rs.Instance.Matrix.Arc(deliveryID, beforeJ)
	arrivalAtJ := fwdD.EarliestCompletion.Add(arcToJ.Time)

	tailLateness := fwdD.Lateness
	feasible := true
	reason := ReasonNone
	if arrivalAtJ > bw.LatestStart {
		if !rs.SoftTW {
			feasible = false
			reason = ReasonTimeWindow
		} else {
			tailLateness = tailLateness.Add(arrivalAtJ.Sub(bw.LatestStart))
		}
	}

	// Shift-length feasibility: the route's total duration can only grow
	// by the extra delay the insertion introduces at beforeJ, since the
	// time-window check above already guarantees the unchanged tail from
	// beforeJ to the end depot absorbs that delay without further
	// clipping (arrivalAtJ <= bw.LatestStart). Same approximation as
	// Lateness above: exact for the common case, see DESIGN.md.
	if feasible {
		end := rs.Forward[vehicle.EndDepotID()]
		start := rs.Forward[vehicle.StartDepotID()]
		origDuration := end.EarliestCompletion.Sub(start.EarliestStart)
		addedDelay := arrivalAtJ.Sub(rs.Forward[beforeJ].EarliestStart)
		if addedDelay < numeric.Zero {
			addedDelay = numeric.Zero
		}
		if origDuration.Add(addedDelay) > vehicle.ShiftLength {
			feasible = false
			reason = ReasonShift
		}
	}

	newToJEntry := fwdD.Distance.Add(arcToJ.Distance)
	oldToJEntry := rs.Forward[origPredJ].Distance.Add(rs.Instance.Matrix.Distance(origPredJ, beforeJ))
	delta := newToJEntry.Sub(oldToJEntry)

	return CheckResult{
		Feasible:      feasible,
		DeltaDistance: delta,
		Lateness:      tailLateness,
		Reason:        reason,
	}
}
