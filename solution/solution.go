// Package solution ties a refroute.RouteSet together with the bank of
// currently-unassigned requests, the locked-node set and the per-request
// unassigned penalty the objective is computed from on demand — the single
// mutable object destroy/repair operators,
// the LNS controller and AGES all operate on.
package solution

import (
	"fmt"

	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/refroute"
)

// BankEntry is one unassigned request sitting in the bank, with a penalty
// counter that BumpPenalty increments. AGES keeps its own per-request
// counters and does not read this one.
type BankEntry struct {
	PickupID     int
	PenaltyCount int
}

// Solution is a complete (possibly partial) assignment of requests to
// vehicle routes: every request is either routed (via Routes) or banked
// (via Bank), never both, except while an operator is mid-mutation.
type Solution struct {
	Instance *model.Instance
	Routes   *refroute.RouteSet
	SoftTW   bool

	Bank []BankEntry

	// locked marks node ids (pickup or delivery) that destroy operators may
	// not touch — used by dynamic re-optimization to freeze nodes already
	// committed to a vehicle (spec.md §4.L). A plain []bool plays the role
	// of a bitset here: no bitset library exists anywhere in the retrieved
	// pack, and the teacher favors plain slices over specialized containers
	// for small fixed-size state (see model.Bus's []int seat tracking).
	locked []bool

	// emptyRoute marks vehicle ids whose route currently carries no
	// requests, kept incrementally rather than recomputed on every query.
	emptyRoute []bool

	unassignedPenalty numeric.Num

	// AssertionsEnabled turns on CheckInvariants-style verification
	// (spec.md §7's search_assertions): off by default so the hot path
	// never pays for it, flippable per-Solution by a CLI flag.
	AssertionsEnabled bool
}

// New builds an all-banked starting solution: every request unassigned,
// every route empty.
func New(instance *model.Instance, softTW bool, unassignedPenalty numeric.Num) *Solution {
	s := &Solution{
		Instance:          instance,
		Routes:            refroute.New(instance, softTW),
		SoftTW:            softTW,
		locked:            make([]bool, len(instance.Nodes)),
		emptyRoute:        make([]bool, instance.NumVehicles()),
		unassignedPenalty: unassignedPenalty,
	}
	for v := range s.emptyRoute {
		s.emptyRoute[v] = true
	}
	for r := 0; r < instance.NumRequests; r++ {
		s.Bank = append(s.Bank, BankEntry{PickupID: instance.PickupIDOfRequest(r)})
	}
	return s
}

// IsBanked reports whether pickupID currently sits in the unassigned bank.
func (s *Solution) IsBanked(pickupID int) bool {
	for _, e := range s.Bank {
		if e.PickupID == pickupID {
			return true
		}
	}
	return false
}

// RemoveFromBank removes pickupID from the bank (used right before
// inserting it into a route). No-op if it isn't banked.
func (s *Solution) RemoveFromBank(pickupID int) {
	for i, e := range s.Bank {
		if e.PickupID == pickupID {
			s.Bank = append(s.Bank[:i], s.Bank[i+1:]...)
			return
		}
	}
}

// AddToBank puts pickupID (back) into the bank with a fresh penalty
// counter of zero.
func (s *Solution) AddToBank(pickupID int) {
	if s.IsBanked(pickupID) {
		return
	}
	s.Bank = append(s.Bank, BankEntry{PickupID: pickupID})
}

// BumpPenalty increments a banked request's penalty counter. No-op if
// pickupID is not banked.
func (s *Solution) BumpPenalty(pickupID int) {
	for i := range s.Bank {
		if s.Bank[i].PickupID == pickupID {
			s.Bank[i].PenaltyCount++
			return
		}
	}
}

// Insert routes pickupID/deliveryID between afterI and beforeJ in
// vehicleID's route, removing the request from the bank and clearing its
// empty-route flag.
func (s *Solution) Insert(vehicleID, afterI, pickupID, deliveryID, beforeJ int) {
	s.Routes.Insert(afterI, pickupID, deliveryID, beforeJ)
	s.RemoveFromBank(pickupID)
	s.emptyRoute[vehicleID] = s.Routes.IsEmpty(vehicleID)
}

// Remove unroutes pickupID, banking it and updating the empty-route flag
// for the vehicle it used to belong to.
func (s *Solution) Remove(pickupID int) {
	vehicleID := s.Routes.RouteOf[pickupID]
	s.Routes.RemoveRequest(pickupID)
	s.AddToBank(pickupID)
	if vehicleID >= 0 {
		s.emptyRoute[vehicleID] = s.Routes.IsEmpty(vehicleID)
	}
}

// LockNode freezes a node id so destroy operators will not remove the
// request it belongs to. Destroy operators test the lock on a request's
// pickup, so locking a delivery also locks its pickup.
func (s *Solution) LockNode(id int) {
	s.locked[id] = true
	if s.Instance.NodeType(id) == model.Delivery {
		s.locked[s.Instance.PickupOf(id)] = true
	}
}

// LockRequest freezes both the pickup and delivery of a request.
func (s *Solution) LockRequest(pickupID int) {
	s.locked[pickupID] = true
	s.locked[s.Instance.DeliveryOf(pickupID)] = true
}

// UnlockNode releases a previously locked node.
func (s *Solution) UnlockNode(id int) { s.locked[id] = false }

// IsLocked reports whether a node id is currently frozen.
func (s *Solution) IsLocked(id int) bool { return s.locked[id] }

// IterLocked returns every currently locked node id.
func (s *Solution) IterLocked() []int {
	var ids []int
	for id, l := range s.locked {
		if l {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsEmptyRoute reports whether vehicleID's route currently carries no
// requests (cached, not recomputed by walking).
func (s *Solution) IsEmptyRoute(vehicleID int) bool { return s.emptyRoute[vehicleID] }

// EmptyRouteIDs returns every vehicle id whose route is currently empty.
func (s *Solution) EmptyRouteIDs() []int {
	var ids []int
	for v, empty := range s.emptyRoute {
		if empty {
			ids = append(ids, v)
		}
	}
	return ids
}

// TotalDistance sums every route's Forward distance at its end depot.
func (s *Solution) TotalDistance() numeric.Num {
	total := numeric.Zero
	for v, vehicle := range s.Instance.Vehicles {
		if s.emptyRoute[v] {
			continue
		}
		total = total.Add(s.Routes.Forward[vehicle.EndDepotID()].Distance)
	}
	return total
}

// LatenessPenalty sums every route's accumulated soft-TW lateness, read
// from the forward aggregate at each route's end depot (spec.md §4.E).
func (s *Solution) LatenessPenalty() numeric.Num {
	if !s.SoftTW {
		return numeric.Zero
	}
	total := numeric.Zero
	for v, vehicle := range s.Instance.Vehicles {
		if s.emptyRoute[v] {
			continue
		}
		total = total.Add(s.Routes.Forward[vehicle.EndDepotID()].Lateness)
	}
	return total
}

// Objective is unassignedPenalty*len(bank) + total routed distance +
// lateness penalty (the last term zero unless SoftTW is enabled).
func (s *Solution) Objective() numeric.Num {
	penalty := s.unassignedPenalty.MulInt(len(s.Bank))
	return penalty.Add(s.TotalDistance()).Add(s.LatenessPenalty())
}

// Feasible reports whether every non-empty route currently satisfies
// capacity, time-window (hard mode) and shift-length constraints.
func (s *Solution) Feasible() bool {
	for v := range s.Instance.Vehicles {
		if s.emptyRoute[v] {
			continue
		}
		if !s.Routes.RouteFeasible(v) {
			return false
		}
	}
	return true
}

// Clone deep-copies the solution so a destroy/repair attempt can be rolled
// back by discarding the clone instead of undoing moves one at a time.
func (s *Solution) Clone() *Solution {
	c := &Solution{
		Instance:          s.Instance,
		SoftTW:            s.SoftTW,
		unassignedPenalty: s.unassignedPenalty,
		AssertionsEnabled: s.AssertionsEnabled,
	}
	c.Bank = append([]BankEntry(nil), s.Bank...)
	c.locked = append([]bool(nil), s.locked...)
	c.emptyRoute = append([]bool(nil), s.emptyRoute...)

	rs := *s.Routes
	rs.Succ = append([]int(nil), s.Routes.Succ...)
	rs.Pred = append([]int(nil), s.Routes.Pred...)
	rs.Forward = append([]refroute.Aggregate(nil), s.Routes.Forward...)
	rs.Backward = append([]refroute.Aggregate(nil), s.Routes.Backward...)
	rs.RouteOf = append([]int(nil), s.Routes.RouteOf...)
	c.Routes = &rs

	return c
}

// CheckInvariants recomputes every route's REF aggregates from scratch and
// compares them bit-for-bit against the cached values (spec.md §8
// property 2), only meant to be called when AssertionsEnabled is set —
// it is O(total route length) and never runs on the hot path otherwise.
func (s *Solution) CheckInvariants() error {
	if !s.AssertionsEnabled {
		return nil
	}
	fresh := refroute.New(s.Instance, s.SoftTW)
	for v := range s.Instance.Vehicles {
		if s.emptyRoute[v] {
			continue
		}
		fresh.SetRoute(v, s.Routes.IterRoute(v))
	}
	for id := range s.Instance.Nodes {
		if s.Routes.Forward[id] != fresh.Forward[id] {
			return fmt.Errorf("solution: node %d forward aggregate mismatch: cached %+v, recomputed %+v", id, s.Routes.Forward[id], fresh.Forward[id])
		}
		if s.Routes.Backward[id] != fresh.Backward[id] {
			return fmt.Errorf("solution: node %d backward aggregate mismatch: cached %+v, recomputed %+v", id, s.Routes.Backward[id], fresh.Backward[id])
		}
	}
	return nil
}
