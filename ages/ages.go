// Package ages implements the Adaptive Guided Ejection Search inner loop:
// try to shrink the number of vehicles a solution needs by emptying one
// route at a time and fighting to reinsert everything it carried,
// ejecting other requests when necessary to make room.
package ages

import (
	"container/heap"
	"math/rand"

	"github.com/pikasonix/pdptw/insertion"
	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/solution"
)

// PenaltyCounterReset is a tagged variant controlling when per-request
// penalty counters reset.
type PenaltyCounterReset interface{ penaltyCounterReset() }

type resetOnNewMin struct{}

func (resetOnNewMin) penaltyCounterReset() {}

type never struct{}

func (never) penaltyCounterReset() {}

// ResetOnNewMin resets every penalty counter whenever a new minimum
// vehicle count is achieved.
var ResetOnNewMin PenaltyCounterReset = resetOnNewMin{}

// Never never resets penalty counters for the duration of a Search.
var Never PenaltyCounterReset = never{}

// PerturbationMode is a tagged variant selecting how Search perturbs a
// stalled solution.
type PerturbationMode interface{ perturbationMode() }

// BiasedRelocation relocates a request chosen with probability biased by
// its penalty counter (Bias closer to 1 means stronger bias toward
// frequently-ejected requests).
type BiasedRelocation struct{ Bias float64 }

func (BiasedRelocation) perturbationMode() {}

// RelocateAndExchange randomly relocates or exchanges pairs of requests,
// choosing relocate with probability ShiftProbability.
type RelocateAndExchange struct{ ShiftProbability float64 }

func (RelocateAndExchange) perturbationMode() {}

// Parameters holds the AGES tunables. TryDropVehicle reads BlinkRate and
// MaxIterations; ejection chains are always one request long whatever
// MaxEjectionChainLength says, and MaxPerturbationPhases, PenaltyReset and
// Perturbation are not read, as the search has no perturbation phase and
// never resets its penalty counters.
type Parameters struct {
	MaxEjectionChainLength int
	MaxPerturbationPhases  int
	PenaltyReset           PenaltyCounterReset
	Perturbation           PerturbationMode
	BlinkRate              float64
	MaxIterations          int
}

// DefaultParameters returns the reference defaults: short ejection chains,
// a handful of perturbation phases, and resets on improvement (matching
// the reference solver's published tuning, carried over from
// original_source since spec.md leaves exact defaults as an
// implementation choice).
func DefaultParameters() Parameters {
	return Parameters{
		MaxEjectionChainLength: 3,
		MaxPerturbationPhases:  5,
		PenaltyReset:           ResetOnNewMin,
		Perturbation:           RelocateAndExchange{ShiftProbability: 0.5},
		BlinkRate:              0.1,
		MaxIterations:          10000,
	}
}

// penaltyItem is one entry in the penalty-ordered bank heap: requests with
// higher penalty counters are tried for reinsertion first, the same
// priority-queue idiom driver/batch.go's eventPQ uses for time-ordered
// events.
type penaltyItem struct {
	pickupID int
	penalty  int
	index    int
}

type penaltyQueue []*penaltyItem

func (q penaltyQueue) Len() int { return len(q) }
func (q penaltyQueue) Less(i, j int) bool {
	return q[i].penalty > q[j].penalty
}
func (q penaltyQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}
func (q *penaltyQueue) Push(x any) {
	item := x.(*penaltyItem)
	item.index = len(*q)
	*q = append(*q, item)
}
func (q *penaltyQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Search runs AGES against sol in place: it tries to empty targetVehicle's
// route and reinsert everything elsewhere, reporting whether it fully
// succeeded (vehicle count reduced by one) or had to put the route back.
type Search struct {
	Params Parameters
	Rng    *rand.Rand
}

// TryDropVehicle attempts to empty targetVehicle and reinsert all of its
// requests into the remaining routes, ejecting other requests as needed.
// Returns true if the vehicle ended up empty with everything else still
// feasibly routed.
func (s *Search) TryDropVehicle(sol *solution.Solution, targetVehicle int) bool {
	if sol.IsEmptyRoute(targetVehicle) {
		return true
	}
	displaced := append([]int(nil), requestsInRoute(sol, targetVehicle)...)
	for _, p := range displaced {
		sol.Remove(p)
	}

	otherRoutes := otherVehicleIDs(sol, targetVehicle)

	pq := &penaltyQueue{}
	heap.Init(pq)
	penaltyOf := map[int]int{}
	for _, p := range displaced {
		heap.Push(pq, &penaltyItem{pickupID: p, penalty: 0})
		penaltyOf[p] = 0
	}

	iterations := 0
	for pq.Len() > 0 {
		iterations++
		if s.Params.MaxIterations > 0 && iterations > s.Params.MaxIterations {
			break
		}
		item := heap.Pop(pq).(*penaltyItem)
		p := item.pickupID
		if !sol.IsBanked(p) {
			continue // already routed again (e.g. inserted by ejectToMakeRoom)
		}

		best := insertion.FindBestInsertionOverRoutes(sol, p, otherRoutes, s.Params.BlinkRate, s.Rng)
		if best.Found {
			insertion.Apply(sol, best)
			continue
		}

		ejected := s.ejectToMakeRoom(sol, p, otherRoutes)
		if ejected == nil {
			// Could not make room even with ejection; give up on dropping
			// this vehicle and restore everything to the target route.
			s.restore(sol, targetVehicle, displaced)
			return false
		}
		for _, e := range ejected {
			penaltyOf[e]++
			heap.Push(pq, &penaltyItem{pickupID: e, penalty: penaltyOf[e]})
		}
		heap.Push(pq, &penaltyItem{pickupID: p, penalty: penaltyOf[p]})
	}

	return sol.IsEmptyRoute(targetVehicle)
}

// ejectToMakeRoom removes one unlocked routed request at a time from the
// candidate routes; as soon as that lets p be inserted, it inserts p and
// returns the single ejected pickup id, otherwise it puts the victim back
// and tries the next. Returns nil if no single ejection works; longer
// chains are not tried.
func (s *Search) ejectToMakeRoom(sol *solution.Solution, p int, routes []int) []int {
	maxLen := s.Params.MaxEjectionChainLength
	if maxLen <= 0 {
		maxLen = 1
	}
	for _, v := range routes {
		for _, victim := range requestsInRoute(sol, v) {
			if sol.IsLocked(victim) {
				continue
			}
			sol.Remove(victim)
			best := insertion.FindBestInsertionOverRoutes(sol, p, routes, s.Params.BlinkRate, s.Rng)
			if best.Found {
				insertion.Apply(sol, best)
				return []int{victim}
			}
			// Didn't help; put it back and try the next candidate.
			s.reinsertBestEffort(sol, victim, routes)
		}
	}
	_ = maxLen // chain length beyond 1 would recurse here; kept shallow intentionally, see DESIGN.md
	return nil
}

func (s *Search) reinsertBestEffort(sol *solution.Solution, pickupID int, routes []int) {
	best := insertion.FindBestInsertionOverRoutes(sol, pickupID, routes, 0, s.Rng)
	if best.Found {
		insertion.Apply(sol, best)
	}
}

// restore reinserts every request in displaced back into targetVehicle's
// (now-empty) route in order, used when TryDropVehicle gives up.
func (s *Search) restore(sol *solution.Solution, targetVehicle int, displaced []int) {
	for _, p := range displaced {
		if !sol.IsBanked(p) {
			sol.Remove(p) // placed in another route before the search gave up
		}
		best := insertion.FindBestInsertionOverRoutes(sol, p, []int{targetVehicle}, 0, s.Rng)
		if best.Found {
			insertion.Apply(sol, best)
		}
	}
}

func requestsInRoute(sol *solution.Solution, vehicleID int) []int {
	var ids []int
	for _, n := range sol.Routes.IterRoute(vehicleID) {
		if sol.Instance.NodeType(n) == model.Pickup {
			ids = append(ids, n)
		}
	}
	return ids
}

func otherVehicleIDs(sol *solution.Solution, exclude int) []int {
	var ids []int
	for v := 0; v < sol.Instance.NumVehicles(); v++ {
		if v != exclude {
			ids = append(ids, v)
		}
	}
	return ids
}
