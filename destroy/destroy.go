// Package destroy implements the LNS "destroy" side: operators that pick a
// handful of routed requests and bank them, leaving room for repair
// operators to try a different assignment.
package destroy

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/solution"
)

// Operator is one destroy move: remove up to k unlocked requests from sol.
type Operator interface {
	Apply(sol *solution.Solution, k int, rng *rand.Rand)
}

// routedUnlocked returns the pickup ids of every currently routed,
// unlocked request.
func routedUnlocked(sol *solution.Solution) []int {
	var ids []int
	for r := 0; r < sol.Instance.NumRequests; r++ {
		p := sol.Instance.PickupIDOfRequest(r)
		if sol.IsBanked(p) || sol.IsLocked(p) {
			continue
		}
		ids = append(ids, p)
	}
	return ids
}

// RandomRemoval removes k random unlocked requests.
type RandomRemoval struct{}

func (RandomRemoval) Apply(sol *solution.Solution, k int, rng *rand.Rand) {
	candidates := routedUnlocked(sol)
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if k > len(candidates) {
		k = len(candidates)
	}
	for _, p := range candidates[:k] {
		sol.Remove(p)
	}
}

// WorstRemoval removes the k requests whose removal saves the most
// distance, randomized by Alpha: candidates are ranked worst-first, then
// one is drawn from a roulette biased toward the front of the ranking
// (alpha=0 is pure worst-first, larger alpha moves toward uniform random),
// matching Ropke & Pisinger's "worst removal" randomization.
type WorstRemoval struct {
	Alpha float64
}

func (w WorstRemoval) Apply(sol *solution.Solution, k int, rng *rand.Rand) {
	for i := 0; i < k; i++ {
		candidates := routedUnlocked(sol)
		if len(candidates) == 0 {
			return
		}
		type scored struct {
			pickupID int
			saving   int64
		}
		scores := make([]scored, 0, len(candidates))
		for _, p := range candidates {
			scores = append(scores, scored{pickupID: p, saving: int64(removalSaving(sol, p))})
		}
		sort.Slice(scores, func(a, b int) bool { return scores[a].saving > scores[b].saving })

		idx := 0
		if w.Alpha > 0 {
			idx = int(math.Pow(rng.Float64(), 1/w.Alpha) * float64(len(scores)))
		}
		if idx >= len(scores) {
			idx = len(scores) - 1
		}
		sol.Remove(scores[idx].pickupID)
	}
}

// removalSaving approximates how much routed distance would be saved by
// removing pickupID's request, using the arcs directly around pickup and
// delivery in their current route (cheap proxy for a full re-propagation).
func removalSaving(sol *solution.Solution, pickupID int) int {
	deliveryID := sol.Instance.DeliveryOf(pickupID)
	rs := sol.Routes
	predP, succP := rs.Pred[pickupID], rs.Succ[pickupID]
	predD, succD := rs.Pred[deliveryID], rs.Succ[deliveryID]

	var removed, added float64
	if succP == deliveryID {
		removed = sol.Instance.Distance(predP, pickupID).Value() +
			sol.Instance.Distance(pickupID, deliveryID).Value() +
			sol.Instance.Distance(deliveryID, succD).Value()
		added = sol.Instance.Distance(predP, succD).Value()
	} else {
		removed = sol.Instance.Distance(predP, pickupID).Value() +
			sol.Instance.Distance(pickupID, succP).Value() +
			sol.Instance.Distance(predD, deliveryID).Value() +
			sol.Instance.Distance(deliveryID, succD).Value()
		added = sol.Instance.Distance(predP, succP).Value() + sol.Instance.Distance(predD, succD).Value()
	}
	return int((removed - added) * 1000)
}

// RouteRemoval drops entire non-empty routes in random order, banking every
// unlocked request in them, until at least k requests have been banked or
// routes run out (k <= 0 removes nothing).
type RouteRemoval struct{}

func (RouteRemoval) Apply(sol *solution.Solution, k int, rng *rand.Rand) {
	var nonEmpty []int
	for v := 0; v < sol.Instance.NumVehicles(); v++ {
		if !sol.IsEmptyRoute(v) {
			nonEmpty = append(nonEmpty, v)
		}
	}
	rng.Shuffle(len(nonEmpty), func(i, j int) { nonEmpty[i], nonEmpty[j] = nonEmpty[j], nonEmpty[i] })

	banked := 0
	for _, v := range nonEmpty {
		if banked >= k {
			return
		}
		for _, pickupID := range requestsInRoute(sol, v) {
			if sol.IsLocked(pickupID) {
				continue
			}
			sol.Remove(pickupID)
			banked++
		}
	}
}

// requestsInRoute returns the pickup ids of every request currently routed
// in vehicleID's route.
func requestsInRoute(sol *solution.Solution, vehicleID int) []int {
	var ids []int
	for _, n := range sol.Routes.IterRoute(vehicleID) {
		if sol.Instance.NodeType(n) == model.Pickup {
			ids = append(ids, n)
		}
	}
	return ids
}
