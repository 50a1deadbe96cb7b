// Package insertion finds the cheapest feasible position(s) for a banked
// request across one or more routes, with the "blink" mechanism (a
// stochastic Bernoulli skip) used by greedy repair operators to avoid
// always converging on the same local optimum.
package insertion

import (
	"math/rand"

	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/solution"
)

// Insertion names where a request would be spliced: pickup after AfterI,
// delivery before BeforeJ, both in VehicleID's route.
type Insertion struct {
	VehicleID  int
	PickupID   int
	DeliveryID int
	AfterI     int
	BeforeJ    int
}

// BestInsertion tracks the cheapest feasible Insertion seen so far, mirroring
// solution::BestInsertion::replace_if_better from the original solver.
type BestInsertion struct {
	Found     bool
	Insertion Insertion
	Cost      numeric.Num
	Lateness  numeric.Num
}

// ReplaceIfBetter keeps whichever of the two candidates is cheaper, ties
// broken by the existing occupant (first-found wins on exact ties, matching
// the deterministic "smaller i then smaller j" enumeration order callers
// use).
func (b *BestInsertion) ReplaceIfBetter(ins Insertion, cost, lateness numeric.Num) {
	if !b.Found || cost < b.Cost {
		b.Found = true
		b.Insertion = ins
		b.Cost = cost
		b.Lateness = lateness
	}
}

// FindBestInsertionForRequest enumerates every feasible (i, j) position for
// pickupID within a single route, Bernoulli-skipping each candidate with
// probability blinkRate before evaluating it.
func FindBestInsertionForRequest(sol *solution.Solution, pickupID, vehicleID int, blinkRate float64, rng *rand.Rand) BestInsertion {
	var best BestInsertion
	deliveryID := sol.Instance.DeliveryOf(pickupID)
	order := sol.Routes.IterRouteWithDepots(vehicleID)

	for iPos := 0; iPos < len(order)-1; iPos++ {
		afterI := order[iPos]
		for jPos := iPos + 1; jPos < len(order); jPos++ {
			beforeJ := order[jPos]
			if blinkRate > 0 && rng.Float64() < blinkRate {
				continue
			}
			res := sol.Routes.CheckInsertion(vehicleID, afterI, pickupID, deliveryID, beforeJ)
			if !res.Feasible {
				continue
			}
			best.ReplaceIfBetter(Insertion{
				VehicleID:  vehicleID,
				PickupID:   pickupID,
				DeliveryID: deliveryID,
				AfterI:     afterI,
				BeforeJ:    beforeJ,
			}, res.DeltaDistance, res.Lateness)
		}
	}
	return best
}

// FindBestInsertionOverRoutes aggregates FindBestInsertionForRequest over a
// caller-supplied subset of routes (typically every non-empty route, plus
// one empty route as a fallback).
func FindBestInsertionOverRoutes(sol *solution.Solution, pickupID int, vehicleIDs []int, blinkRate float64, rng *rand.Rand) BestInsertion {
	var best BestInsertion
	for _, v := range vehicleIDs {
		candidate := FindBestInsertionForRequest(sol, pickupID, v, blinkRate, rng)
		if candidate.Found {
			best.ReplaceIfBetter(candidate.Insertion, candidate.Cost, candidate.Lateness)
		}
	}
	return best
}

// Apply commits a BestInsertion to the solution.
func Apply(sol *solution.Solution, b BestInsertion) {
	ins := b.Insertion
	sol.Insert(ins.VehicleID, ins.AfterI, ins.PickupID, ins.DeliveryID, ins.BeforeJ)
}
