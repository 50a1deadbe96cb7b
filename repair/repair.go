// Package repair implements the LNS "repair" side: operators that take the
// requests destroy left in the bank and reinsert them into routes.
package repair

import (
	"math/rand"
	"sort"

	"github.com/pikasonix/pdptw/insertion"
	"github.com/pikasonix/pdptw/solution"
)

// Operator is one repair move: reinsert every banked request it can.
type Operator interface {
	Apply(sol *solution.Solution, rng *rand.Rand)
}

// SortOrder controls the order GreedyWithBlinks processes banked requests
// in. The seven values mirror the seven repair_order_weights ints of
// spec.md §4.K.
type SortOrder int

const (
	Random SortOrder = iota
	DecreasingDemand
	FarFromCentre
	CloseToCentre
	IncreasingTWLength
	IncreasingTWStart
	DecreasingTWEnd
)

// candidateRoutes returns every non-empty route id, plus (if useEmptyRoute
// and one exists) exactly one empty route as a fallback.
func candidateRoutes(sol *solution.Solution, useEmptyRoute bool) []int {
	var ids []int
	firstEmpty := -1
	for v := 0; v < sol.Instance.NumVehicles(); v++ {
		if sol.IsEmptyRoute(v) {
			if firstEmpty == -1 {
				firstEmpty = v
			}
			continue
		}
		ids = append(ids, v)
	}
	if useEmptyRoute && firstEmpty != -1 {
		ids = append(ids, firstEmpty)
	}
	return ids
}

// GreedyWithBlinks sorts the bank by Order, then inserts each request at
// its cheapest feasible position across every used route (plus one empty
// route when UseEmptyRoute holds and no feasible slot exists otherwise).
type GreedyWithBlinks struct {
	BlinkRate     float64
	Order         SortOrder
	UseEmptyRoute bool
}

func (g GreedyWithBlinks) Apply(sol *solution.Solution, rng *rand.Rand) {
	for {
		bank := append([]solution.BankEntry(nil), sol.Bank...)
		if len(bank) == 0 {
			return
		}
		sortBank(sol, bank, g.Order, rng)

		inserted := false
		for _, entry := range bank {
			if !sol.IsBanked(entry.PickupID) {
				continue // already reinserted earlier in this pass
			}
			routes := candidateRoutes(sol, false)
			best := insertion.FindBestInsertionOverRoutes(sol, entry.PickupID, routes, g.BlinkRate, rng)
			if !best.Found && g.UseEmptyRoute {
				if empty := sol.EmptyRouteIDs(); len(empty) > 0 {
					best = insertion.FindBestInsertionOverRoutes(sol, entry.PickupID, empty[:1], g.BlinkRate, rng)
				}
			}
			if best.Found {
				insertion.Apply(sol, best)
				inserted = true
			}
		}
		if !inserted {
			return
		}
	}
}

func sortBank(sol *solution.Solution, bank []solution.BankEntry, order SortOrder, rng *rand.Rand) {
	centerX, centerY := routeCentroid(sol)
	less := func(i, j int) bool {
		ni := sol.Instance.Node(bank[i].PickupID)
		nj := sol.Instance.Node(bank[j].PickupID)
		switch order {
		case DecreasingDemand:
			return ni.Demand > nj.Demand
		case FarFromCentre:
			return sqDist(ni.X, ni.Y, centerX, centerY) > sqDist(nj.X, nj.Y, centerX, centerY)
		case CloseToCentre:
			return sqDist(ni.X, ni.Y, centerX, centerY) < sqDist(nj.X, nj.Y, centerX, centerY)
		case IncreasingTWLength:
			return ni.Due.Sub(ni.Ready) < nj.Due.Sub(nj.Ready)
		case IncreasingTWStart:
			return ni.Ready < nj.Ready
		case DecreasingTWEnd:
			return ni.Due > nj.Due
		default: // Random
			return false
		}
	}
	if order == Random {
		rng.Shuffle(len(bank), func(i, j int) { bank[i], bank[j] = bank[j], bank[i] })
		return
	}
	sort.SliceStable(bank, less)
}

func sqDist(x1, y1, x2, y2 float64) float64 {
	dx, dy := x1-x2, y1-y2
	return dx*dx + dy*dy
}

func routeCentroid(sol *solution.Solution) (float64, float64) {
	var sumX, sumY float64
	n := 0
	for _, node := range sol.Instance.Nodes {
		sumX += node.X
		sumY += node.Y
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sumX / float64(n), sumY / float64(n)
}
