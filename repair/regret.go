package repair

import (
	"math/rand"
	"sort"

	"github.com/pikasonix/pdptw/insertion"
	"github.com/pikasonix/pdptw/solution"
)

// RegretK repeatedly inserts the banked request whose regret — the cost gap
// between its best and K-th best route — is largest, so requests with few
// good options get placed before the good options are claimed by others.
type RegretK struct {
	K         int
	BlinkRate float64
}

func (r RegretK) Apply(sol *solution.Solution, rng *rand.Rand) {
	k := r.K
	if k < 2 {
		k = 2
	}
	for {
		bank := sol.Bank
		if len(bank) == 0 {
			return
		}
		routes := candidateRoutes(sol, true)
		if len(routes) == 0 {
			return
		}

		bestPickup := -1
		var bestRegret float64 = -1
		var bestInsertion insertion.BestInsertion

		for _, entry := range bank {
			costs := make([]float64, 0, len(routes))
			var perRouteBest []insertion.BestInsertion
			for _, v := range routes {
				b := insertion.FindBestInsertionForRequest(sol, entry.PickupID, v, r.BlinkRate, rng)
				if b.Found {
					costs = append(costs, b.Cost.Value())
					perRouteBest = append(perRouteBest, b)
				}
			}
			if len(costs) == 0 {
				continue
			}
			sort.Float64s(costs)
			sort.Slice(perRouteBest, func(i, j int) bool { return perRouteBest[i].Cost < perRouteBest[j].Cost })

			regret := 0.0
			if len(costs) >= k {
				regret = costs[k-1] - costs[0]
			} else {
				regret = costs[len(costs)-1] - costs[0]
			}
			if regret > bestRegret {
				bestRegret = regret
				bestPickup = entry.PickupID
				bestInsertion = perRouteBest[0]
			}
		}

		if bestPickup == -1 {
			return
		}
		insertion.Apply(sol, bestInsertion)
	}
}

// Sequential inserts banked requests greedily in ascending pickup-id order
// (i.e. original instance order), the simplest possible repair baseline.
type Sequential struct {
	BlinkRate float64
}

func (s Sequential) Apply(sol *solution.Solution, rng *rand.Rand) {
	for {
		bank := append([]solution.BankEntry(nil), sol.Bank...)
		if len(bank) == 0 {
			return
		}
		sort.Slice(bank, func(i, j int) bool { return bank[i].PickupID < bank[j].PickupID })

		progressed := false
		for _, entry := range bank {
			if !sol.IsBanked(entry.PickupID) {
				continue
			}
			routes := candidateRoutes(sol, true)
			best := insertion.FindBestInsertionOverRoutes(sol, entry.PickupID, routes, s.BlinkRate, rng)
			if best.Found {
				insertion.Apply(sol, best)
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}
