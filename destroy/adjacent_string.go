package destroy

import (
	"math"
	"math/rand"

	"github.com/pikasonix/pdptw/solution"
)

// AdjacencyMeasure selects how "close" two requests are considered when
// growing a string for AdjacentStringRemoval.
type AdjacencyMeasure int

const (
	// EuclideanMeasure ranks by pickup-to-pickup Euclidean distance.
	EuclideanMeasure AdjacencyMeasure = iota
	// DetourMeasure ranks by pickup-to-pickup plus delivery-to-delivery
	// distance.
	DetourMeasure
	// TemporalOverlapMeasure ranks by how much the two requests' time
	// windows overlap (more overlap = more adjacent).
	TemporalOverlapMeasure
)

// AdjacentStringRemoval implements SISRs (Slack Induction by String
// Removals, Christiaens & Vanden Berghe 2020): pick a random seed request,
// then repeatedly pull in the most "adjacent" remaining routed request
// until MaxCardinality requests have been gathered or there's nothing left
// to add, and bank them all. Alpha/Beta are kept for parity with the
// published algorithm's string-length and route-count sampling; Apply does
// not read them, and the string length is bounded only by MaxCardinality
// and k.
type AdjacentStringRemoval struct {
	Measure        AdjacencyMeasure
	MaxCardinality int
	Alpha          float64
	Beta           float64
}

func (a AdjacentStringRemoval) Apply(sol *solution.Solution, k int, rng *rand.Rand) {
	maxCard := a.MaxCardinality
	if maxCard <= 0 {
		maxCard = k
	}

	removed := 0
	for removed < k {
		candidates := routedUnlocked(sol)
		if len(candidates) == 0 {
			return
		}
		seed := candidates[rng.Intn(len(candidates))]
		gathered := map[int]bool{seed: true}
		order := []int{seed}

		for len(gathered) < maxCard && len(gathered) < k-removed {
			rest := routedUnlocked(sol)
			best := -1
			bestScore := math.Inf(1)
			for _, cand := range rest {
				if gathered[cand] {
					continue
				}
				score := math.Inf(1)
				for _, g := range order {
					d := adjacencyScore(sol, a.Measure, g, cand)
					if d < score {
						score = d
					}
				}
				if score < bestScore {
					bestScore = score
					best = cand
				}
			}
			if best == -1 {
				break
			}
			gathered[best] = true
			order = append(order, best)
		}

		for p := range gathered {
			sol.Remove(p)
			removed++
		}
	}
}

func adjacencyScore(sol *solution.Solution, measure AdjacencyMeasure, a, b int) float64 {
	pa, pb := a, b
	da, db := sol.Instance.DeliveryOf(a), sol.Instance.DeliveryOf(b)
	switch measure {
	case DetourMeasure:
		return sol.Instance.Distance(pa, pb).Value() + sol.Instance.Distance(da, db).Value()
	case TemporalOverlapMeasure:
		na, nb := sol.Instance.Node(pa), sol.Instance.Node(pb)
		lo := na.Ready
		if nb.Ready > lo {
			lo = nb.Ready
		}
		hi := na.Due
		if nb.Due < hi {
			hi = nb.Due
		}
		overlap := hi.Sub(lo).Value()
		return -overlap
	default: // EuclideanMeasure
		na, nb := sol.Instance.Node(pa), sol.Instance.Node(pb)
		dx, dy := na.X-nb.X, na.Y-nb.Y
		return dx*dx + dy*dy
	}
}
