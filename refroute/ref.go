// Package refroute implements the Resource-Extension-Function (REF) doubly
// linked route representation: successor/predecessor arrays plus forward and
// backward aggregates that let the insertion engine test feasibility and
// cost of a pickup-delivery insertion without rescanning the whole route.
//
// Forward[n] aggregates the segment from the route's start depot through n
// (inclusive); Backward[n] aggregates the segment from n through the route's
// end depot (inclusive). Both sides populate the same Aggregate shape, but
// each only computes the subset of fields meaningful in its own direction
// (Forward: EarliestStart/EarliestCompletion; Backward: LatestStart) — see
// DESIGN.md for why a single shared struct is used instead of two distinct
// ones, matching the original Rust REFData, which also reuses one struct for
// both directions.
package refroute

import (
	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
)

// Aggregate is one REF record: either a Forward (prefix) or Backward
// (suffix) summary of a contiguous route segment.
type Aggregate struct {
	Distance           numeric.Num
	EarliestStart      numeric.Num // forward only
	EarliestCompletion numeric.Num // forward only
	LatestStart        numeric.Num // backward only
	MaxLoad            int         // forward: absolute running max; backward: max of partial sums anchored at this node
	Load               int         // forward: absolute cumulative demand from route start; backward: net demand from this node to route end
	TWFeasible         bool
	Lateness           numeric.Num // forward only; read from Forward[vn_end] for the objective
	ViolationCount     int         // forward only
}

func baseForward(n model.Node) Aggregate {
	return Aggregate{
		EarliestStart:      n.Ready,
		EarliestCompletion: n.Ready.Add(n.Service),
		TWFeasible:         true,
	}
}

func baseBackward(n model.Node) Aggregate {
	return Aggregate{
		LatestStart: n.Due,
		TWFeasible:  true,
	}
}

// computeForward extends a Forward aggregate across one more node, given the
// arc leading into it.
func computeForward(prev Aggregate, arcDistance, arcTime numeric.Num, n model.Node, soft bool) Aggregate {
	arrival := prev.EarliestCompletion.Add(arcTime)
	earliestStart := n.Ready.Max(arrival)

	lateness := numeric.Zero
	violated := false
	if earliestStart > n.Due {
		lateness = earliestStart.Sub(n.Due)
		violated = true
	}

	feasibleHere := soft || !violated

	load := prev.Load + n.Demand
	maxLoad := prev.MaxLoad
	if load > maxLoad {
		maxLoad = load
	}

	violCount := prev.ViolationCount
	if violated {
		violCount++
	}

	return Aggregate{
		Distance:           prev.Distance.Add(arcDistance),
		EarliestStart:      earliestStart,
		EarliestCompletion: earliestStart.Add(n.Service),
		MaxLoad:            maxLoad,
		Load:               load,
		TWFeasible:         prev.TWFeasible && feasibleHere,
		Lateness:           prev.Lateness.Add(lateness),
		ViolationCount:     violCount,
	}
}

// computeBackward extends a Backward aggregate one node earlier, given the
// arc leading from that node into the already-computed successor segment.
func computeBackward(next Aggregate, arcDistance, arcTime numeric.Num, n model.Node, soft bool) Aggregate {
	latestStart := n.Due.Min(next.LatestStart.Sub(n.Service).Sub(arcTime))
	feasible := soft || latestStart >= n.Ready

	maxLoad := n.Demand
	if n.Demand+next.MaxLoad > maxLoad {
		maxLoad = n.Demand + next.MaxLoad
	}

	return Aggregate{
		Distance:    next.Distance.Add(arcDistance),
		LatestStart: latestStart,
		MaxLoad:     maxLoad,
		Load:        n.Demand + next.Load,
		TWFeasible:  next.TWFeasible && feasible,
	}
}
