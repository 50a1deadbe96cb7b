package solution

import (
	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
)

// Description is a serializable snapshot of a Solution: each vehicle's
// visiting order (request/ghost node ids only, no depots) and the banked
// pickup ids. It is the shape persisted between a batch solve and a later
// dynamic re-optimization call, and the shape sintef/instanceio read and
// write.
type Description struct {
	Routes [][]int
	Bank   []int
}

// Describe snapshots the current solution.
func (s *Solution) Describe() Description {
	d := Description{Routes: make([][]int, s.Instance.NumVehicles())}
	for v := 0; v < s.Instance.NumVehicles(); v++ {
		d.Routes[v] = s.Routes.IterRoute(v)
	}
	for _, e := range s.Bank {
		d.Bank = append(d.Bank, e.PickupID)
	}
	return d
}

// FromDescription rebuilds a Solution from a prior snapshot against a
// (possibly extended, for dynamic re-optimization) instance.
func FromDescription(instance *model.Instance, desc Description, softTW bool, unassignedPenalty numeric.Num) *Solution {
	s := New(instance, softTW, unassignedPenalty)
	s.Bank = nil
	for v, nodeIDs := range desc.Routes {
		if len(nodeIDs) == 0 {
			continue
		}
		s.Routes.SetRoute(v, nodeIDs)
		s.emptyRoute[v] = false
	}
	for _, p := range desc.Bank {
		s.AddToBank(p)
	}
	return s
}
