package destroy

import (
	"math/rand"
	"testing"

	"github.com/pikasonix/pdptw/insertion"
	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/solution"
	"github.com/pikasonix/pdptw/travel"
)

func buildFullSolution(t *testing.T) *solution.Solution {
	t.Helper()
	b := model.NewBuilder("test")
	b.AddVehicle(10, numeric.FromInt(1000), 0, 0)
	wide := func(x float64, demand int, typ model.NodeType) model.Node {
		return model.Node{X: x, Y: 0, Demand: demand, Type: typ, Ready: numeric.Zero, Due: numeric.FromInt(1000)}
	}
	b.AddRequest(wide(1, 3, model.Pickup), wide(4, -3, model.Delivery))
	b.AddRequest(wide(2, 2, model.Pickup), wide(5, -2, model.Delivery))
	coords := [][2]float64{{0, 0}, {0, 0}, {1, 0}, {4, 0}, {2, 0}, {5, 0}}
	in := b.Build(travel.NewDenseFromCoords(coords))

	s := solution.New(in, false, numeric.FromInt(1000))
	rng := rand.New(rand.NewSource(7))
	for r := 0; r < in.NumRequests; r++ {
		p := in.PickupIDOfRequest(r)
		best := insertion.FindBestInsertionOverRoutes(s, p, []int{0}, 0, rng)
		if !best.Found {
			t.Fatalf("setup: expected feasible insertion for request %d", r)
		}
		insertion.Apply(s, best)
	}
	return s
}

func TestRandomRemovalBanksRequests(t *testing.T) {
	s := buildFullSolution(t)
	rng := rand.New(rand.NewSource(1))
	RandomRemoval{}.Apply(s, 1, rng)
	if len(s.Bank) != 1 {
		t.Fatalf("expected 1 banked request, got %d", len(s.Bank))
	}
}

func TestWorstRemovalBanksRequests(t *testing.T) {
	s := buildFullSolution(t)
	rng := rand.New(rand.NewSource(1))
	WorstRemoval{Alpha: 0.1}.Apply(s, 1, rng)
	if len(s.Bank) != 1 {
		t.Fatalf("expected 1 banked request, got %d", len(s.Bank))
	}
}

func TestRouteRemovalBanksWholeRoute(t *testing.T) {
	s := buildFullSolution(t)
	rng := rand.New(rand.NewSource(1))
	RouteRemoval{}.Apply(s, 2, rng)
	if len(s.Bank) != 2 {
		t.Fatalf("expected both requests banked, got %d", len(s.Bank))
	}
	if !s.IsEmptyRoute(0) {
		t.Fatalf("route should be empty after route removal")
	}
}

func TestLockedRequestSurvivesRemoval(t *testing.T) {
	s := buildFullSolution(t)
	p0 := s.Instance.PickupIDOfRequest(0)
	s.LockRequest(p0)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 5; i++ {
		RandomRemoval{}.Apply(s, 2, rng)
		for _, e := range s.Bank {
			if e.PickupID == p0 {
				t.Fatalf("locked request should never be banked")
			}
		}
		// reinsert whatever got removed so subsequent iterations have candidates
		for _, e := range append([]solution.BankEntry(nil), s.Bank...) {
			best := insertion.FindBestInsertionOverRoutes(s, e.PickupID, []int{0}, 0, rng)
			if best.Found {
				insertion.Apply(s, best)
			}
		}
	}
}

func TestAdjacentStringRemoval(t *testing.T) {
	s := buildFullSolution(t)
	rng := rand.New(rand.NewSource(5))
	AdjacentStringRemoval{Measure: EuclideanMeasure, MaxCardinality: 2}.Apply(s, 2, rng)
	if len(s.Bank) != 2 {
		t.Fatalf("expected both requests banked, got %d", len(s.Bank))
	}
}
