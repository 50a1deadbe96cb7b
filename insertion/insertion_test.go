package insertion

import (
	"math/rand"
	"testing"

	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/solution"
	"github.com/pikasonix/pdptw/travel"
)

func buildInstance(t *testing.T) *model.Instance {
	t.Helper()
	b := model.NewBuilder("test")
	b.AddVehicle(10, numeric.FromInt(1000), 0, 0)
	wide := func(x float64, demand int, typ model.NodeType) model.Node {
		return model.Node{X: x, Y: 0, Demand: demand, Type: typ, Ready: numeric.Zero, Due: numeric.FromInt(1000)}
	}
	b.AddRequest(wide(1, 3, model.Pickup), wide(4, -3, model.Delivery))
	b.AddRequest(wide(2, 2, model.Pickup), wide(5, -2, model.Delivery))
	coords := [][2]float64{{0, 0}, {0, 0}, {1, 0}, {4, 0}, {2, 0}, {5, 0}}
	return b.Build(travel.NewDenseFromCoords(coords))
}

func TestFindBestInsertionForRequestEmptyRoute(t *testing.T) {
	in := buildInstance(t)
	s := solution.New(in, false, numeric.FromInt(1000))
	p := in.PickupIDOfRequest(0)
	rng := rand.New(rand.NewSource(1))

	best := FindBestInsertionForRequest(s, p, 0, 0, rng)
	if !best.Found {
		t.Fatalf("expected a feasible insertion into the empty route")
	}
	Apply(s, best)
	if s.IsEmptyRoute(0) {
		t.Fatalf("route should no longer be empty after apply")
	}
	if len(s.Bank) != 1 {
		t.Fatalf("only the inserted request should leave the bank")
	}
}

func TestFindBestInsertionOverRoutesPrefersCheaper(t *testing.T) {
	in := buildInstance(t)
	s := solution.New(in, false, numeric.FromInt(1000))
	p0 := in.PickupIDOfRequest(0)
	rng := rand.New(rand.NewSource(1))

	first := FindBestInsertionForRequest(s, p0, 0, 0, rng)
	Apply(s, first)

	p1 := in.PickupIDOfRequest(1)
	best := FindBestInsertionOverRoutes(s, p1, []int{0}, 0, rng)
	if !best.Found {
		t.Fatalf("expected a feasible insertion for the second request")
	}
	Apply(s, best)
	if !s.Feasible() {
		t.Fatalf("solution should remain feasible after both inserts")
	}
	if len(s.Bank) != 0 {
		t.Fatalf("bank should be empty")
	}
}

func TestBlinkCanSkipAllCandidates(t *testing.T) {
	in := buildInstance(t)
	s := solution.New(in, false, numeric.FromInt(1000))
	p := in.PickupIDOfRequest(0)
	rng := rand.New(rand.NewSource(42))

	best := FindBestInsertionForRequest(s, p, 0, 1.0, rng)
	if best.Found {
		t.Fatalf("blink rate 1.0 should skip every candidate")
	}
}
