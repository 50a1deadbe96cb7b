package ages

import (
	"math/rand"
	"testing"

	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/repair"
	"github.com/pikasonix/pdptw/solution"
	"github.com/pikasonix/pdptw/travel"
)

func buildTwoVehicleSolution(t *testing.T) *solution.Solution {
	t.Helper()
	b := model.NewBuilder("test")
	b.AddVehicle(10, numeric.FromInt(1000), 0, 0)
	b.AddVehicle(10, numeric.FromInt(1000), 0, 0)
	wide := func(x float64, demand int, typ model.NodeType) model.Node {
		return model.Node{X: x, Y: 0, Demand: demand, Type: typ, Ready: numeric.Zero, Due: numeric.FromInt(1000)}
	}
	b.AddRequest(wide(1, 3, model.Pickup), wide(4, -3, model.Delivery))
	b.AddRequest(wide(2, 2, model.Pickup), wide(5, -2, model.Delivery))
	coords := [][2]float64{{0, 0}, {0, 0}, {0, 0}, {0, 0}, {1, 0}, {4, 0}, {2, 0}, {5, 0}}
	in := b.Build(travel.NewDenseFromCoords(coords))
	s := solution.New(in, false, numeric.FromInt(5000))
	rng := rand.New(rand.NewSource(1))
	// Force both requests onto vehicle 0 first, then give AGES a second,
	// genuinely empty vehicle to drop.
	repair.Sequential{}.Apply(s, rng)
	return s
}

func TestTryDropAlreadyEmptyVehicleSucceeds(t *testing.T) {
	s := buildTwoVehicleSolution(t)
	search := &Search{Params: DefaultParameters(), Rng: rand.New(rand.NewSource(1))}
	if !search.TryDropVehicle(s, 1) {
		t.Fatalf("dropping an already-empty vehicle should trivially succeed")
	}
}

func TestTryDropVehicleReinsertsEverywhereElse(t *testing.T) {
	s := buildTwoVehicleSolution(t)
	search := &Search{Params: DefaultParameters(), Rng: rand.New(rand.NewSource(1))}

	var occupied int
	for v := 0; v < s.Instance.NumVehicles(); v++ {
		if !s.IsEmptyRoute(v) {
			occupied = v
			break
		}
	}

	ok := search.TryDropVehicle(s, occupied)
	if ok && !s.Feasible() {
		t.Fatalf("solution should remain feasible whether or not the drop succeeded")
	}
	if len(s.Bank) > s.Instance.NumRequests {
		t.Fatalf("bank should never exceed total request count")
	}
}
