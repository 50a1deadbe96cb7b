package repair

import (
	"math/rand"
	"testing"

	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/solution"
	"github.com/pikasonix/pdptw/travel"
)

func buildEmptySolution(t *testing.T, vehicles int) *solution.Solution {
	t.Helper()
	b := model.NewBuilder("test")
	for i := 0; i < vehicles; i++ {
		b.AddVehicle(10, numeric.FromInt(1000), 0, 0)
	}
	wide := func(x float64, demand int, typ model.NodeType) model.Node {
		return model.Node{X: x, Y: 0, Demand: demand, Type: typ, Ready: numeric.Zero, Due: numeric.FromInt(1000)}
	}
	b.AddRequest(wide(1, 3, model.Pickup), wide(4, -3, model.Delivery))
	b.AddRequest(wide(2, 2, model.Pickup), wide(5, -2, model.Delivery))
	b.AddRequest(wide(3, 1, model.Pickup), wide(6, -1, model.Delivery))

	n := 2*vehicles + 6
	coords := make([][2]float64, n)
	for i := 0; i < vehicles; i++ {
		coords[2*i] = [2]float64{0, 0}
		coords[2*i+1] = [2]float64{0, 0}
	}
	reqCoords := [][2]float64{{1, 0}, {4, 0}, {2, 0}, {5, 0}, {3, 0}, {6, 0}}
	for i, c := range reqCoords {
		coords[2*vehicles+i] = c
	}
	in := b.Build(travel.NewDenseFromCoords(coords))
	return solution.New(in, false, numeric.FromInt(1000))
}

func TestGreedyWithBlinksFillsBank(t *testing.T) {
	s := buildEmptySolution(t, 1)
	rng := rand.New(rand.NewSource(1))
	GreedyWithBlinks{Order: IncreasingTWStart, UseEmptyRoute: true}.Apply(s, rng)
	if len(s.Bank) != 0 {
		t.Fatalf("expected all requests inserted, %d remain", len(s.Bank))
	}
	if !s.Feasible() {
		t.Fatalf("resulting solution should be feasible")
	}
}

func TestSequentialFillsBank(t *testing.T) {
	s := buildEmptySolution(t, 3)
	rng := rand.New(rand.NewSource(1))
	Sequential{}.Apply(s, rng)
	if len(s.Bank) != 0 {
		t.Fatalf("expected all requests inserted, %d remain", len(s.Bank))
	}
}

func TestRegretKFillsBank(t *testing.T) {
	s := buildEmptySolution(t, 3)
	rng := rand.New(rand.NewSource(1))
	RegretK{K: 2}.Apply(s, rng)
	if len(s.Bank) != 0 {
		t.Fatalf("expected all requests inserted, %d remain", len(s.Bank))
	}
	if !s.Feasible() {
		t.Fatalf("resulting solution should be feasible")
	}
}
