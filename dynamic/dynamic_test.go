package dynamic

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/pikasonix/pdptw/lns"
	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/solution"
	"github.com/pikasonix/pdptw/travel"
)

func buildBaseInstance(t *testing.T) *model.Instance {
	t.Helper()
	b := model.NewBuilder("dyn-test")
	b.AddVehicle(10, numeric.FromInt(10000), 0, 0)
	wide := func(x float64, demand int, typ model.NodeType) model.Node {
		return model.Node{X: x, Y: 0, Demand: demand, Type: typ, Ready: numeric.Zero, Due: numeric.FromInt(10000)}
	}
	b.AddRequest(wide(1, 3, model.Pickup), wide(2, -3, model.Delivery))
	coords := [][2]float64{{0, 0}, {0, 0}, {1, 0}, {2, 0}}
	return b.Build(travel.NewDenseFromCoords(coords))
}

func TestReoptimizeAdmitsNewRequestAndKeepsCommitted(t *testing.T) {
	in := buildBaseInstance(t)
	s := solution.New(in, false, numeric.FromInt(1000))
	v := 0
	start, end := in.Vehicles[v].StartDepotID(), in.Vehicles[v].EndDepotID()
	p, d := in.PickupIDOfRequest(0), in.DeliveryIDOfRequest(0)
	s.Insert(v, start, p, d, end)
	desc := s.Describe()

	states := []VehicleState{
		{VehicleID: 0, CurrentPosition: [2]float64{0, 0}, CurrentTime: numeric.Zero, CommittedRequests: []int{p}},
	}
	newRequests := []NewRequestSpec{
		{
			RequestID:     1,
			PickupCoords:  [2]float64{3, 0},
			DeliveryCoords: [2]float64{4, 0},
			PickupTW:      [2]numeric.Num{numeric.Zero, numeric.FromInt(10000)},
			DeliveryTW:    [2]numeric.Num{numeric.Zero, numeric.FromInt(10000)},
			Demand:        2,
		},
	}
	cfg := ReoptimizeConfig{UnassignedPenalty: numeric.FromInt(1000), LockCommitted: true}
	args := lns.RunArgs{Iterations: 50, TimeLimit: time.Second, DestroyMinFrac: 0.3, DestroyMaxFrac: 0.5}
	rng := rand.New(rand.NewSource(1))

	res, err := Reoptimize(context.Background(), in, desc, states, newRequests, cfg, args, rng)
	if err != nil {
		t.Fatalf("Reoptimize returned error: %v", err)
	}
	if res.RunID == "" {
		t.Fatalf("expected a non-empty run id")
	}
	if len(res.Solution.Routes) != 1 {
		t.Fatalf("expected 1 vehicle route in result, got %d", len(res.Solution.Routes))
	}

	found := false
	for _, n := range res.Solution.Routes[0] {
		if n == p {
			found = true
		}
	}
	if !found {
		t.Fatalf("committed pickup %d should still be on the route: %v", p, res.Solution.Routes[0])
	}
}

func TestReoptimizeRespectsCancelledContext(t *testing.T) {
	in := buildBaseInstance(t)
	s := solution.New(in, false, numeric.FromInt(1000))
	desc := s.Describe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := ReoptimizeConfig{UnassignedPenalty: numeric.FromInt(1000)}
	args := lns.RunArgs{Iterations: 10}
	rng := rand.New(rand.NewSource(2))

	_, err := Reoptimize(ctx, in, desc, nil, nil, cfg, args, rng)
	if err == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
}

func TestClampDurationCapsToMaximum(t *testing.T) {
	if got := clampDuration(time.Hour, maxReoptimizeTime); got != maxReoptimizeTime {
		t.Fatalf("expected clampDuration to cap at %v, got %v", maxReoptimizeTime, got)
	}
	if got := clampDuration(time.Second, maxReoptimizeTime); got != time.Second {
		t.Fatalf("expected clampDuration to pass through a smaller value, got %v", got)
	}
	if got := clampDuration(0, maxReoptimizeTime); got != maxReoptimizeTime {
		t.Fatalf("expected clampDuration(0, ...) to default to the maximum, got %v", got)
	}
}

func TestLoadReoptimizeInputsRunsConcurrently(t *testing.T) {
	wantStates := []VehicleState{{VehicleID: 0}}
	wantRequests := []NewRequestSpec{{RequestID: 1}}

	states, requests, err := LoadReoptimizeInputs(context.Background(),
		func(context.Context) ([]VehicleState, error) { return wantStates, nil },
		func(context.Context) ([]NewRequestSpec, error) { return wantRequests, nil },
	)
	if err != nil {
		t.Fatalf("LoadReoptimizeInputs returned error: %v", err)
	}
	if len(states) != 1 || len(requests) != 1 {
		t.Fatalf("expected 1 state and 1 request, got %d/%d", len(states), len(requests))
	}
}
