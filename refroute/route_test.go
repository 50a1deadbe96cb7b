package refroute

import (
	"testing"

	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/travel"
)

// buildInstance makes a 1-vehicle instance with 2 requests laid out on a
// line: depot(0) -- p0(1) -- p1(2) -- d0(3) -- d1(4) -- depot(5), with wide
// time windows so any ordering is feasible unless a test tightens them.
func buildInstance(t *testing.T, capacity int, shiftLength numeric.Num) *model.Instance {
	t.Helper()
	b := model.NewBuilder("test")
	b.AddVehicle(capacity, shiftLength, 0, 0)
	wide := func(x float64, demand int) model.Node {
		return model.Node{X: x, Y: 0, Demand: demand, Ready: numeric.Zero, Due: numeric.FromInt(1000), Service: numeric.Zero}
	}
	p0 := wide(1, 3)
	p0.Type = model.Pickup
	d0 := wide(4, -3)
	d0.Type = model.Delivery
	p1 := wide(2, 2)
	p1.Type = model.Pickup
	d1 := wide(5, -2)
	d1.Type = model.Delivery
	b.AddRequest(p0, d0)
	b.AddRequest(p1, d1)
	// Node id layout: 0=start depot, 1=end depot, 2=p0, 3=d0, 4=p1, 5=d1.
	coords := [][2]float64{{0, 0}, {0, 0}, {1, 0}, {4, 0}, {2, 0}, {5, 0}}
	return b.Build(travel.NewDenseFromCoords(coords))
}

func TestInsertAndRouteFeasible(t *testing.T) {
	in := buildInstance(t, 10, numeric.FromInt(1000))
	rs := New(in, false)
	v := 0
	start, end := in.Vehicles[v].StartDepotID(), in.Vehicles[v].EndDepotID()

	p0, d0 := in.PickupIDOfRequest(0), in.DeliveryIDOfRequest(0)
	res := rs.CheckInsertion(v, start, p0, d0, end)
	if !res.Feasible {
		t.Fatalf("expected feasible insertion, got %v", res)
	}
	rs.Insert(start, p0, d0, end)

	if rs.IsEmpty(v) {
		t.Fatalf("route should not be empty after insert")
	}
	if !rs.RouteFeasible(v) {
		t.Fatalf("route should be feasible after single insert")
	}
	order := rs.IterRoute(v)
	if len(order) != 2 || order[0] != p0 || order[1] != d0 {
		t.Fatalf("unexpected route order: %v", order)
	}
}

func TestInsertSecondRequestNonAdjacent(t *testing.T) {
	in := buildInstance(t, 10, numeric.FromInt(1000))
	rs := New(in, false)
	v := 0
	start, end := in.Vehicles[v].StartDepotID(), in.Vehicles[v].EndDepotID()
	p0, d0 := in.PickupIDOfRequest(0), in.DeliveryIDOfRequest(0)
	p1, d1 := in.PickupIDOfRequest(1), in.DeliveryIDOfRequest(1)

	rs.Insert(start, p0, d0, end)
	// Insert request 1 nested inside request 0's span: p1 after p0, d1 before d0.
	res := rs.CheckInsertion(v, p0, p1, d1, d0)
	if !res.Feasible {
		t.Fatalf("expected nested insertion feasible, got %v", res)
	}
	rs.Insert(p0, p1, d1, d0)

	order := rs.IterRoute(v)
	want := []int{p0, p1, d1, d0}
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("route order = %v, want %v", order, want)
		}
	}
	if !rs.RouteFeasible(v) {
		t.Fatalf("route should remain feasible after nested insert")
	}
}

func TestCapacityRejectsInsertion(t *testing.T) {
	in := buildInstance(t, 4, numeric.FromInt(1000)) // capacity smaller than p0+p1 combined load
	rs := New(in, false)
	v := 0
	start, end := in.Vehicles[v].StartDepotID(), in.Vehicles[v].EndDepotID()
	p0, d0 := in.PickupIDOfRequest(0), in.DeliveryIDOfRequest(0)
	p1, d1 := in.PickupIDOfRequest(1), in.DeliveryIDOfRequest(1)

	rs.Insert(start, p0, d0, end)
	res := rs.CheckInsertion(v, p0, p1, d1, d0)
	if res.Feasible {
		t.Fatalf("expected capacity violation to reject nested insertion, got %v", res)
	}
}

func TestRemoveRequestRestoresEmptiness(t *testing.T) {
	in := buildInstance(t, 10, numeric.FromInt(1000))
	rs := New(in, false)
	v := 0
	start, end := in.Vehicles[v].StartDepotID(), in.Vehicles[v].EndDepotID()
	p0, d0 := in.PickupIDOfRequest(0), in.DeliveryIDOfRequest(0)
	p1, d1 := in.PickupIDOfRequest(1), in.DeliveryIDOfRequest(1)

	rs.Insert(start, p0, d0, end)
	rs.Insert(p0, p1, d1, d0)

	rs.RemoveRequest(p1)
	order := rs.IterRoute(v)
	if len(order) != 2 || order[0] != p0 || order[1] != d0 {
		t.Fatalf("unexpected route after removing nested request: %v", order)
	}
	if rs.RouteOf[p1] != -1 || rs.RouteOf[d1] != -1 {
		t.Fatalf("removed request should be unrouted")
	}

	rs.RemoveRequest(p0)
	if !rs.IsEmpty(v) {
		t.Fatalf("route should be empty after removing remaining request")
	}
}

func TestHardTimeWindowRejectsLateArrival(t *testing.T) {
	in := buildInstance(t, 10, numeric.FromInt(1000))
	// Tighten delivery 0's due date so arriving after the detour is infeasible.
	in.Nodes[in.DeliveryIDOfRequest(0)].Due = numeric.FromInt(1)
	rs := New(in, false)
	v := 0
	start, end := in.Vehicles[v].StartDepotID(), in.Vehicles[v].EndDepotID()
	p0, d0 := in.PickupIDOfRequest(0), in.DeliveryIDOfRequest(0)

	res := rs.CheckInsertion(v, start, p0, d0, end)
	if res.Feasible {
		t.Fatalf("expected tight due date to reject insertion, got %v", res)
	}
}

func TestSoftTimeWindowAcceptsWithLateness(t *testing.T) {
	in := buildInstance(t, 10, numeric.FromInt(1000))
	in.Nodes[in.DeliveryIDOfRequest(0)].Due = numeric.FromInt(1)
	rs := New(in, true)
	v := 0
	start, end := in.Vehicles[v].StartDepotID(), in.Vehicles[v].EndDepotID()
	p0, d0 := in.PickupIDOfRequest(0), in.DeliveryIDOfRequest(0)

	res := rs.CheckInsertion(v, start, p0, d0, end)
	if !res.Feasible {
		t.Fatalf("soft-TW mode should accept late arrival with penalty, got %v", res)
	}
	if res.Lateness <= 0 {
		t.Fatalf("expected positive lateness, got %v", res.Lateness)
	}
}
