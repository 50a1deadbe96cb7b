package model

import (
	"testing"

	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/travel"
)

func buildTinyInstance() *Instance {
	b := NewBuilder("tiny")
	b.AddVehicle(10, numeric.FromInt(1000), 0, 0)
	b.AddRequest(
		Node{Type: Pickup, X: 1, Y: 0, Demand: 5, Ready: numeric.Zero, Due: numeric.FromInt(100), Service: numeric.Zero},
		Node{Type: Delivery, X: 2, Y: 0, Demand: -5, Ready: numeric.Zero, Due: numeric.FromInt(100), Service: numeric.Zero},
	)
	coords := [][2]float64{{0, 0}, {0, 0}, {1, 0}, {2, 0}}
	return b.Build(travel.NewDenseFromCoords(coords))
}

func TestIDLayout(t *testing.T) {
	in := buildTinyInstance()
	if in.PickupIDOfRequest(0) != 2 {
		t.Fatalf("pickup id = %d, want 2", in.PickupIDOfRequest(0))
	}
	if in.DeliveryIDOfRequest(0) != 3 {
		t.Fatalf("delivery id = %d, want 3", in.DeliveryIDOfRequest(0))
	}
	if in.DeliveryOf(in.PickupIDOfRequest(0)) != in.DeliveryIDOfRequest(0) {
		t.Fatalf("delivery_id = pickup_id+1 invariant broken")
	}
}

func TestValidate(t *testing.T) {
	in := buildTinyInstance()
	if err := in.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestRequestIDOf(t *testing.T) {
	in := buildTinyInstance()
	if in.RequestIDOf(2) != 0 || in.RequestIDOf(3) != 0 {
		t.Fatalf("request id mapping wrong")
	}
}
