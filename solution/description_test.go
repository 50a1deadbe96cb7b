package solution

import (
	"testing"

	"github.com/pikasonix/pdptw/numeric"
)

func TestDescribeAndFromDescriptionRoundTrip(t *testing.T) {
	in := buildInstance(t)
	s := New(in, false, numeric.FromInt(1000))
	v := 0
	start, end := in.Vehicles[v].StartDepotID(), in.Vehicles[v].EndDepotID()
	p, d := in.PickupIDOfRequest(0), in.DeliveryIDOfRequest(0)
	s.Insert(v, start, p, d, end)

	desc := s.Describe()
	if len(desc.Routes[0]) != 2 || desc.Routes[0][0] != p || desc.Routes[0][1] != d {
		t.Fatalf("unexpected route description: %v", desc.Routes[0])
	}

	rebuilt := FromDescription(in, desc, false, numeric.FromInt(1000))
	if rebuilt.IsEmptyRoute(0) {
		t.Fatalf("rebuilt solution should have vehicle 0 occupied")
	}
	if !rebuilt.Feasible() {
		t.Fatalf("rebuilt solution should be feasible")
	}
	if rebuilt.Objective() != s.Objective() {
		t.Fatalf("rebuilt objective %v should match original %v", rebuilt.Objective(), s.Objective())
	}
}
