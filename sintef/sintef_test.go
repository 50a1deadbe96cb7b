package sintef

import (
	"strings"
	"testing"

	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/solution"
	"github.com/pikasonix/pdptw/travel"
)

func buildTestInstance(t *testing.T) *model.Instance {
	t.Helper()
	b := model.NewBuilder("test-instance")
	b.AddVehicle(10, numeric.FromInt(1000), 0, 0)
	b.AddVehicle(10, numeric.FromInt(1000), 0, 0)
	b.AddRequest(
		model.Node{OriginalID: 1, Type: model.Pickup, X: 1, Y: 0, Demand: 3, Ready: numeric.Zero, Due: numeric.FromInt(1000)},
		model.Node{OriginalID: 2, Type: model.Delivery, X: 2, Y: 0, Demand: -3, Ready: numeric.Zero, Due: numeric.FromInt(1000)},
	)
	b.AddRequest(
		model.Node{OriginalID: 3, Type: model.Pickup, X: 3, Y: 0, Demand: 2, Ready: numeric.Zero, Due: numeric.FromInt(1000)},
		model.Node{OriginalID: 4, Type: model.Delivery, X: 4, Y: 0, Demand: -2, Ready: numeric.Zero, Due: numeric.FromInt(1000)},
	)
	coords := [][2]float64{{0, 0}, {0, 0}, {0, 0}, {0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}
	in := b.Build(travel.NewDenseFromCoords(coords))
	if err := in.Validate(); err != nil {
		t.Fatalf("test instance invalid: %v", err)
	}
	return in
}

func TestWriteThenReadRoundTripsRoutes(t *testing.T) {
	in := buildTestInstance(t)
	p0, d0 := in.PickupIDOfRequest(0), in.DeliveryIDOfRequest(0)
	p1, d1 := in.PickupIDOfRequest(1), in.DeliveryIDOfRequest(1)
	desc := solution.Description{
		Routes: [][]int{
			{p0, d0},
			{p1, d1},
		},
	}

	var buf strings.Builder
	if err := Write(&buf, desc, in, Meta{InstanceName: "test-instance", Authors: "student"}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Route 1 : 1 2") {
		t.Fatalf("expected route 1 to list original ids 1 2, got:\n%s", out)
	}
	if !strings.Contains(out, "Route 2 : 3 4") {
		t.Fatalf("expected route 2 to list original ids 3 4, got:\n%s", out)
	}

	parsed, err := Read(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if parsed.Meta.InstanceName != "test-instance" {
		t.Fatalf("expected instance name round-trip, got %q", parsed.Meta.InstanceName)
	}
	if len(parsed.Routes) != 2 {
		t.Fatalf("expected 2 parsed routes, got %d", len(parsed.Routes))
	}

	back, err := ToDescription(parsed, in)
	if err != nil {
		t.Fatalf("ToDescription returned error: %v", err)
	}
	if len(back.Routes[0]) != 2 || back.Routes[0][0] != p0 || back.Routes[0][1] != d0 {
		t.Fatalf("expected route 0 to resolve to [%d %d], got %v", p0, d0, back.Routes[0])
	}
	if len(back.Bank) != 0 {
		t.Fatalf("expected no banked requests, got %v", back.Bank)
	}
}

func TestToDescriptionBanksUnvisitedRequests(t *testing.T) {
	in := buildTestInstance(t)
	parsed := Parsed{
		Routes: [][]int{
			{1, 2},
			{},
		},
	}
	desc, err := ToDescription(parsed, in)
	if err != nil {
		t.Fatalf("ToDescription returned error: %v", err)
	}
	if len(desc.Bank) != 1 || desc.Bank[0] != in.PickupIDOfRequest(1) {
		t.Fatalf("expected request 1's pickup banked, got %v", desc.Bank)
	}
}

func TestToDescriptionRejectsUnknownOriginalID(t *testing.T) {
	in := buildTestInstance(t)
	parsed := Parsed{Routes: [][]int{{99}}}
	if _, err := ToDescription(parsed, in); err == nil {
		t.Fatalf("expected an error for an unknown original id")
	}
}

func TestDefaultPathFollowsNamingConvention(t *testing.T) {
	path := DefaultPath("/out", "lc101", 2, 5, numeric.FromInt(1234), 42)
	want := "/out/lc101.2_5_1234.42.sol"
	if path != want {
		t.Fatalf("expected %q, got %q", want, path)
	}
}
