package instanceio

import (
	"strings"
	"testing"

	"github.com/pikasonix/pdptw/model"
)

const sampleLiLim = `2 200 1
0 40 50 0 0 1236 0 0 0
1 10 10 10 0 1000 10 0 2
2 20 20 -10 0 1000 10 1 0
3 30 30 5 0 1000 10 0 4
4 15 25 -5 0 1000 10 3 0
`

func TestLoadLiLimBuildsRequestsAndMatrix(t *testing.T) {
	in, err := LoadLiLim(strings.NewReader(sampleLiLim))
	if err != nil {
		t.Fatalf("LoadLiLim returned error: %v", err)
	}
	if in.NumVehicles() != 2 {
		t.Fatalf("expected 2 vehicles, got %d", in.NumVehicles())
	}
	if in.NumRequests != 2 {
		t.Fatalf("expected 2 requests, got %d", in.NumRequests)
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("built instance invalid: %v", err)
	}

	p0 := in.PickupIDOfRequest(0)
	d0 := in.DeliveryIDOfRequest(0)
	if in.NodeType(p0) != model.Pickup || in.NodeType(d0) != model.Delivery {
		t.Fatalf("expected request 0 to be pickup/delivery, got %s/%s", in.NodeType(p0), in.NodeType(d0))
	}
	if in.Node(p0).Demand != 10 || in.Node(d0).Demand != -10 {
		t.Fatalf("expected demand 10/-10, got %d/%d", in.Node(p0).Demand, in.Node(d0).Demand)
	}
}

func TestLoadLiLimRejectsMalformedHeader(t *testing.T) {
	if _, err := LoadLiLim(strings.NewReader("not a header\n")); err == nil {
		t.Fatalf("expected an error for a malformed header")
	}
}

func TestLoadLiLimRejectsDanglingSibling(t *testing.T) {
	bad := "1 200 1\n0 0 0 0 0 100 0 0 0\n1 1 1 3 0 100 1 0 9\n"
	if _, err := LoadLiLim(strings.NewReader(bad)); err == nil {
		t.Fatalf("expected an error for a pickup referencing a missing delivery")
	}
}
