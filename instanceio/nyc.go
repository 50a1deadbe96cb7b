package instanceio

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/travel"
)

// rawNYCNode mirrors one entry of the NYC JSON format's "nodes" array:
// {gid,x,y,demand,ready,due,service,type}, per spec.md §6.
type rawNYCNode struct {
	GID     int     `json:"gid"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Demand  int     `json:"demand"`
	Ready   float64 `json:"ready"`
	Due     float64 `json:"due"`
	Service float64 `json:"service"`
	Type    string  `json:"type"`
}

// rawNYCVehicle describes one fleet member: its capacity, max route
// duration, and depot coordinates.
type rawNYCVehicle struct {
	Capacity    int     `json:"capacity"`
	ShiftLength float64 `json:"shift_length"`
	DepotX      float64 `json:"depot_x"`
	DepotY      float64 `json:"depot_y"`
}

// rawNYCInstance is the top-level {name, vehicles, nodes, travel_matrix}
// document.
type rawNYCInstance struct {
	Name         string          `json:"name"`
	Vehicles     []rawNYCVehicle `json:"vehicles"`
	Nodes        []rawNYCNode    `json:"nodes"`
	TravelMatrix [][]float64     `json:"travel_matrix"`
}

// LoadNYCJSON parses the custom NYC JSON format (spec.md §6). The file is
// laid out exactly the way model.Instance itself lays nodes out: "nodes"
// holds 2*len(vehicles) depot entries (start/end pairs, one pair per
// vehicle in vehicle order) followed by 2*numRequests pickup/delivery
// entries (in request order); "gid" must equal the entry's position and
// is checked as a cross-validation field. "travel_matrix" is an NxN table
// of raw distances over that same ordering, consumed directly (distance
// and time are taken as numerically equal, matching travel.NewDenseFromCoords's
// convention elsewhere in this codebase) — grounded on model.LoadFleetFromReader's
// json.NewDecoder + raw-struct-then-build shape.
func LoadNYCJSON(r io.Reader) (*model.Instance, error) {
	var raw rawNYCInstance
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, &LoadError{Format: "NYC JSON", Err: fmt.Errorf("decode: %w", err)}
	}

	instance, err := buildFromNYC(raw)
	if err != nil {
		return nil, &LoadError{Format: "NYC JSON", Err: err}
	}
	return instance, nil
}

func buildFromNYC(raw rawNYCInstance) (*model.Instance, error) {
	if len(raw.Vehicles) == 0 {
		return nil, fmt.Errorf("no vehicles declared")
	}
	if len(raw.Nodes) < 2*len(raw.Vehicles) {
		return nil, fmt.Errorf("nodes array (%d) too short for %d vehicles' depots", len(raw.Nodes), len(raw.Vehicles))
	}
	numRequestNodes := len(raw.Nodes) - 2*len(raw.Vehicles)
	if numRequestNodes%2 != 0 {
		return nil, fmt.Errorf("request node count %d after depots is odd, expected pickup/delivery pairs", numRequestNodes)
	}

	for i, n := range raw.Nodes {
		if n.GID != i {
			return nil, fmt.Errorf("node %d has gid %d, want %d (nodes must be in final instance order)", i, n.GID, i)
		}
	}

	b := model.NewBuilder(raw.Name)
	for _, v := range raw.Vehicles {
		b.AddVehicle(v.Capacity, numeric.FromFloat64(v.ShiftLength), v.DepotX, v.DepotY)
	}

	reqNodes := raw.Nodes[2*len(raw.Vehicles):]
	for i := 0; i < len(reqNodes); i += 2 {
		pickupRaw, deliveryRaw := reqNodes[i], reqNodes[i+1]
		if !strings.EqualFold(pickupRaw.Type, "pickup") {
			return nil, fmt.Errorf("node %d: expected type pickup, got %q", pickupRaw.GID, pickupRaw.Type)
		}
		if !strings.EqualFold(deliveryRaw.Type, "delivery") {
			return nil, fmt.Errorf("node %d: expected type delivery, got %q", deliveryRaw.GID, deliveryRaw.Type)
		}
		b.AddRequest(nycNode(pickupRaw, model.Pickup), nycNode(deliveryRaw, model.Delivery))
	}

	matrix, err := buildNYCMatrix(raw.TravelMatrix, len(raw.Nodes))
	if err != nil {
		return nil, err
	}

	instance := b.Build(matrix)
	if err := instance.Validate(); err != nil {
		return nil, fmt.Errorf("built instance failed validation: %w", err)
	}
	return instance, nil
}

func nycNode(n rawNYCNode, typ model.NodeType) model.Node {
	return model.Node{
		OriginalID: n.GID,
		Type:       typ,
		X:          n.X,
		Y:          n.Y,
		Demand:     n.Demand,
		Ready:      numeric.FromFloat64(n.Ready),
		Due:        numeric.FromFloat64(n.Due),
		Service:    numeric.FromFloat64(n.Service),
	}
}

func buildNYCMatrix(raw [][]float64, n int) (travel.Matrix, error) {
	if len(raw) != n {
		return nil, fmt.Errorf("travel_matrix has %d rows, want %d", len(raw), n)
	}
	builder := travel.NewDenseBuilder(n)
	for i, row := range raw {
		if len(row) != n {
			return nil, fmt.Errorf("travel_matrix row %d has %d entries, want %d", i, len(row), n)
		}
		for j, v := range row {
			if i == j {
				continue
			}
			d := numeric.FromFloat64(v)
			builder.SetArc(i, j, d, d)
		}
	}
	return builder.Build(), nil
}
