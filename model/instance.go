package model

import (
	"fmt"

	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/travel"
)

// Instance is the immutable PDPTW problem description: nodes, vehicles and
// the travel matrix that connects them. It is built once by an instanceio
// reader and never mutated afterward — matching the teacher's model.Route,
// which is likewise built once from JSON and only read thereafter.
type Instance struct {
	Name        string
	Nodes       []Node
	Vehicles    []Vehicle
	NumRequests int
	Matrix      travel.Matrix
}

// NumVehicles returns the number of vehicles in the fleet.
func (in *Instance) NumVehicles() int {
	return len(in.Vehicles)
}

// Node returns the node with the given id.
func (in *Instance) Node(id int) *Node {
	return &in.Nodes[id]
}

// NodeType returns the type of the node with the given id.
func (in *Instance) NodeType(id int) NodeType {
	return in.Nodes[id].Type
}

// IsRequest reports whether id belongs to a pickup or delivery node.
func (in *Instance) IsRequest(id int) bool {
	t := in.Nodes[id].Type
	return t == Pickup || t == Delivery
}

// PickupIDOfRequest returns the pickup node id for the given 0-indexed
// request, per the spec's fixed id layout:
// pickup = 2*numVehicles + 2*r, delivery = pickup + 1.
func (in *Instance) PickupIDOfRequest(r int) int {
	return 2*in.NumVehicles() + 2*r
}

// DeliveryIDOfRequest returns the delivery node id for the given request.
func (in *Instance) DeliveryIDOfRequest(r int) int {
	return in.PickupIDOfRequest(r) + 1
}

// RequestIDOf returns the 0-indexed request a pickup or delivery node
// belongs to.
func (in *Instance) RequestIDOf(nodeID int) int {
	return (nodeID - 2*in.NumVehicles()) / 2
}

// DeliveryOf returns the delivery node id paired with a pickup node id. The
// invariant delivery_id = pickup_id + 1 holds for every request, including
// dynamically admitted ones, so this is a plain +1 rather than a lookup.
func (in *Instance) DeliveryOf(pickupID int) int {
	return pickupID + 1
}

// PickupOf returns the pickup node id paired with a delivery node id.
func (in *Instance) PickupOf(deliveryID int) int {
	return deliveryID - 1
}

// VehicleOfStartDepot returns the vehicle owning the given start-depot node id.
func (in *Instance) VehicleOfStartDepot(vnID int) *Vehicle {
	return &in.Vehicles[vnID/2]
}

// VehicleFromVNID returns the vehicle owning either depot of a route,
// identified by any of its two depot node ids.
func (in *Instance) VehicleFromVNID(vnID int) *Vehicle {
	return &in.Vehicles[vnID/2]
}

// IterPickups returns the node ids of every request's pickup, in request order.
func (in *Instance) IterPickups() []int {
	ids := make([]int, 0, in.NumRequests)
	for r := 0; r < in.NumRequests; r++ {
		ids = append(ids, in.PickupIDOfRequest(r))
	}
	return ids
}

// Validate checks the basic structural invariants of a freshly loaded
// instance: node count matches 2*(vehicles+requests), and pickup/delivery
// ids line up as the layout promises.
func (in *Instance) Validate() error {
	want := 2 * (in.NumVehicles() + in.NumRequests)
	if len(in.Nodes) != want {
		return fmt.Errorf("model: instance has %d nodes, want %d (2*(vehicles+requests))", len(in.Nodes), want)
	}
	for r := 0; r < in.NumRequests; r++ {
		p := in.PickupIDOfRequest(r)
		d := in.DeliveryIDOfRequest(r)
		if in.Nodes[p].Type != Pickup {
			return fmt.Errorf("model: node %d expected Pickup for request %d, got %s", p, r, in.Nodes[p].Type)
		}
		if in.Nodes[d].Type != Delivery {
			return fmt.Errorf("model: node %d expected Delivery for request %d, got %s", d, r, in.Nodes[d].Type)
		}
	}
	for v, vehicle := range in.Vehicles {
		if in.Nodes[vehicle.StartDepotID()].Type != DepotStart {
			return fmt.Errorf("model: vehicle %d start depot node %d has wrong type", v, vehicle.StartDepotID())
		}
		if in.Nodes[vehicle.EndDepotID()].Type != DepotEnd {
			return fmt.Errorf("model: vehicle %d end depot node %d has wrong type", v, vehicle.EndDepotID())
		}
	}
	return nil
}

// Time is a convenience wrapper around Matrix.Time.
func (in *Instance) Time(from, to int) numeric.Num {
	return in.Matrix.Time(from, to)
}

// Distance is a convenience wrapper around Matrix.Distance.
func (in *Instance) Distance(from, to int) numeric.Num {
	return in.Matrix.Distance(from, to)
}

// Builder assembles an Instance incrementally, the way model.LoadFleetFromReader
// assembles a fleet from parsed config before handing back finished structs.
type Builder struct {
	name        string
	nodes       []Node
	vehicles    []Vehicle
	numRequests int
}

// NewBuilder starts a fresh instance builder.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// AddVehicle appends one vehicle (and its two depot nodes) to the instance
// under construction. Vehicles must be added before any request.
func (b *Builder) AddVehicle(capacity int, shiftLength numeric.Num, depotX, depotY float64) *Builder {
	id := len(b.vehicles)
	b.vehicles = append(b.vehicles, Vehicle{ID: id, Capacity: capacity, ShiftLength: shiftLength, DepotX: depotX, DepotY: depotY})
	return b
}

// AddRequest appends one pickup/delivery pair. Must be called after all
// vehicles have been added, so node ids line up with the spec's layout.
func (b *Builder) AddRequest(pickup, delivery Node) *Builder {
	b.numRequests++
	b.nodes = append(b.nodes, pickup, delivery)
	return b
}

// Build assembles the Instance: depot nodes first (two per vehicle, matching
// vehicle id order), then the request nodes appended via AddRequest, then
// attaches the given travel matrix. Both depot nodes get the vehicle's
// operating horizon as their time window (Ready=0, Due=ShiftLength) rather
// than the zero value, so refroute's backward aggregate seeds from a real
// due time instead of making every route infeasible by construction.
func (b *Builder) Build(matrix travel.Matrix) *Instance {
	nodes := make([]Node, 0, 2*len(b.vehicles)+len(b.nodes))
	for _, v := range b.vehicles {
		nodes = append(nodes,
			Node{ID: v.StartDepotID(), Type: DepotStart, X: v.DepotX, Y: v.DepotY, Ready: numeric.Zero, Due: v.ShiftLength},
			Node{ID: v.EndDepotID(), Type: DepotEnd, X: v.DepotX, Y: v.DepotY, Ready: numeric.Zero, Due: v.ShiftLength},
		)
	}
	base := 2 * len(b.vehicles)
	for i, n := range b.nodes {
		n.ID = base + i
		nodes = append(nodes, n)
	}
	return &Instance{Name: b.name, Nodes: nodes, Vehicles: b.vehicles, NumRequests: b.numRequests, Matrix: matrix}
}
