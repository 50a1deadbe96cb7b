// Package model holds the immutable PDPTW problem description: nodes,
// vehicles, requests and the instance that ties them together. It plays the
// role the teacher's model package plays for bus/stop/passenger/route, with
// the same struct-and-small-method style.
package model

import "github.com/pikasonix/pdptw/numeric"

// NodeType classifies a node within the instance's node array.
type NodeType int

const (
	// DepotStart is a vehicle's route-start depot node.
	DepotStart NodeType = iota
	// DepotEnd is a vehicle's route-end depot node.
	DepotEnd
	// Pickup is a request's pickup node.
	Pickup
	// Delivery is a request's delivery node.
	Delivery
	// Ghost is a virtual pickup standing in for cargo already aboard a
	// vehicle during dynamic re-optimization (spec.md §4.L).
	Ghost
)

func (t NodeType) String() string {
	switch t {
	case DepotStart:
		return "DepotStart"
	case DepotEnd:
		return "DepotEnd"
	case Pickup:
		return "Pickup"
	case Delivery:
		return "Delivery"
	case Ghost:
		return "Ghost"
	default:
		return "Unknown"
	}
}

// Node is a single point the routes pass through: a depot, a pickup, a
// delivery or (in dynamic mode) a ghost pickup / virtual start.
type Node struct {
	ID         int
	OriginalID int
	Type       NodeType
	X, Y       float64
	Demand     int
	Ready      numeric.Num
	Due        numeric.Num
	Service    numeric.Num
}

// IsDepot reports whether n is a route's start or end depot.
func (n Node) IsDepot() bool {
	return n.Type == DepotStart || n.Type == DepotEnd
}

// IsRequestNode reports whether n is a pickup or delivery (not a depot or ghost).
func (n Node) IsRequestNode() bool {
	return n.Type == Pickup || n.Type == Delivery
}
