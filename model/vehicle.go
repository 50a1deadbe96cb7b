package model

import "github.com/pikasonix/pdptw/numeric"

// Vehicle describes one member of the fleet. All vehicles are identical in
// the default instance, but the struct supports heterogeneous fleets.
type Vehicle struct {
	ID          int
	Capacity    int
	ShiftLength numeric.Num
	DepotX      float64
	DepotY      float64
}

// CheckCapacity reports whether maxLoad fits within the vehicle's capacity.
func (v Vehicle) CheckCapacity(maxLoad int) bool {
	return maxLoad <= v.Capacity
}

// StartDepotID returns the node id of the vehicle's start depot.
func (v Vehicle) StartDepotID() int {
	return 2 * v.ID
}

// EndDepotID returns the node id of the vehicle's end depot.
func (v Vehicle) EndDepotID() int {
	return 2*v.ID + 1
}
