package travel

import (
	"math"

	"github.com/pikasonix/pdptw/numeric"
)

// VirtualNode is an extra node (virtual vehicle start, or ghost pickup)
// appended to a Dynamic overlay at a coordinate outside the base instance's
// original node range.
type VirtualNode struct {
	ID   int
	X, Y float64
}

// Dynamic wraps a base Matrix and adds rows/columns for virtual start nodes
// and ghost pickups admitted during re-optimization (spec.md §4.L / §9). It
// borrows the base matrix for the duration of the call that built it and
// never mutates it; Release drops the virtual extension so the overlay can
// be discarded without affecting the base (see DESIGN NOTES, ownership).
type Dynamic struct {
	base    Matrix
	extra   map[int]VirtualNode
	coordOf func(globalID int) (float64, float64, bool)
	speed   float64 // distance units of travel-time cost per unit Euclidean distance
}

// NewDynamic builds an overlay over base. coordOf resolves the coordinates
// of a base node id (used when computing arcs between a virtual node and an
// existing node); speedFactor scales Euclidean distance into travel time
// (1.0 means distance and time are numerically equal, matching the base
// matrix convention).
func NewDynamic(base Matrix, coordOf func(globalID int) (float64, float64, bool), speedFactor float64) *Dynamic {
	if speedFactor <= 0 {
		speedFactor = 1.0
	}
	return &Dynamic{base: base, extra: make(map[int]VirtualNode), coordOf: coordOf, speed: speedFactor}
}

// AddVirtualNode admits a new node at (x, y) under id, computed lazily
// against the base matrix and any other virtual nodes already admitted.
func (d *Dynamic) AddVirtualNode(id int, x, y float64) {
	d.extra[id] = VirtualNode{ID: id, X: x, Y: y}
}

// Release drops all virtual nodes, returning the overlay to a pass-through
// state over the base matrix.
func (d *Dynamic) Release() {
	d.extra = make(map[int]VirtualNode)
}

func (d *Dynamic) coord(id int) (float64, float64, bool) {
	if v, ok := d.extra[id]; ok {
		return v.X, v.Y, true
	}
	return d.coordOf(id)
}

func (d *Dynamic) euclideanArc(from, to int) (ArcValues, bool) {
	_, isVFrom := d.extra[from]
	_, isVTo := d.extra[to]
	if !isVFrom && !isVTo {
		return ArcValues{}, false
	}
	x1, y1, ok1 := d.coord(from)
	x2, y2, ok2 := d.coord(to)
	if !ok1 || !ok2 {
		return ArcValues{}, false
	}
	dx, dy := x1-x2, y1-y2
	dist := math.Sqrt(dx*dx + dy*dy)
	distance := numeric.FromFloat64(dist)
	time := numeric.FromFloat64(dist * d.speed)
	return ArcValues{Distance: distance, Time: time}, true
}

// Size returns the base matrix size plus however many virtual nodes are
// currently admitted (ids are assumed disjoint from the base range).
func (d *Dynamic) Size() int {
	return d.base.Size() + len(d.extra)
}

// Distance returns the distance from 'from' to 'to', computed over the
// virtual overlay when either endpoint is virtual.
func (d *Dynamic) Distance(from, to int) numeric.Num {
	if from == to {
		return numeric.Zero
	}
	if arc, ok := d.euclideanArc(from, to); ok {
		return arc.Distance
	}
	return d.base.Distance(from, to)
}

// Time returns the travel time from 'from' to 'to'.
func (d *Dynamic) Time(from, to int) numeric.Num {
	if from == to {
		return numeric.Zero
	}
	if arc, ok := d.euclideanArc(from, to); ok {
		return arc.Time
	}
	return d.base.Time(from, to)
}

// Arc returns the distance+time pair for (from, to).
func (d *Dynamic) Arc(from, to int) ArcValues {
	if from == to {
		return ArcValues{}
	}
	if arc, ok := d.euclideanArc(from, to); ok {
		return arc
	}
	return d.base.Arc(from, to)
}

// MaxDistance returns the larger of the base matrix's max and the largest
// arc touching a virtual node (computed lazily; virtual overlays are small
// so a linear scan is cheap and keeps the overlay allocation-free otherwise).
func (d *Dynamic) MaxDistance() numeric.Num {
	maxV := d.base.MaxDistance()
	for id := range d.extra {
		for other := 0; other < d.base.Size(); other++ {
			if v := d.Distance(id, other); v > maxV {
				maxV = v
			}
		}
	}
	return maxV
}

// MaxTime returns the larger of the base matrix's max travel time and the
// largest travel time touching a virtual node. Always derived from the
// .Time field, never .Distance (spec.md §9(c)).
func (d *Dynamic) MaxTime() numeric.Num {
	maxV := d.base.MaxTime()
	for id := range d.extra {
		for other := 0; other < d.base.Size(); other++ {
			if v := d.Time(id, other); v > maxV {
				maxV = v
			}
		}
	}
	return maxV
}
