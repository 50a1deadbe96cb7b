// Package travel provides pairwise distance/time lookups between instance
// nodes: a dense table for the base instance, a relabeling proxy for
// sub-problems, and (in dynamic.go) an overlay that extends the table with
// virtual/ghost rows without mutating the base matrix.
package travel

import (
	"math"

	"github.com/pikasonix/pdptw/numeric"
)

// ArcValues bundles the distance and time of one directed arc.
type ArcValues struct {
	Distance numeric.Num
	Time     numeric.Num
}

// Matrix is the interface every travel-time/distance source implements:
// the dense base table, the relabeling proxy, and the dynamic overlay.
type Matrix interface {
	Distance(from, to int) numeric.Num
	Time(from, to int) numeric.Num
	Arc(from, to int) ArcValues
	MaxDistance() numeric.Num
	MaxTime() numeric.Num
	Size() int
}

// Dense is a fixed-size n x n travel matrix backed by a flat slice.
type Dense struct {
	n           int
	data        []ArcValues
	maxDistance numeric.Num
	maxTime     numeric.Num
}

func (m *Dense) idx(from, to int) int {
	return from*m.n + to
}

// Size returns the number of nodes the matrix covers.
func (m *Dense) Size() int { return m.n }

// Distance returns the travel distance from 'from' to 'to'.
func (m *Dense) Distance(from, to int) numeric.Num {
	return m.data[m.idx(from, to)].Distance
}

// Time returns the travel time from 'from' to 'to'.
func (m *Dense) Time(from, to int) numeric.Num {
	return m.data[m.idx(from, to)].Time
}

// Arc returns both the distance and time of the arc at once.
func (m *Dense) Arc(from, to int) ArcValues {
	return m.data[m.idx(from, to)]
}

// MaxDistance returns the largest distance in the matrix.
func (m *Dense) MaxDistance() numeric.Num { return m.maxDistance }

// MaxTime returns the largest travel time in the matrix. Maintained from the
// .Time field of each arc everywhere it is updated (spec.md §9(c): the
// original Rust source has a bug where this was derived from .distance in
// one code path — fixed here).
func (m *Dense) MaxTime() numeric.Num { return m.maxTime }

// NewDenseFromCoords builds a dense Euclidean-distance matrix over the given
// (x, y) coordinates; distance and time are numerically equal (one distance
// unit costs one time unit), matching the original FixSizedTravelMatrix
// default.
func NewDenseFromCoords(coords [][2]float64) *Dense {
	n := len(coords)
	data := make([]ArcValues, n*n)
	m := &Dense{n: n, data: data}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			idx := i*n + j
			if i == j {
				data[idx] = ArcValues{}
				continue
			}
			dx := coords[i][0] - coords[j][0]
			dy := coords[i][1] - coords[j][1]
			euclidean := math.Sqrt(dx*dx + dy*dy)
			val := numeric.FromFloat64(euclidean)
			data[idx] = ArcValues{Distance: val, Time: val}
			if val > m.maxDistance {
				m.maxDistance = val
			}
			if val > m.maxTime {
				m.maxTime = val
			}
		}
	}
	return m
}

// RelabeledSubset builds a smaller matrix covering only the nodes named in
// toOriginalMapping (local index i maps to global node toOriginalMapping[i]),
// used by AGES/insertion sub-problems that operate on a route subset.
func (m *Dense) RelabeledSubset(toOriginalMapping []int) *Dense {
	n := len(toOriginalMapping)
	data := make([]ArcValues, n*n)
	sub := &Dense{n: n, data: data}
	for i := 0; i < n; i++ {
		from := toOriginalMapping[i]
		for j := 0; j < n; j++ {
			to := toOriginalMapping[j]
			if from == to {
				continue
			}
			arc := m.Arc(from, to)
			data[i*n+j] = arc
			if arc.Distance > sub.maxDistance {
				sub.maxDistance = arc.Distance
			}
			if arc.Time > sub.maxTime {
				sub.maxTime = arc.Time
			}
		}
	}
	return sub
}

// DenseBuilder assembles a Dense matrix arc-by-arc, for instance formats
// (the NYC JSON travel matrix) that supply explicit distance/time values
// rather than coordinates.
type DenseBuilder struct {
	n           int
	data        []ArcValues
	maxDistance numeric.Num
	maxTime     numeric.Num
}

// NewDenseBuilder allocates a builder for a matrix of size numNodes x numNodes.
func NewDenseBuilder(numNodes int) *DenseBuilder {
	return &DenseBuilder{n: numNodes, data: make([]ArcValues, numNodes*numNodes)}
}

// SetArc records the distance/time of the (from, to) arc.
func (b *DenseBuilder) SetArc(from, to int, distance, time numeric.Num) *DenseBuilder {
	if distance > b.maxDistance {
		b.maxDistance = distance
	}
	if time > b.maxTime {
		b.maxTime = time
	}
	b.data[from*b.n+to] = ArcValues{Distance: distance, Time: time}
	return b
}

// Build finalizes the matrix.
func (b *DenseBuilder) Build() *Dense {
	return &Dense{n: b.n, data: b.data, maxDistance: b.maxDistance, maxTime: b.maxTime}
}

// Proxy remaps global node ids to a local contiguous range over a base
// matrix, for sub-problems (e.g. AGES operating on one route).
type Proxy struct {
	Map    []int
	matrix Matrix
}

// NewProxy builds a Proxy over base using the given local->global mapping.
func NewProxy(mapping []int, base Matrix) *Proxy {
	return &Proxy{Map: mapping, matrix: base}
}

// Size returns the number of local nodes the proxy covers.
func (p *Proxy) Size() int { return len(p.Map) }

// Distance returns the distance between local ids 'from' and 'to'.
func (p *Proxy) Distance(from, to int) numeric.Num {
	return p.matrix.Distance(p.Map[from], p.Map[to])
}

// Time returns the time between local ids 'from' and 'to'.
func (p *Proxy) Time(from, to int) numeric.Num {
	return p.matrix.Time(p.Map[from], p.Map[to])
}

// Arc returns the arc between local ids 'from' and 'to'.
func (p *Proxy) Arc(from, to int) ArcValues {
	return p.matrix.Arc(p.Map[from], p.Map[to])
}

// MaxDistance delegates to the underlying base matrix.
func (p *Proxy) MaxDistance() numeric.Num { return p.matrix.MaxDistance() }

// MaxTime delegates to the underlying base matrix.
func (p *Proxy) MaxTime() numeric.Num { return p.matrix.MaxTime() }

// RelabeledSubset composes a further relabeling on top of this proxy.
func (p *Proxy) RelabeledSubset(toOriginalMapping []int) *Proxy {
	composed := make([]int, len(toOriginalMapping))
	for i, local := range toOriginalMapping {
		composed[i] = p.Map[local]
	}
	return &Proxy{Map: composed, matrix: p.matrix}
}
