package travel

import (
	"testing"

	"github.com/pikasonix/pdptw/numeric"
)

func TestDenseFromCoordsSymmetric(t *testing.T) {
	coords := [][2]float64{{0, 0}, {3, 4}, {0, 0}}
	m := NewDenseFromCoords(coords)
	if m.Distance(0, 1) != numeric.FromFloat64(5) {
		t.Fatalf("got %v want 5", m.Distance(0, 1))
	}
	if m.Distance(0, 0) != numeric.Zero {
		t.Fatalf("self distance should be zero")
	}
	if m.MaxDistance() != numeric.FromFloat64(5) {
		t.Fatalf("max distance wrong: %v", m.MaxDistance())
	}
}

func TestRelabeledSubset(t *testing.T) {
	coords := [][2]float64{{0, 0}, {3, 4}, {6, 8}}
	m := NewDenseFromCoords(coords)
	sub := m.RelabeledSubset([]int{2, 0})
	if sub.Distance(0, 1) != m.Distance(2, 0) {
		t.Fatalf("relabeling mismatch")
	}
}

func TestDenseBuilder(t *testing.T) {
	b := NewDenseBuilder(2)
	b.SetArc(0, 1, numeric.FromInt(7), numeric.FromInt(9))
	m := b.Build()
	if m.Distance(0, 1) != numeric.FromInt(7) || m.Time(0, 1) != numeric.FromInt(9) {
		t.Fatalf("builder arc mismatch")
	}
	if m.MaxTime() != numeric.FromInt(9) {
		t.Fatalf("max time should track .Time field, got %v", m.MaxTime())
	}
}

func TestDynamicOverlay(t *testing.T) {
	base := NewDenseFromCoords([][2]float64{{0, 0}, {10, 0}})
	coordOf := func(id int) (float64, float64, bool) {
		switch id {
		case 0:
			return 0, 0, true
		case 1:
			return 10, 0, true
		}
		return 0, 0, false
	}
	d := NewDynamic(base, coordOf, 1.0)
	d.AddVirtualNode(100, 0, 3)
	if d.Distance(100, 0) != numeric.FromFloat64(3) {
		t.Fatalf("virtual distance wrong: %v", d.Distance(100, 0))
	}
	if d.Distance(0, 1) != base.Distance(0, 1) {
		t.Fatalf("non-virtual arc should pass through to base")
	}
	d.Release()
	if len(d.extra) != 0 {
		t.Fatalf("release should clear virtual nodes")
	}
}
