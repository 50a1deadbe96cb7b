// Package accept implements the LNS outer loop's acceptance criteria:
// whether a candidate solution becomes the new "current" solution the next
// iteration destroys/repairs from.
package accept

import (
	"math"

	"github.com/pikasonix/pdptw/numeric"
)

// Criterion decides whether to accept a candidate objective value as the
// new current solution, and is updated once per LNS iteration so time-based
// schedules (cooling, shrinking threshold) can advance.
type Criterion interface {
	Accept(current, candidate, best numeric.Num) bool
	Update(iteration int)
}

// ExponentialSA is simulated annealing with geometric cooling: T0 cools to
// TFinal over N iterations, accepting worsening moves with probability
// exp(-delta/T).
type ExponentialSA struct {
	T, T0, TFinal numeric.Num
	N             int

	cooling float64
	started bool
}

func (s *ExponentialSA) ensureInit() {
	if s.started {
		return
	}
	s.started = true
	if s.T == 0 {
		s.T = s.T0
	}
	if s.N <= 0 {
		s.N = 1
	}
	t0 := s.T0.Value()
	tf := s.TFinal.Value()
	if t0 <= 0 {
		t0 = 1
	}
	if tf <= 0 {
		tf = 1e-6
	}
	s.cooling = math.Pow(tf/t0, 1.0/float64(s.N))
}

// Accept returns true unconditionally for improving candidates, otherwise
// with probability exp(-delta/T).
func (s *ExponentialSA) Accept(current, candidate, best numeric.Num) bool {
	s.ensureInit()
	if candidate <= current {
		return true
	}
	delta := candidate.Sub(current).Value()
	t := s.T.Value()
	if t <= 0 {
		return false
	}
	return randFloat() < math.Exp(-delta/t)
}

// Update applies one step of geometric cooling.
func (s *ExponentialSA) Update(iteration int) {
	s.ensureInit()
	s.T = numeric.FromFloat64(s.T.Value() * s.cooling)
}

// LinearRTR is "record to record travel": accept any candidate within a
// shrinking percentage band above the best solution found so far.
type LinearRTR struct {
	T, T0, TFinal numeric.Num
	N             int

	started bool
}

func (r *LinearRTR) ensureInit() {
	if r.started {
		return
	}
	r.started = true
	if r.T == 0 {
		r.T = r.T0
	}
	if r.N <= 0 {
		r.N = 1
	}
}

// Accept accepts iff candidate <= best*(1+T).
func (r *LinearRTR) Accept(current, candidate, best numeric.Num) bool {
	r.ensureInit()
	threshold := best.Value() * (1 + r.T.Value())
	return candidate.Value() <= threshold
}

// Update linearly interpolates T from T0 toward TFinal over N iterations.
func (r *LinearRTR) Update(iteration int) {
	r.ensureInit()
	frac := float64(iteration) / float64(r.N)
	if frac > 1 {
		frac = 1
	}
	t0 := r.T0.Value()
	tf := r.TFinal.Value()
	r.T = numeric.FromFloat64(t0 + frac*(tf-t0))
}

// Strict only accepts strict improvements over current.
type Strict struct{}

func (Strict) Accept(current, candidate, best numeric.Num) bool { return candidate < current }
func (Strict) Update(iteration int)                             {}

// randFloat is overridable in tests to make ExponentialSA deterministic
// without threading a *rand.Rand through the Criterion interface (the
// interface mirrors the teacher's narrow single-purpose interfaces, e.g.
// sim.EventHandler, which take no extra context either).
var randFloat = defaultRandFloat
