package accept

import (
	"testing"

	"github.com/pikasonix/pdptw/numeric"
)

func TestStrictOnlyAcceptsImprovements(t *testing.T) {
	s := Strict{}
	if !s.Accept(numeric.FromInt(10), numeric.FromInt(9), numeric.FromInt(9)) {
		t.Fatalf("should accept strict improvement")
	}
	if s.Accept(numeric.FromInt(10), numeric.FromInt(10), numeric.FromInt(10)) {
		t.Fatalf("should not accept equal or worse")
	}
}

func TestLinearRTRAcceptsWithinBand(t *testing.T) {
	r := &LinearRTR{T0: numeric.FromFloat64(0.1), TFinal: numeric.Zero, N: 10}
	best := numeric.FromInt(100)
	if !r.Accept(numeric.FromInt(100), numeric.FromInt(105), best) {
		t.Fatalf("105 should be within a 10%% band of 100")
	}
	if r.Accept(numeric.FromInt(100), numeric.FromInt(200), best) {
		t.Fatalf("200 should be outside a 10%% band of 100")
	}
}

func TestLinearRTRShrinksOverIterations(t *testing.T) {
	r := &LinearRTR{T0: numeric.FromFloat64(0.2), TFinal: numeric.Zero, N: 10}
	r.Update(0)
	t0 := r.T
	r.Update(10)
	if r.T >= t0 {
		t.Fatalf("T should shrink toward TFinal as iterations advance")
	}
	if r.T != numeric.Zero {
		t.Fatalf("T should reach TFinal at iteration N, got %v", r.T)
	}
}

func TestExponentialSAAlwaysAcceptsImprovement(t *testing.T) {
	s := &ExponentialSA{T0: numeric.FromFloat64(10), TFinal: numeric.FromFloat64(0.1), N: 100}
	if !s.Accept(numeric.FromInt(100), numeric.FromInt(50), numeric.FromInt(50)) {
		t.Fatalf("should always accept an improving candidate")
	}
}

func TestExponentialSACoolsOverIterations(t *testing.T) {
	s := &ExponentialSA{T0: numeric.FromFloat64(10), TFinal: numeric.FromFloat64(0.1), N: 100}
	s.ensureInit()
	t0 := s.T
	for i := 0; i < 100; i++ {
		s.Update(i)
	}
	if s.T >= t0 {
		t.Fatalf("temperature should cool over iterations")
	}
}
