package numeric

import "testing"

func TestFromIntAndValue(t *testing.T) {
	n := FromInt(42)
	if n.Value() != 42.0 {
		t.Fatalf("got %v, want 42.0", n.Value())
	}
}

func TestFromFloat64Rounding(t *testing.T) {
	n := FromFloat64(1.2346)
	if n != Num(1235) {
		t.Fatalf("got %v, want 1235", n)
	}
}

func TestAddSaturates(t *testing.T) {
	n := MaxNum.Add(FromInt(1))
	if n != MaxNum {
		t.Fatalf("expected saturation at MaxNum, got %v", n)
	}
	n = MinNum.Add(FromInt(-1))
	if n != MinNum {
		t.Fatalf("expected saturation at MinNum, got %v", n)
	}
}

func TestMaxMin(t *testing.T) {
	a, b := FromInt(3), FromInt(5)
	if a.Max(b) != b {
		t.Fatal("Max wrong")
	}
	if a.Min(b) != a {
		t.Fatal("Min wrong")
	}
}

func TestString(t *testing.T) {
	if FromFloat64(12.5).String() != "12.500" {
		t.Fatalf("got %q", FromFloat64(12.5).String())
	}
	if FromFloat64(-3.1).String() != "-3.100" {
		t.Fatalf("got %q", FromFloat64(-3.1).String())
	}
}

func TestMulInt(t *testing.T) {
	n := FromInt(10).MulInt(3)
	if n != FromInt(30) {
		t.Fatalf("got %v", n)
	}
}
