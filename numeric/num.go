// Package numeric provides a deterministic fixed-point scalar used for every
// distance, time and cost value in the solver's hot path, so that feasibility
// and objective comparisons are exact and reproducible across platforms.
package numeric

import (
	"fmt"
	"math"
)

// scale is the number of fractional decimal digits kept by Num (3, as in
// the original NumI32P3/NumU16P0 fixed-point types).
const scale = 1000

// MaxNum and MinNum bound the representable range; arithmetic saturates
// instead of wrapping on overflow.
const (
	MaxNum = Num(math.MaxInt64)
	MinNum = Num(math.MinInt64)
)

// Num is a fixed-point signed scalar with 3 decimal digits of precision,
// stored as a plain int64 count of thousandths. Comparisons (<, ==, >) on the
// underlying int64 are total and exact — no floating point drift.
type Num int64

// Zero is the additive identity.
const Zero Num = 0

// FromInt builds a Num from a whole number.
func FromInt(v int) Num {
	return Num(int64(v) * scale)
}

// FromFloat64 builds a Num from a float, rounding to the nearest thousandth.
func FromFloat64(v float64) Num {
	return Num(math.Round(v * scale))
}

// Value returns the Num as a float64, e.g. for JSON output or reporting.
func (n Num) Value() float64 {
	return float64(n) / scale
}

// Add returns n+m, saturating at MaxNum/MinNum instead of overflowing.
func (n Num) Add(m Num) Num {
	sum := int64(n) + int64(m)
	if (m > 0 && sum < int64(n)) || (m < 0 && sum > int64(n)) {
		if m > 0 {
			return MaxNum
		}
		return MinNum
	}
	return Num(sum)
}

// Sub returns n-m, saturating on overflow.
func (n Num) Sub(m Num) Num {
	return n.Add(-m)
}

// MulInt returns n*k, saturating on overflow.
func (n Num) MulInt(k int) Num {
	if k == 0 || n == 0 {
		return 0
	}
	product := int64(n) * int64(k)
	// detect overflow via division check
	if product/int64(k) != int64(n) {
		if (n > 0) == (k > 0) {
			return MaxNum
		}
		return MinNum
	}
	return Num(product)
}

// Max returns the greater of n and m.
func (n Num) Max(m Num) Num {
	if n > m {
		return n
	}
	return m
}

// Min returns the lesser of n and m.
func (n Num) Min(m Num) Num {
	if n < m {
		return n
	}
	return m
}

// Neg returns -n.
func (n Num) Neg() Num {
	return -n
}

// Abs returns the absolute value of n.
func (n Num) Abs() Num {
	if n < 0 {
		return -n
	}
	return n
}

// String renders n with 3 decimal digits, e.g. "12.500".
func (n Num) String() string {
	neg := n < 0
	v := int64(n)
	if neg {
		v = -v
	}
	whole := v / scale
	frac := v % scale
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%03d", sign, whole, frac)
}

// CheckedAdd returns n+m and false if the addition saturated (overflowed).
func (n Num) CheckedAdd(m Num) (Num, bool) {
	sum := n.Add(m)
	want := int64(n) + int64(m)
	return sum, int64(sum) == want
}
