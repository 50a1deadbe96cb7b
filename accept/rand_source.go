package accept

import "math/rand"

// defaultRandFloat draws from the package-level math/rand source. The
// Criterion interface (spec.md §4.I) takes no *rand.Rand parameter, so
// ExponentialSA's probabilistic acceptance cannot be seeded through the
// same explicit RNG the rest of the LNS controller threads everywhere else
// — a limitation inherited from the interface shape itself, noted in
// DESIGN.md rather than worked around by changing the interface.
func defaultRandFloat() float64 {
	return rand.Float64()
}
