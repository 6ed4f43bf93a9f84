// Package derange produces fixed-point-free permutations.
package derange

// Intner is the random source a shuffle draws from.
type Intner interface {
	Intn(n int) int
}

// Derange returns a shuffled copy of in where no element keeps its index.
//
// Inputs shorter than two are returned as an unchanged copy, since no
// derangement exists for them. Elements must be unique; a shuffle is redrawn
// until it has no fixed point, which takes about e attempts on average.
func Derange[T comparable](rng Intner, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	if len(in) < 2 {
		return out
	}
	for {
		shuffle(rng, out)
		if !hasFixedPoint(in, out) {
			return out
		}
	}
}

// shuffle is a Fisher-Yates pass over s.
func shuffle[T any](rng Intner, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func hasFixedPoint[T comparable](original, shuffled []T) bool {
	for i := range original {
		if original[i] == shuffled[i] {
			return true
		}
	}
	return false
}
