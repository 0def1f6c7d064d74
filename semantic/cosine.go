package semantic

import "gonum.org/v1/gonum/floats"

// Cosine returns the cosine similarity of a and b, or 0 if either has zero norm.
// It panics if the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(ErrDimensionMismatch)
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// toFloat64 widens an embedding for gonum.
func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
