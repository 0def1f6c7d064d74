package ranking

import "gonum.org/v1/gonum/floats"

// DefaultEpsilon keeps min-max normalization finite when every score is equal.
const DefaultEpsilon = 1e-8

// MinMaxNormalize rescales scores to [0, 1) as (s - min) / (max - min + DefaultEpsilon).
// A constant vector maps to all zeros. The input is not modified.
func MinMaxNormalize(scores []float64) []float64 {
	return minMaxNormalize(scores, DefaultEpsilon)
}

func minMaxNormalize(scores []float64, epsilon float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	lo := floats.Min(scores)
	span := floats.Max(scores) - lo + epsilon
	for i, s := range scores {
		out[i] = (s - lo) / span
	}
	return out
}
