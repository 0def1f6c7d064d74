package onnx

import "math"

// meanPool averages the token vectors of one sequence, counting only positions
// whose attention mask is set. hidden is laid out [seqLen][dims] row-major.
func meanPool(hidden []float32, mask []int64, seqLen, dims int) []float32 {
	out := make([]float32, dims)
	var count float32
	for t := 0; t < seqLen; t++ {
		if mask[t] == 0 {
			continue
		}
		count++
		row := hidden[t*dims : (t+1)*dims]
		for d, v := range row {
			out[d] += v
		}
	}
	if count == 0 {
		return out
	}
	for d := range out {
		out[d] /= count
	}
	return out
}

// l2Normalize scales vec to unit length in place. Zero vectors are left untouched.
func l2Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}

// truncate caps ids at maxLen tokens, keeping the final special token.
func truncate(ids []int, maxLen int) []int {
	if len(ids) <= maxLen {
		return ids
	}
	out := make([]int, maxLen)
	copy(out, ids[:maxLen-1])
	out[maxLen-1] = ids[len(ids)-1]
	return out
}
