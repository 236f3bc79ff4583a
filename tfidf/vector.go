package tfidf

import "math"

// Vector is a sparse term-to-weight map. Absent terms weigh zero.
type Vector map[string]float64

// Norm returns the Euclidean length of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns the dot product of a and b over their shared
// terms divided by the product of their norms. It returns 0 when either
// vector is empty or all-zero. The result is clamped to [0, 1].
func CosineSimilarity(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Iterate the smaller map.
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	var dot float64
	for term, w := range small {
		if other, ok := large[term]; ok {
			dot += w * other
		}
	}

	normA, normB := a.Norm(), b.Norm()
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp(dot / (normA * normB))
}
