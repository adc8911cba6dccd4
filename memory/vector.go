package memory

import "math"

// CosineSimilarity computes cosine similarity between two vectors.
// Returns 0 when the vectors differ in dimension or when either has
// zero magnitude, so callers never hit a divide-by-zero.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
