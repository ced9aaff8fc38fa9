package stats

import (
	"math"
)

// EuclideanDistance computes the Euclidean distance between two
// equal-length vectors.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}

	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// PairwiseDistances computes the condensed upper-triangle Euclidean
// distances between all pairs of rows. Useful for deriving distance
// percentiles without materializing the full n x n matrix.
func PairwiseDistances(data [][]float64) []float64 {
	n := len(data)
	if n < 2 {
		return []float64{}
	}

	distances := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			distances = append(distances, EuclideanDistance(data[i], data[j]))
		}
	}
	return distances
}

// CosineSimilarity computes the cosine of the angle between two
// vectors. Returns 0 when either vector has zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	dot := 0.0
	normA := 0.0
	normB := 0.0
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

// Centroid returns the element-wise mean of a set of equal-length
// vectors, or nil for an empty set.
func Centroid(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}

	dim := len(vectors[0])
	center := make([]float64, dim)
	for _, v := range vectors {
		for j := 0; j < dim && j < len(v); j++ {
			center[j] += v[j]
		}
	}
	for j := range center {
		center[j] /= float64(len(vectors))
	}
	return center
}
