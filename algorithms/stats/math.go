package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical helpers shared across the analysis packages,
// backed by gonum where it has the primitive.

// Mean calculates the arithmetic mean of a slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.StdDev(data, nil)
}

// Percentile returns the p-th percentile (p in [0, 100]) using the
// empirical quantile of the sorted data.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	return stat.Quantile(p/100.0, stat.Empirical, sorted, nil)
}

// Median returns the 50th percentile of the data.
func Median(data []float64) float64 {
	return Percentile(data, 50.0)
}

// Clamp restricts a value to the range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// MovingAverage smooths data with a centered moving average window.
// The window shrinks at the edges so the output has the same length
// as the input.
func MovingAverage(data []float64, windowSize int) []float64 {
	if len(data) == 0 || windowSize <= 1 {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	smoothed := make([]float64, len(data))
	half := windowSize / 2

	for i := range data {
		start := max(0, i-half)
		end := min(len(data), i+half+1)
		smoothed[i] = stat.Mean(data[start:end], nil)
	}

	return smoothed
}

// NormalizeToMax scales data so its maximum becomes 1. A flat or
// silent signal comes back as zeros.
func NormalizeToMax(data []float64) []float64 {
	normalized := make([]float64, len(data))
	if len(data) == 0 {
		return normalized
	}

	maxVal := floats.Max(data)
	if maxVal <= 0 {
		return normalized
	}

	for i, v := range data {
		normalized[i] = v / maxVal
	}
	return normalized
}

// Standardize z-scores each column of a feature matrix in a new
// matrix. Columns with zero variance come back as zeros so constant
// features cannot dominate distance computations.
func Standardize(data [][]float64) [][]float64 {
	if len(data) == 0 {
		return [][]float64{}
	}

	dim := len(data[0])
	means := make([]float64, dim)
	stds := make([]float64, dim)

	column := make([]float64, len(data))
	for j := 0; j < dim; j++ {
		for i, row := range data {
			column[i] = row[j]
		}
		means[j] = stat.Mean(column, nil)
		if len(column) > 1 {
			stds[j] = stat.StdDev(column, nil)
		}
	}

	standardized := make([][]float64, len(data))
	for i, row := range data {
		standardized[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			if stds[j] > 0 && !math.IsNaN(stds[j]) {
				standardized[i][j] = (row[j] - means[j]) / stds[j]
			}
		}
	}

	return standardized
}
