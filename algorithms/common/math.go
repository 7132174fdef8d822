package common

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions shared across algorithms, using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// MeanSquared calculates the mean of squared values (mean power)
func MeanSquared(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, val := range data {
		sumSquares += val * val
	}

	return sumSquares / float64(len(data))
}

// Median returns the median of a slice without modifying it
func Median(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	return MedianInPlace(sorted)
}

// MedianInPlace returns the median of a slice, sorting it as a side effect.
// Intended for hot loops that reuse a scratch buffer.
func MedianInPlace(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sort.Float64s(data)

	mid := len(data) / 2
	if len(data)%2 == 0 {
		return (data[mid-1] + data[mid]) / 2.0
	}
	return data[mid]
}
