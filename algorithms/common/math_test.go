package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.5, Mean([]float64{1, 2, 3, 4}))
}

func TestMeanSquared(t *testing.T) {
	assert.Equal(t, 0.0, MeanSquared(nil))
	assert.Equal(t, 7.5, MeanSquared([]float64{1, 2, 3, 4}))
	assert.Equal(t, 4.0, MeanSquared([]float64{-2, 2}))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))

	data := []float64{9, 1, 5}
	_ = Median(data)
	assert.Equal(t, []float64{9, 1, 5}, data, "Median must not reorder its input")
}

func TestMedianInPlace(t *testing.T) {
	data := []float64{9, 1, 5}
	assert.Equal(t, 5.0, MedianInPlace(data))
	assert.Equal(t, []float64{1, 5, 9}, data)
}

func TestClampIndex(t *testing.T) {
	assert.Equal(t, 0, ClampIndex(-3, 5))
	assert.Equal(t, 2, ClampIndex(2, 5))
	assert.Equal(t, 4, ClampIndex(9, 5))
}

func TestReflectIndex(t *testing.T) {
	// a b c d -> b a | a b c d | d c
	tests := []struct {
		in   int
		want int
	}{
		{-2, 1},
		{-1, 0},
		{0, 0},
		{3, 3},
		{4, 3},
		{5, 2},
		{8, 0},  // one full period
		{-5, 3}, // reflected past the start twice
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReflectIndex(tt.in, 4), "ReflectIndex(%d, 4)", tt.in)
	}

	assert.Equal(t, 0, ReflectIndex(-7, 1))
	assert.Equal(t, 0, ReflectIndex(3, 1))
}

func TestNextPowerOfTwo(t *testing.T) {
	assert.Equal(t, 1, NextPowerOfTwo(0))
	assert.Equal(t, 1, NextPowerOfTwo(1))
	assert.Equal(t, 8, NextPowerOfTwo(5))
	assert.Equal(t, 1024, NextPowerOfTwo(1024))
}
