package filters

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomMatrix(rows, cols int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	m := make([][]float64, rows)
	for i := range m {
		row := make([]float64, cols)
		for j := range row {
			row[j] = 100 + 20*rng.Float64()
		}
		m[i] = row
	}
	return m
}

func constantMatrix(rows, cols int, value float64) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		row := make([]float64, cols)
		for j := range row {
			row[j] = value
		}
		m[i] = row
	}
	return m
}

func TestGaussianBackgroundRejectsBadSigmas(t *testing.T) {
	tests := []struct {
		name      string
		sigmaFreq float64
		sigmaTime float64
	}{
		{"zero freq sigma", 0, 20},
		{"negative freq sigma", -1, 20},
		{"zero time sigma", 1, 0},
		{"negative time sigma", 1, -5},
		{"NaN sigma", math.NaN(), 20},
		{"infinite sigma", 1, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGaussianBackground(tt.sigmaFreq, tt.sigmaTime)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidWindow)
		})
	}
}

func TestGaussianBackgroundOutputIsNonNegative(t *testing.T) {
	g, err := NewGaussianBackground(1.0, 20.0)
	require.NoError(t, err)

	cleaned := g.Apply(randomMatrix(16, 200, 1))
	for _, row := range cleaned {
		for _, val := range row {
			assert.GreaterOrEqual(t, val, 0.0)
		}
	}
}

func TestGaussianBackgroundPreservesShapeAndInput(t *testing.T) {
	g, err := NewGaussianBackground(2.0, 5.0)
	require.NoError(t, err)

	input := randomMatrix(8, 50, 2)
	original := make([][]float64, len(input))
	for i, row := range input {
		original[i] = append([]float64(nil), row...)
	}

	cleaned := g.Apply(input)
	require.Len(t, cleaned, 8)
	for _, row := range cleaned {
		require.Len(t, row, 50)
	}
	assert.Equal(t, original, input, "input matrix must not be mutated")
}

func TestGaussianBackgroundTinySigmaApproachesZeroResidual(t *testing.T) {
	// As sigma shrinks the smoothed estimate converges to the data itself,
	// so the subtraction leaves nearly nothing.
	g, err := NewGaussianBackground(1e-4, 1e-4)
	require.NoError(t, err)

	cleaned := g.Apply(randomMatrix(8, 40, 3))
	for _, row := range cleaned {
		for _, val := range row {
			assert.InDelta(t, 0.0, val, 1e-9)
		}
	}
}

func TestGaussianBackgroundConstantInputHasExactBackground(t *testing.T) {
	// Reflection padding sees the same constant beyond every edge, so the
	// unit-sum kernel reproduces the constant exactly and the residual is
	// zero everywhere, border pixels included.
	g, err := NewGaussianBackground(1.5, 10.0)
	require.NoError(t, err)

	cleaned, background := g.Components(constantMatrix(10, 80, 42.5))
	for _, row := range background {
		for _, val := range row {
			assert.InDelta(t, 42.5, val, 1e-9)
		}
	}
	for _, row := range cleaned {
		for _, val := range row {
			assert.InDelta(t, 0.0, val, 1e-9)
		}
	}
}

func TestGaussianBackgroundEnhancesTransient(t *testing.T) {
	// A short bright transient on a flat pedestal must survive background
	// subtraction while the pedestal vanishes.
	input := constantMatrix(6, 300, 50)
	for i := range input {
		for j := 140; j < 150; j++ {
			input[i][j] = 150
		}
	}

	g, err := NewGaussianBackground(1.0, 20.0)
	require.NoError(t, err)
	cleaned := g.Apply(input)

	assert.Greater(t, cleaned[3][145], 10.0, "burst must remain after subtraction")
	assert.InDelta(t, 0.0, cleaned[3][10], 1e-6, "quiet region must be removed")
}

func TestConvolveReflectFFTMatchesDirect(t *testing.T) {
	// The FFT path must be numerically indistinguishable from the direct
	// path for a kernel long enough to trigger it.
	data := make([]float64, 257)
	rng := rand.New(rand.NewSource(7))
	for i := range data {
		data[i] = rng.NormFloat64()
	}

	kernel := gaussianKernel(10) // radius 40, length 81: over the threshold
	require.GreaterOrEqual(t, len(kernel), fftKernelThreshold)

	viaFFT := convolveReflectFFT(data, kernel)

	n := len(data)
	radius := len(kernel) / 2
	direct := make([]float64, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for k, w := range kernel {
			idx := i + k - radius
			for idx < 0 || idx >= n {
				if idx < 0 {
					idx = -idx - 1
				} else {
					idx = 2*n - 1 - idx
				}
			}
			acc += w * data[idx]
		}
		direct[i] = acc
	}

	for i := range direct {
		assert.InDelta(t, direct[i], viaFFT[i], 1e-9)
	}
}

func TestGaussianKernelIsNormalizedAndSymmetric(t *testing.T) {
	for _, sigma := range []float64{0.3, 1.0, 5.0, 20.0} {
		kernel := gaussianKernel(sigma)
		require.Equal(t, 1, len(kernel)%2)

		sum := 0.0
		for _, w := range kernel {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-12)

		for i := range kernel {
			assert.InDelta(t, kernel[i], kernel[len(kernel)-1-i], 1e-15)
		}
	}
}
