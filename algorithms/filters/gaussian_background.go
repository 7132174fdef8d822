package filters

import (
	"errors"
	"fmt"
	"math"

	"github.com/heliodyne/ecallisto/algorithms/common"
	"github.com/mjibson/go-dsp/fft"
)

// ErrInvalidWindow reports filter parameters that cannot produce a valid
// window: non-positive or non-finite sigmas, even or non-positive median
// window sizes.
var ErrInvalidWindow = errors.New("filters: invalid window")

// Kernels at least this long are convolved through the FFT; shorter ones
// are cheaper done directly.
const fftKernelThreshold = 64

// GaussianBackground estimates the smooth background of a spectrogram with
// a separable 2D Gaussian blur and subtracts it.
//
// The quiet-Sun component and slow instrumental drift vary on timescales
// much longer than bursts, so a wide blur approximates them well; removing
// the estimate isolates fast transient structure. Edges are handled by
// reflection so border pixels are not darkened by an implicit zero pad.
// Negative residuals are clipped to zero: emission above the noise floor is
// physically non-negative.
type GaussianBackground struct {
	sigmaFreq  float64
	sigmaTime  float64
	kernelFreq []float64
	kernelTime []float64
}

// NewGaussianBackground creates a background subtractor with the given
// standard deviations, in bins, along the frequency and time axes. Both
// must be positive and finite. Kernels are truncated at 4 sigma and
// normalized to unit sum.
func NewGaussianBackground(sigmaFreq, sigmaTime float64) (*GaussianBackground, error) {
	if !(sigmaFreq > 0) || math.IsInf(sigmaFreq, 0) {
		return nil, fmt.Errorf("%w: sigma_freq must be positive and finite, got %g", ErrInvalidWindow, sigmaFreq)
	}
	if !(sigmaTime > 0) || math.IsInf(sigmaTime, 0) {
		return nil, fmt.Errorf("%w: sigma_time must be positive and finite, got %g", ErrInvalidWindow, sigmaTime)
	}

	return &GaussianBackground{
		sigmaFreq:  sigmaFreq,
		sigmaTime:  sigmaTime,
		kernelFreq: gaussianKernel(sigmaFreq),
		kernelTime: gaussianKernel(sigmaTime),
	}, nil
}

// Apply returns the background-subtracted spectrogram. The input matrix is
// never mutated; output shape matches input shape.
func (g *GaussianBackground) Apply(samples [][]float64) [][]float64 {
	cleaned, _ := g.Components(samples)
	return cleaned
}

// Components returns both the background-subtracted spectrogram and the
// estimated background itself.
func (g *GaussianBackground) Components(samples [][]float64) (cleaned, background [][]float64) {
	background = g.smooth(samples)

	cleaned = make([][]float64, len(samples))
	for i, row := range samples {
		out := make([]float64, len(row))
		for j, val := range row {
			residual := val - background[i][j]
			if residual > 0 {
				out[j] = residual
			}
		}
		cleaned[i] = out
	}
	return cleaned, background
}

// smooth runs the separable blur: down each column (frequency axis) first,
// then along each row (time axis).
func (g *GaussianBackground) smooth(samples [][]float64) [][]float64 {
	nf := len(samples)
	if nf == 0 {
		return [][]float64{}
	}
	nt := len(samples[0])

	tmp := make([][]float64, nf)
	for i := range tmp {
		tmp[i] = make([]float64, nt)
	}

	col := make([]float64, nf)
	for j := 0; j < nt; j++ {
		for i := 0; i < nf; i++ {
			col[i] = samples[i][j]
		}
		smoothed := convolveReflect(col, g.kernelFreq)
		for i := 0; i < nf; i++ {
			tmp[i][j] = smoothed[i]
		}
	}

	out := make([][]float64, nf)
	for i := 0; i < nf; i++ {
		out[i] = convolveReflect(tmp[i], g.kernelTime)
	}
	return out
}

// gaussianKernel builds a unit-sum kernel truncated at 4 sigma, with a
// minimum radius of one bin.
func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(4 * sigma))
	if radius < 1 {
		radius = 1
	}

	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// convolveReflect convolves data with a symmetric kernel under the reflect
// boundary policy, switching to the FFT for long kernels.
func convolveReflect(data, kernel []float64) []float64 {
	if len(kernel) >= fftKernelThreshold && len(data) > 1 {
		return convolveReflectFFT(data, kernel)
	}

	n := len(data)
	radius := len(kernel) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for k, w := range kernel {
			acc += w * data[common.ReflectIndex(i+k-radius, n)]
		}
		out[i] = acc
	}
	return out
}

// convolveReflectFFT computes the same reflect-boundary convolution through
// a zero-padded FFT: the signal is reflect-padded by the kernel radius on
// both sides, linearly convolved in the frequency domain, and the valid
// center extracted. Relies on the kernel being symmetric, which makes
// correlation and convolution identical.
func convolveReflectFFT(data, kernel []float64) []float64 {
	n := len(data)
	radius := len(kernel) / 2

	padded := make([]float64, n+2*radius)
	for i := range padded {
		padded[i] = data[common.ReflectIndex(i-radius, n)]
	}

	size := common.NextPowerOfTwo(len(padded) + len(kernel) - 1)
	a := make([]float64, size)
	copy(a, padded)
	b := make([]float64, size)
	copy(b, kernel)

	fa := fft.FFTReal(a)
	fb := fft.FFTReal(b)
	for i := range fa {
		fa[i] *= fb[i]
	}
	full := fft.IFFT(fa)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = real(full[i+2*radius])
	}
	return out
}
