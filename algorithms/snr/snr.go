// Package snr scores a labeled spectrogram with a single decibel metric,
// used to compare denoising transforms against each other and against the
// raw input.
package snr

import (
	"errors"
	"fmt"
	"math"

	"github.com/heliodyne/ecallisto/algorithms/common"
)

// ErrDegenerateSNR reports an evaluation whose power ratio is undefined:
// an empty signal or noise partition, or zero noise power. Returned instead
// of an infinite ratio.
var ErrDegenerateSNR = errors.New("snr: degenerate power ratio")

// Result carries the scalar metric together with the intermediate
// quantities useful for reporting.
type Result struct {
	SNRdB         float64 `json:"snr_db"`
	SignalPower   float64 `json:"signal_power"`
	NoisePower    float64 `json:"noise_power"`
	SignalMean    float64 `json:"signal_mean"`
	NoiseMean     float64 `json:"noise_mean"`
	SignalSamples int     `json:"signal_samples"`
	NoiseSamples  int     `json:"noise_samples"`
}

// Flux collapses the frequency axis by taking the mean over frequency bins
// at each time index, producing a 1D flux series.
func Flux(samples [][]float64) []float64 {
	nf := len(samples)
	if nf == 0 {
		return []float64{}
	}
	nt := len(samples[0])

	flux := make([]float64, nt)
	for _, row := range samples {
		for j, val := range row {
			flux[j] += val
		}
	}
	for j := range flux {
		flux[j] /= float64(nf)
	}
	return flux
}

// Evaluate computes the signal-to-noise ratio, in dB, of a spectrogram
// whose burst intervals are given as closed index ranges on the time axis.
//
// Time indices inside any range form the signal partition, all others the
// noise partition; ranges are clipped to the axis and inverted ranges are
// ignored. The metric is 10*log10(mean(signal flux^2) / mean(noise flux^2)).
// Deterministic for identical inputs; neither argument is mutated.
func Evaluate(samples [][]float64, ranges [][2]int) (*Result, error) {
	flux := Flux(samples)
	nt := len(flux)
	if nt == 0 {
		return nil, fmt.Errorf("%w: empty spectrogram", ErrDegenerateSNR)
	}

	mask := make([]bool, nt)
	for _, r := range ranges {
		lo := common.ClampIndex(r[0], nt)
		hi := common.ClampIndex(r[1], nt)
		for j := lo; j <= hi; j++ {
			mask[j] = true
		}
	}

	var signal, noise []float64
	for j, inside := range mask {
		if inside {
			signal = append(signal, flux[j])
		} else {
			noise = append(noise, flux[j])
		}
	}

	if len(signal) == 0 {
		return nil, fmt.Errorf("%w: no labeled signal samples", ErrDegenerateSNR)
	}
	if len(noise) == 0 {
		return nil, fmt.Errorf("%w: no noise samples outside labels", ErrDegenerateSNR)
	}

	signalPower := common.MeanSquared(signal)
	noisePower := common.MeanSquared(noise)
	if noisePower == 0 {
		return nil, fmt.Errorf("%w: zero noise power over %d samples", ErrDegenerateSNR, len(noise))
	}

	return &Result{
		SNRdB:         10 * math.Log10(signalPower/noisePower),
		SignalPower:   signalPower,
		NoisePower:    noisePower,
		SignalMean:    common.Mean(signal),
		NoiseMean:     common.Mean(noise),
		SignalSamples: len(signal),
		NoiseSamples:  len(noise),
	}, nil
}
