package filters

import (
	"fmt"

	"github.com/heliodyne/ecallisto/algorithms/common"
)

// MedianDespike suppresses impulsive interference with a 2D median filter.
//
// RFI artifacts show up as bright isolated pixels or tiny blobs; replacing
// each pixel with the median of its rectangular neighborhood removes such
// outliers while preserving sharp burst edges, which a mean-based blur
// would smear into neighboring cells. Boundaries are handled by edge-value
// replication, never wraparound.
type MedianDespike struct {
	windowFreq int
	windowTime int
}

// NewMedianDespike creates a despiker with the given window sizes along the
// frequency and time axes. Both must be odd and positive.
func NewMedianDespike(windowFreq, windowTime int) (*MedianDespike, error) {
	if windowFreq <= 0 || windowFreq%2 == 0 {
		return nil, fmt.Errorf("%w: frequency window must be a positive odd integer, got %d", ErrInvalidWindow, windowFreq)
	}
	if windowTime <= 0 || windowTime%2 == 0 {
		return nil, fmt.Errorf("%w: time window must be a positive odd integer, got %d", ErrInvalidWindow, windowTime)
	}

	return &MedianDespike{
		windowFreq: windowFreq,
		windowTime: windowTime,
	}, nil
}

// Apply returns the median-filtered spectrogram. The input matrix is never
// mutated; output shape matches input shape.
func (m *MedianDespike) Apply(samples [][]float64) [][]float64 {
	nf := len(samples)
	if nf == 0 {
		return [][]float64{}
	}
	nt := len(samples[0])

	radiusFreq := m.windowFreq / 2
	radiusTime := m.windowTime / 2
	window := make([]float64, 0, m.windowFreq*m.windowTime)

	out := make([][]float64, nf)
	for i := 0; i < nf; i++ {
		row := make([]float64, nt)
		for j := 0; j < nt; j++ {
			window = window[:0]
			for di := -radiusFreq; di <= radiusFreq; di++ {
				src := samples[common.ClampIndex(i+di, nf)]
				for dj := -radiusTime; dj <= radiusTime; dj++ {
					window = append(window, src[common.ClampIndex(j+dj, nt)])
				}
			}
			row[j] = common.MedianInPlace(window)
		}
		out[i] = row
	}
	return out
}
