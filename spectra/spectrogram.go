package spectra

import (
	"errors"
	"time"
)

// Timestamps throughout the package are float64 seconds since UTC midnight
// of the nominal acquisition day. Samples recorded past midnight carry
// values >= SecondsPerDay after wrap resolution, so a reconstructed day
// always has a single monotone time axis.
const SecondsPerDay = 86400.0

var (
	// ErrOrdering reports an ambiguous or conflicting chunk ordering:
	// missing chunks, empty time axes, or overlapping time ranges.
	ErrOrdering = errors.New("spectra: ordering conflict")

	// ErrAxisMismatch reports frequency axes that disagree between chunks
	// merged into the same day.
	ErrAxisMismatch = errors.New("spectra: frequency axis mismatch")
)

// Chunk is one decoded station file: a frequency x time intensity matrix
// with explicit axes. Chunks are transient, produced by the archive decoder
// and consumed once by assembly.
type Chunk struct {
	FreqAxis []float64   `json:"freq_axis"`
	TimeAxis []float64   `json:"time_axis"`
	Samples  [][]float64 `json:"-"` // rows indexed by frequency bin
	Sequence int         `json:"sequence"`
}

// StartTime returns the timestamp of the first sample.
func (c Chunk) StartTime() float64 {
	return c.TimeAxis[0]
}

// EndTime returns the timestamp of the last sample.
func (c Chunk) EndTime() float64 {
	return c.TimeAxis[len(c.TimeAxis)-1]
}

// Width returns the number of time samples.
func (c Chunk) Width() int {
	return len(c.TimeAxis)
}

// shift returns a copy of the chunk whose time axis is offset by delta
// seconds. The sample matrix is shared; only the axis is fresh.
func (c Chunk) shift(delta float64) Chunk {
	axis := make([]float64, len(c.TimeAxis))
	for i, t := range c.TimeAxis {
		axis[i] = t + delta
	}
	c.TimeAxis = axis
	return c
}

// Spectrogram is one station-day of assembled data. It is created once per
// run and treated as immutable: denoising transforms return new sample
// matrices rather than writing through it.
type Spectrogram struct {
	Station  string      `json:"station"`
	Day      time.Time   `json:"day"`
	FreqAxis []float64   `json:"freq_axis"`
	TimeAxis []float64   `json:"time_axis"`
	Samples  [][]float64 `json:"-"` // rows indexed by frequency bin
}

// FreqBins returns the number of frequency bins.
func (s *Spectrogram) FreqBins() int {
	return len(s.FreqAxis)
}

// TimeBins returns the number of time samples.
func (s *Spectrogram) TimeBins() int {
	return len(s.TimeAxis)
}
