package spectra

import (
	"fmt"
	"time"
)

// Assemble concatenates ordered chunks into one station-day spectrogram.
//
// Every chunk must carry an element-wise identical frequency axis; the axis
// is a fixed instrument configuration, so comparison is exact with zero
// tolerance. Samples and time axes are copied into fresh arrays, never
// aliased from the caller. The assembled time axis is re-verified to be
// strictly increasing as a defensive invariant check independent of Order.
func Assemble(station string, day time.Time, chunks []Chunk) (*Spectrogram, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks to assemble", ErrOrdering)
	}

	freq := chunks[0].FreqAxis
	total := 0
	for _, c := range chunks {
		if len(c.FreqAxis) != len(freq) {
			return nil, fmt.Errorf("%w: chunk %d has %d frequency bins, expected %d",
				ErrAxisMismatch, c.Sequence, len(c.FreqAxis), len(freq))
		}
		for k := range freq {
			if c.FreqAxis[k] != freq[k] {
				return nil, fmt.Errorf("%w: chunk %d differs at bin %d (%g != %g)",
					ErrAxisMismatch, c.Sequence, k, c.FreqAxis[k], freq[k])
			}
		}
		if len(c.Samples) != len(c.FreqAxis) {
			return nil, fmt.Errorf("%w: chunk %d has %d sample rows for %d frequency bins",
				ErrAxisMismatch, c.Sequence, len(c.Samples), len(c.FreqAxis))
		}
		for i, row := range c.Samples {
			if len(row) != c.Width() {
				return nil, fmt.Errorf("%w: chunk %d row %d has %d samples for %d timestamps",
					ErrAxisMismatch, c.Sequence, i, len(row), c.Width())
			}
		}
		total += c.Width()
	}

	timeAxis := make([]float64, 0, total)
	samples := make([][]float64, len(freq))
	for i := range samples {
		samples[i] = make([]float64, total)
	}

	col := 0
	for _, c := range chunks {
		timeAxis = append(timeAxis, c.TimeAxis...)
		for i, row := range c.Samples {
			copy(samples[i][col:], row)
		}
		col += c.Width()
	}

	for i := 1; i < len(timeAxis); i++ {
		if timeAxis[i] <= timeAxis[i-1] {
			return nil, fmt.Errorf("%w: assembled time axis not strictly increasing at index %d",
				ErrOrdering, i)
		}
	}

	freqAxis := make([]float64, len(freq))
	copy(freqAxis, freq)

	return &Spectrogram{
		Station:  station,
		Day:      day,
		FreqAxis: freqAxis,
		TimeAxis: timeAxis,
		Samples:  samples,
	}, nil
}
