// Package labels maps externally cataloged burst time intervals onto
// integer index ranges of an assembled spectrogram's time axis.
package labels

import (
	"sort"

	"github.com/heliodyne/ecallisto/logging"
	"github.com/heliodyne/ecallisto/spectra"
)

// Burst is one cataloged burst interval, in seconds since UTC midnight,
// closed on both ends. Bursts are externally supplied and read-only.
type Burst struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Type  string  `json:"type,omitempty"`
}

// Index holds burst intervals resolved to closed index ranges on a
// spectrogram time axis. It is derived data: discardable and regenerable
// from the axis plus the burst set.
type Index struct {
	Ranges  [][2]int `json:"ranges"`
	Dropped int      `json:"dropped"`
}

type alignConfig struct {
	pad float64
}

// AlignOption configures a single Align call.
type AlignOption func(*alignConfig)

// WithPad widens every burst symmetrically by the given number of seconds
// before index lookup, cushioning imprecise catalog times.
func WithPad(seconds float64) AlignOption {
	return func(c *alignConfig) {
		c.pad = seconds
	}
}

// Align resolves bursts to closed index ranges on the given time axis,
// which must be strictly increasing.
//
// Lookup uses nearest-inside semantics: the first index with timestamp >=
// Start and the last index with timestamp <= End. A burst lying entirely
// before the axis origin is shifted forward by one day first, so catalog
// entries from the post-midnight tail of a wrapped day land correctly.
// Bursts falling entirely outside the axis are dropped and counted, never
// an error: partial label coverage is expected. Overlapping bursts are not
// merged; that is the caller's concern.
func Align(timeAxis []float64, bursts []Burst, opts ...AlignOption) *Index {
	cfg := alignConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	idx := &Index{}
	if len(timeAxis) == 0 {
		idx.Dropped = len(bursts)
		return idx
	}

	origin := timeAxis[0]
	for _, b := range bursts {
		start, end := b.Start, b.End
		if end < origin {
			start += spectra.SecondsPerDay
			end += spectra.SecondsPerDay
		}
		start -= cfg.pad
		end += cfg.pad

		lo := sort.SearchFloat64s(timeAxis, start)
		hi := sort.SearchFloat64s(timeAxis, end)
		if hi == len(timeAxis) || timeAxis[hi] > end {
			hi--
		}

		if lo >= len(timeAxis) || hi < 0 || lo > hi {
			idx.Dropped++
			continue
		}
		idx.Ranges = append(idx.Ranges, [2]int{lo, hi})
	}

	if idx.Dropped > 0 {
		logging.Warn("dropped bursts outside spectrogram time range", logging.Fields{
			"component": "label_aligner",
			"dropped":   idx.Dropped,
			"total":     len(bursts),
		})
	}
	return idx
}
