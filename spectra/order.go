package spectra

import (
	"fmt"
	"sort"
)

// DefaultGapThreshold is the smallest interior gap, in seconds, treated as
// the day boundary. Station files nominally cover 900 s, so two missing
// files in a row still do not trigger a wrap.
const DefaultGapThreshold = 1800.0

type orderConfig struct {
	gapThreshold float64
	dayStart     float64
	hasDayStart  bool
}

// OrderOption configures a single Order call.
type OrderOption func(*orderConfig)

// WithGapThreshold sets the minimum interior gap, in seconds, that is
// interpreted as the acquisition day boundary.
func WithGapThreshold(seconds float64) OrderOption {
	return func(c *orderConfig) {
		c.gapThreshold = seconds
	}
}

// WithDayStart disables gap auto-detection and rotates the ordering so the
// first chunk starting at or after the given time of day (seconds since UTC
// midnight) leads. This mirrors the archive convention of stations whose
// local day begins at a fixed UTC offset.
func WithDayStart(seconds float64) OrderOption {
	return func(c *orderConfig) {
		c.dayStart = seconds
		c.hasDayStart = true
	}
}

// Order produces the unique chronological ordering of a day's chunks.
//
// Acquisition cycles may restart near local midnight, so a naive timestamp
// sort can place the post-midnight tail of the day before its start. Order
// treats timestamps as points on a circle of period one day: it sorts the
// chunks ascending, measures every circular gap between consecutive chunks
// (including the closing gap through midnight), and if the largest gap is an
// interior one of at least the threshold, rotates the ordering to start
// immediately after it. Timestamps of the wrapped prefix are shifted by one
// day so the concatenated global axis is strictly increasing. When no
// interior gap reaches the threshold the natural ascending order stands.
//
// Ties on the start timestamp break toward the lower file sequence number.
// Input chunks are never mutated; shifted chunks get fresh time axes.
func Order(chunks []Chunk, opts ...OrderOption) ([]Chunk, error) {
	cfg := orderConfig{gapThreshold: DefaultGapThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks supplied", ErrOrdering)
	}
	for _, c := range chunks {
		if len(c.TimeAxis) == 0 {
			return nil, fmt.Errorf("%w: chunk %d has an empty time axis", ErrOrdering, c.Sequence)
		}
	}

	ordered := make([]Chunk, len(chunks))
	copy(ordered, chunks)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StartTime() != ordered[j].StartTime() {
			return ordered[i].StartTime() < ordered[j].StartTime()
		}
		return ordered[i].Sequence < ordered[j].Sequence
	})

	// pivot is the index of the last chunk before the day boundary; chunks
	// after it lead the day and everything up to it wraps past midnight.
	pivot := -1
	n := len(ordered)
	switch {
	case cfg.hasDayStart:
		for i, c := range ordered {
			if c.StartTime() >= cfg.dayStart {
				pivot = i - 1
				break
			}
		}
	case n > 1:
		maxGap := ordered[0].StartTime() + SecondsPerDay - ordered[n-1].EndTime()
		maxIdx := n - 1
		for i := 0; i < n-1; i++ {
			gap := ordered[i+1].StartTime() - ordered[i].EndTime()
			if gap > maxGap {
				maxGap = gap
				maxIdx = i
			}
		}
		// The closing gap through midnight winning means the data already
		// sits inside a single day.
		if maxIdx != n-1 && maxGap >= cfg.gapThreshold {
			pivot = maxIdx
		}
	}

	if pivot >= 0 && pivot < n-1 {
		rotated := make([]Chunk, 0, n)
		rotated = append(rotated, ordered[pivot+1:]...)
		for _, c := range ordered[:pivot+1] {
			rotated = append(rotated, c.shift(SecondsPerDay))
		}
		ordered = rotated
	}

	// Overlap is data corruption: detect it, never resolve it silently.
	for i := 1; i < len(ordered); i++ {
		if ordered[i].StartTime() <= ordered[i-1].EndTime() {
			return nil, fmt.Errorf("%w: chunks %d and %d have overlapping time ranges",
				ErrOrdering, ordered[i-1].Sequence, ordered[i].Sequence)
		}
	}

	return ordered, nil
}
