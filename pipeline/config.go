package pipeline

// Config holds the numeric knobs of one station-day run. Invalid values
// are never silently replaced: they surface as errors from the component
// they reach.
type Config struct {
	// Gaussian background estimation, standard deviations in bins.
	SigmaFreq float64 `json:"sigma_freq"`
	SigmaTime float64 `json:"sigma_time"`

	// Median despike window sizes, odd bin counts.
	MedianFreqWindow int `json:"median_freq_window"`
	MedianTimeWindow int `json:"median_time_window"`

	// Smallest interior gap, in seconds, treated as the day boundary.
	GapThresholdSec float64 `json:"gap_threshold_sec"`

	// Symmetric cushion, in seconds, around cataloged burst intervals.
	LabelPadSec float64 `json:"label_pad_sec"`

	// Fixed day start in seconds since UTC midnight. Negative selects
	// automatic gap detection.
	DayStartSec float64 `json:"day_start_sec"`
}

// DefaultConfig returns the defaults used for archive data: mild smoothing
// across frequency, aggressive smoothing across time (bursts are short),
// a small despike window, and a day-boundary threshold of two nominal
// 900 s file durations.
func DefaultConfig() *Config {
	return &Config{
		SigmaFreq:        1.0,
		SigmaTime:        20.0,
		MedianFreqWindow: 3,
		MedianTimeWindow: 3,
		GapThresholdSec:  1800.0,
		LabelPadSec:      60.0,
		DayStartSec:      -1,
	}
}
