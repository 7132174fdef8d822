// Package pipeline drives one station-day: chronological reconstruction of
// the spectrogram from decoded chunks, burst-label alignment, and the SNR
// comparison of the denoising transforms.
package pipeline

import (
	"time"

	"github.com/heliodyne/ecallisto/labels"
	"github.com/heliodyne/ecallisto/logging"
	"github.com/heliodyne/ecallisto/spectra"
)

// Pipeline runs station-day preprocessing with a fixed configuration. All
// methods are pure over their inputs, so one Pipeline is safe to use for
// independent station-days in parallel.
type Pipeline struct {
	config *Config
	logger logging.Logger
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(config *Config) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}

	logger := logging.WithFields(logging.Fields{
		"component": "pipeline",
	})

	return &Pipeline{
		config: config,
		logger: logger,
	}
}

// AssembleDay orders a day's chunks chronologically and concatenates them
// into one spectrogram.
func (p *Pipeline) AssembleDay(station string, day time.Time, chunks []spectra.Chunk) (*spectra.Spectrogram, error) {
	opts := []spectra.OrderOption{spectra.WithGapThreshold(p.config.GapThresholdSec)}
	if p.config.DayStartSec >= 0 {
		opts = append(opts, spectra.WithDayStart(p.config.DayStartSec))
	}

	ordered, err := spectra.Order(chunks, opts...)
	if err != nil {
		p.logger.Error(err, "chunk ordering failed", logging.Fields{
			"station": station,
			"chunks":  len(chunks),
		})
		return nil, err
	}

	s, err := spectra.Assemble(station, day, ordered)
	if err != nil {
		p.logger.Error(err, "assembly failed", logging.Fields{
			"station": station,
			"chunks":  len(ordered),
		})
		return nil, err
	}

	p.logger.Info("assembled station day", logging.Fields{
		"station":   station,
		"day":       day.Format("2006-01-02"),
		"chunks":    len(ordered),
		"freq_bins": s.FreqBins(),
		"time_bins": s.TimeBins(),
	})
	return s, nil
}

// AlignBursts maps cataloged bursts onto the spectrogram's time axis,
// applying the configured padding.
func (p *Pipeline) AlignBursts(s *spectra.Spectrogram, bursts []labels.Burst) *labels.Index {
	idx := labels.Align(s.TimeAxis, bursts, labels.WithPad(p.config.LabelPadSec))

	p.logger.Debug("aligned bursts", logging.Fields{
		"station": s.Station,
		"bursts":  len(bursts),
		"ranges":  len(idx.Ranges),
		"dropped": idx.Dropped,
	})
	return idx
}
