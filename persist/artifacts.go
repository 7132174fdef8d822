// Package persist writes and reads station-day artifacts in the layout the
// surrounding tooling expects: the sample matrix and the label index as
// NumPy .npy files, the axes as a JSON sidecar. The naming convention is
// spec-STATION-MM-DD-YYYY.npy, labels-... and meta-...
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/heliodyne/ecallisto/labels"
	"github.com/heliodyne/ecallisto/logging"
	"github.com/heliodyne/ecallisto/spectra"
)

// Metadata is the JSON sidecar carrying everything about a spectrogram
// except its sample matrix.
type Metadata struct {
	Station  string    `json:"station"`
	Day      string    `json:"day"` // YYYY-MM-DD
	FreqBins int       `json:"freq_bins"`
	TimeBins int       `json:"time_bins"`
	FreqAxis []float64 `json:"freq_axis"`
	TimeAxis []float64 `json:"time_axis"`
}

func artifactSuffix(station string, day time.Time) string {
	return fmt.Sprintf("%s-%s", station, day.Format("01-02-2006"))
}

// SpectrogramPath returns the sample-matrix artifact path for a station-day.
func SpectrogramPath(dir, station string, day time.Time) string {
	return filepath.Join(dir, "spec-"+artifactSuffix(station, day)+".npy")
}

// MetadataPath returns the axis-sidecar artifact path for a station-day.
func MetadataPath(dir, station string, day time.Time) string {
	return filepath.Join(dir, "meta-"+artifactSuffix(station, day)+".json")
}

// LabelsPath returns the label-index artifact path for a station-day.
func LabelsPath(dir, station string, day time.Time) string {
	return filepath.Join(dir, "labels-"+artifactSuffix(station, day)+".npy")
}

// WriteSpectrogram persists a spectrogram under dir as a dense float64 .npy
// matrix plus a JSON metadata sidecar, returning both paths.
func WriteSpectrogram(dir string, s *spectra.Spectrogram) (specPath, metaPath string, err error) {
	specPath = SpectrogramPath(dir, s.Station, s.Day)
	metaPath = MetadataPath(dir, s.Station, s.Day)

	m := mat.NewDense(s.FreqBins(), s.TimeBins(), nil)
	for i, row := range s.Samples {
		m.SetRow(i, row)
	}

	f, err := os.Create(specPath)
	if err != nil {
		return "", "", fmt.Errorf("creating %s: %w", specPath, err)
	}
	if err := npyio.Write(f, m); err != nil {
		_ = f.Close()
		return "", "", fmt.Errorf("writing %s: %w", specPath, err)
	}
	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("closing %s: %w", specPath, err)
	}

	meta := Metadata{
		Station:  s.Station,
		Day:      s.Day.Format("2006-01-02"),
		FreqBins: s.FreqBins(),
		TimeBins: s.TimeBins(),
		FreqAxis: s.FreqAxis,
		TimeAxis: s.TimeAxis,
	}
	encoded, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, encoded, 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", metaPath, err)
	}

	logging.Debug("persisted spectrogram", logging.Fields{
		"component": "persist",
		"spec":      specPath,
		"meta":      metaPath,
		"freq_bins": meta.FreqBins,
		"time_bins": meta.TimeBins,
	})
	return specPath, metaPath, nil
}

// ReadSpectrogram restores a spectrogram from its two artifacts.
func ReadSpectrogram(specPath, metaPath string) (*spectra.Spectrogram, error) {
	encoded, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", metaPath, err)
	}
	var meta Metadata
	if err := json.Unmarshal(encoded, &meta); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", metaPath, err)
	}
	day, err := time.Parse("2006-01-02", meta.Day)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: bad day %q: %w", metaPath, meta.Day, err)
	}

	f, err := os.Open(specPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", specPath, err)
	}
	defer func() { _ = f.Close() }()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, fmt.Errorf("reading %s: %w", specPath, err)
	}

	rows, cols := m.Dims()
	if rows != meta.FreqBins || cols != meta.TimeBins {
		return nil, fmt.Errorf("%s is %dx%d but metadata says %dx%d",
			specPath, rows, cols, meta.FreqBins, meta.TimeBins)
	}
	if len(meta.FreqAxis) != rows || len(meta.TimeAxis) != cols {
		return nil, fmt.Errorf("%s axis lengths %dx%d do not match shape %dx%d",
			metaPath, len(meta.FreqAxis), len(meta.TimeAxis), rows, cols)
	}

	samples := make([][]float64, rows)
	for i := range samples {
		row := make([]float64, cols)
		copy(row, m.RawRowView(i))
		samples[i] = row
	}

	return &spectra.Spectrogram{
		Station:  meta.Station,
		Day:      day,
		FreqAxis: meta.FreqAxis,
		TimeAxis: meta.TimeAxis,
		Samples:  samples,
	}, nil
}

// WriteLabels persists a label index as a 1D int64 .npy of flattened
// (start, end) pairs, interoperable with the Python tooling.
func WriteLabels(path string, idx *labels.Index) error {
	flat := make([]int64, 0, 2*len(idx.Ranges))
	for _, r := range idx.Ranges {
		flat = append(flat, int64(r[0]), int64(r[1]))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := npyio.Write(f, flat); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadLabels restores a label index written by WriteLabels.
func ReadLabels(path string) (*labels.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var flat []int64
	if err := npyio.Read(f, &flat); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("%s holds %d values, expected an even count of index pairs", path, len(flat))
	}

	idx := &labels.Index{}
	for i := 0; i < len(flat); i += 2 {
		idx.Ranges = append(idx.Ranges, [2]int{int(flat[i]), int(flat[i+1])})
	}
	return idx, nil
}
