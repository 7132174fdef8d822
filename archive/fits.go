package archive

import (
	"bytes"
	"fmt"

	"github.com/astrogo/fitsio"

	"github.com/heliodyne/ecallisto/spectra"
)

// DefaultCadence is the nominal e-Callisto sampling interval in seconds
// (4 samples per second), used when the header carries no CDELT1.
const DefaultCadence = 0.25

// decodeFITS turns the primary HDU of a raw FITS payload into a chunk.
//
// NAXIS1 runs along time and NAXIS2 along frequency, with frequency rows
// stored top-down; rows and the frequency axis are flipped so frequency
// ascends. BSCALE/BZERO scaling from the header is applied. The time axis
// is synthesized from the filename start time plus the CDELT1 cadence; the
// frequency axis comes from CRVAL2/CDELT2 when present, bin indices
// otherwise.
func decodeFITS(raw []byte, startSec float64, sequence int) (spectra.Chunk, error) {
	f, err := fitsio.Open(bytes.NewReader(raw))
	if err != nil {
		return spectra.Chunk{}, fmt.Errorf("opening FITS payload: %w", err)
	}
	defer func() { _ = f.Close() }()

	hdu := f.HDU(0)
	img, ok := hdu.(fitsio.Image)
	if !ok {
		return spectra.Chunk{}, fmt.Errorf("primary HDU is not an image")
	}

	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) != 2 {
		return spectra.Chunk{}, fmt.Errorf("expected a 2D image, got %d axes", len(axes))
	}
	nt, nf := axes[0], axes[1]
	if nt <= 0 || nf <= 0 {
		return spectra.Chunk{}, fmt.Errorf("degenerate image shape %dx%d", nf, nt)
	}

	data, err := readPixels(img, hdr.Bitpix(), nt*nf)
	if err != nil {
		return spectra.Chunk{}, err
	}

	bscale := headerFloat(hdr, "BSCALE", 1)
	bzero := headerFloat(hdr, "BZERO", 0)
	cadence := headerFloat(hdr, "CDELT1", DefaultCadence)
	if cadence <= 0 {
		cadence = DefaultCadence
	}

	samples := make([][]float64, nf)
	for i := 0; i < nf; i++ {
		src := nf - 1 - i
		row := make([]float64, nt)
		for j := 0; j < nt; j++ {
			row[j] = data[src*nt+j]*bscale + bzero
		}
		samples[i] = row
	}

	freqAxis := make([]float64, nf)
	if crval := hdr.Get("CRVAL2"); crval != nil {
		ref := headerFloat(hdr, "CRVAL2", 0)
		step := headerFloat(hdr, "CDELT2", 1)
		for i := 0; i < nf; i++ {
			freqAxis[i] = ref + float64(nf-1-i)*step
		}
	} else {
		for i := 0; i < nf; i++ {
			freqAxis[i] = float64(i)
		}
	}

	timeAxis := make([]float64, nt)
	for j := 0; j < nt; j++ {
		timeAxis[j] = startSec + float64(j)*cadence
	}

	return spectra.Chunk{
		FreqAxis: freqAxis,
		TimeAxis: timeAxis,
		Samples:  samples,
		Sequence: sequence,
	}, nil
}

// readPixels reads the image payload as float64 regardless of the stored
// BITPIX.
func readPixels(img fitsio.Image, bitpix, n int) ([]float64, error) {
	var (
		out []float64
		err error
	)

	switch bitpix {
	case 8:
		v := make([]uint8, n)
		if err = img.Read(&v); err == nil {
			out = toFloat64(v)
		}
	case 16:
		v := make([]int16, n)
		if err = img.Read(&v); err == nil {
			out = toFloat64(v)
		}
	case 32:
		v := make([]int32, n)
		if err = img.Read(&v); err == nil {
			out = toFloat64(v)
		}
	case 64:
		v := make([]int64, n)
		if err = img.Read(&v); err == nil {
			out = toFloat64(v)
		}
	case -32:
		v := make([]float32, n)
		if err = img.Read(&v); err == nil {
			out = toFloat64(v)
		}
	case -64:
		out = make([]float64, n)
		err = img.Read(&out)
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}
	if err != nil {
		return nil, fmt.Errorf("reading BITPIX %d pixels: %w", bitpix, err)
	}

	if len(out) != n {
		return nil, fmt.Errorf("pixel count %d does not match image shape %d", len(out), n)
	}
	return out, nil
}

func toFloat64[T uint8 | int16 | int32 | int64 | float32](v []T) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// headerFloat reads a numeric header card, tolerating the integer types
// FITS writers commonly emit.
func headerFloat(hdr *fitsio.Header, name string, fallback float64) float64 {
	card := hdr.Get(name)
	if card == nil {
		return fallback
	}

	switch v := card.Value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}
