package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2025, 5, 13, 0, 0, 0, 0, time.UTC)

// buildFITSGz builds a gzip-compressed FITS file with a float32 primary
// HDU of nf frequency rows (stored top-down) by nt time columns.
func buildFITSGz(t *testing.T, nf, nt int, fill func(row, col int) float32) []byte {
	t.Helper()

	var fitsBuf bytes.Buffer
	f, err := fitsio.Create(&fitsBuf)
	require.NoError(t, err)

	img := fitsio.NewImage(-32, []int{nt, nf})
	defer func() { _ = img.Close() }()

	require.NoError(t, img.Header().Append(
		fitsio.Card{Name: "CDELT1", Value: 0.25, Comment: "time resolution in seconds"},
		fitsio.Card{Name: "CRVAL2", Value: 80.0, Comment: "frequency of first stored row"},
		fitsio.Card{Name: "CDELT2", Value: -1.0, Comment: "frequency step, descending"},
	))

	data := make([]float32, nf*nt)
	for row := 0; row < nf; row++ {
		for col := 0; col < nt; col++ {
			data[row*nt+col] = fill(row, col)
		}
	}
	require.NoError(t, img.Write(&data))
	require.NoError(t, f.Write(img))
	require.NoError(t, f.Close())

	var gzBuf bytes.Buffer
	gz := gzip.NewWriter(&gzBuf)
	_, err = gz.Write(fitsBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return gzBuf.Bytes()
}

// newArchiveServer serves a day listing plus the station files it names.
func newArchiveServer(t *testing.T, files map[string][]byte, burstList string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/data/2025/05/13/", func(w http.ResponseWriter, r *http.Request) {
		var listing bytes.Buffer
		listing.WriteString(`<html><body><a href="../">Parent</a>`)
		for name := range files {
			fmt.Fprintf(&listing, `<a href="%s">%s</a>`, name, name)
		}
		listing.WriteString(`</body></html>`)
		_, _ = w.Write(listing.Bytes())
	})
	for name, payload := range files {
		mux.HandleFunc("/data/2025/05/13/"+name, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(payload)
		})
	}
	mux.HandleFunc("/bursts/2025/e-CALLISTO_2025_05.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(burstList))
	})
	return httptest.NewServer(mux)
}

func testClient(server *httptest.Server) *Client {
	cfg := DefaultClientConfig()
	cfg.BaseURL = server.URL + "/data/"
	cfg.BurstListURL = server.URL + "/bursts/"
	return NewClient(cfg)
}

func TestFetchDayDecodesChunks(t *testing.T) {
	const nf, nt = 8, 16

	// Encode the stored row index so row flipping is observable.
	payload := buildFITSGz(t, nf, nt, func(row, col int) float32 {
		return float32(row*100 + col)
	})
	files := map[string][]byte{
		"ALASKA-ANCHORAGE_20250513_220000_59.fit.gz": payload,
		"ALASKA-ANCHORAGE_20250513_221500_59.fit.gz": payload,
		"AUSTRIA-UNIGRAZ_20250513_220000_01.fit.gz":  payload,
	}
	server := newArchiveServer(t, files, "")
	defer server.Close()

	chunks, err := testClient(server).FetchDay(context.Background(), "ALASKA-ANCHORAGE", testDay)
	require.NoError(t, err)
	require.Len(t, chunks, 2, "only the requested station's files are fetched")

	for _, chunk := range chunks {
		require.Len(t, chunk.FreqAxis, nf)
		require.Len(t, chunk.TimeAxis, nt)
		require.Len(t, chunk.Samples, nf)

		// Stored top-down with CDELT2 = -1 from 80 MHz: after flipping,
		// the axis ascends from 80-(nf-1).
		assert.Equal(t, 73.0, chunk.FreqAxis[0])
		assert.Equal(t, 80.0, chunk.FreqAxis[nf-1])

		// Row 0 now holds the lowest frequency, i.e. stored row nf-1.
		assert.Equal(t, float64((nf-1)*100), chunk.Samples[0][0])
		assert.Equal(t, 0.0, chunk.Samples[nf-1][0])
		assert.Equal(t, 3.0, chunk.Samples[nf-1][3])

		// Time axis runs at the CDELT1 cadence from the filename time.
		assert.InDelta(t, 0.25, chunk.TimeAxis[1]-chunk.TimeAxis[0], 1e-9)
	}

	starts := []float64{chunks[0].TimeAxis[0], chunks[1].TimeAxis[0]}
	assert.Contains(t, starts, 22.0*3600)
	assert.Contains(t, starts, 22.0*3600+15*60)
}

func TestListDayNoStationFiles(t *testing.T) {
	server := newArchiveServer(t, map[string][]byte{
		"AUSTRIA-UNIGRAZ_20250513_220000_01.fit.gz": {},
	}, "")
	defer server.Close()

	_, err := testClient(server).ListDay(context.Background(), "ALASKA-ANCHORAGE", testDay)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestListDaySkipsFilesWithoutTimes(t *testing.T) {
	server := newArchiveServer(t, map[string][]byte{
		"ALASKA-ANCHORAGE_20250513_220000_59.fit.gz": {},
		"ALASKA-ANCHORAGE_readme.txt":                {},
	}, "")
	defer server.Close()

	files, err := testClient(server).ListDay(context.Background(), "ALASKA-ANCHORAGE", testDay)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 22.0*3600, files[0].StartSec)
	assert.Equal(t, 0, files[0].Sequence)
}

func TestFetchBursts(t *testing.T) {
	burstList := "#header\n" +
		"20250513\t05:12-05:14\tIII\tALASKA-ANCHORAGE\n" +
		"20250513\t06:00-06:01\tII\tAUSTRIA-UNIGRAZ\n"
	server := newArchiveServer(t, map[string][]byte{}, burstList)
	defer server.Close()

	bursts, err := testClient(server).FetchBursts(context.Background(), "ALASKA-ANCHORAGE", testDay)
	require.NoError(t, err)
	require.Len(t, bursts, 1)
	assert.Equal(t, float64(5*3600+12*60), bursts[0].Start)
	assert.Equal(t, float64(5*3600+14*60), bursts[0].End)
}

func TestFetchDayPropagatesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := testClient(server).FetchDay(context.Background(), "ALASKA-ANCHORAGE", testDay)
	require.Error(t, err)
}

func TestFileStartTime(t *testing.T) {
	tests := []struct {
		name string
		want float64
		ok   bool
	}{
		{"ALASKA-ANCHORAGE_20250513_220000_59.fit.gz", 22 * 3600, true},
		{"OLD-STATION_20040102_093000i.fit.gz", 9*3600 + 30*60, true},
		{"ALASKA-ANCHORAGE_readme.txt", 0, false},
	}
	for _, tt := range tests {
		got, ok := fileStartTime(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		if ok {
			assert.Equal(t, tt.want, got, tt.name)
		}
	}
}
