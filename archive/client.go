// Package archive fetches e-Callisto station data: per-day directory
// listings, compressed FITS spectrogram files, and monthly burst catalogs.
// It is the blocking-I/O collaborator of the otherwise pure pipeline; all
// calls take a context and the decoded output is handed to spectra as
// plain chunks.
package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/heliodyne/ecallisto/labels"
	"github.com/heliodyne/ecallisto/logging"
	"github.com/heliodyne/ecallisto/spectra"
)

const (
	// DefaultBaseURL is the e-Callisto data archive root.
	DefaultBaseURL = "https://soleil.i4ds.ch/solarradio/data/2002-20yy_Callisto/"

	// DefaultBurstListURL is the root of the monthly burst lists. The
	// pre-2010 list layout differs and is not supported.
	DefaultBurstListURL = "https://soleil.i4ds.ch/solarradio/data/BurstLists/2010-yyyy_Monstein/"
)

// ErrNoFiles reports a day listing with no files for the requested station.
var ErrNoFiles = errors.New("archive: no station files for day")

// Start times are encoded as HHMMSS in the filename; older archives append
// an "i" (intensity) marker instead of a trailing underscore.
var (
	fileTimeRe    = regexp.MustCompile(`_(\d{6})_`)
	fileTimeOldRe = regexp.MustCompile(`_(\d{6})i`)
)

// ClientConfig holds archive client configuration
type ClientConfig struct {
	BaseURL       string        `json:"base_url"`
	BurstListURL  string        `json:"burst_list_url"`
	Timeout       time.Duration `json:"timeout"`
	MaxConcurrent int           `json:"max_concurrent"` // parallel file downloads
	UserAgent     string        `json:"user_agent"`
}

// DefaultClientConfig returns default archive client configuration
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       DefaultBaseURL,
		BurstListURL:  DefaultBurstListURL,
		Timeout:       60 * time.Second,
		MaxConcurrent: 4,
		UserAgent:     "ecallisto-go/1.0",
	}
}

// Client downloads and decodes e-Callisto archive data
type Client struct {
	config *ClientConfig
	http   *http.Client
	logger logging.Logger
}

// NewClient creates a new archive client
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}

	logger := logging.WithFields(logging.Fields{
		"component": "archive_client",
	})

	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// RemoteFile is one station file found in a day listing.
type RemoteFile struct {
	Name     string  `json:"name"`
	URL      string  `json:"url"`
	StartSec float64 `json:"start_sec"` // seconds since UTC midnight, from the filename
	Sequence int     `json:"sequence"`  // position in the listing
}

// ListDay fetches the archive directory for a day and returns the files
// recorded by the given station, in listing order. Returns ErrNoFiles when
// the listing contains nothing for the station.
func (c *Client) ListDay(ctx context.Context, station string, day time.Time) ([]RemoteFile, error) {
	dayURL, err := url.JoinPath(c.config.BaseURL, day.Format("2006"), day.Format("01"), day.Format("02"), "/")
	if err != nil {
		return nil, fmt.Errorf("building day URL: %w", err)
	}

	body, err := c.get(ctx, dayURL)
	if err != nil {
		return nil, err
	}

	hrefs, err := listingHrefs(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing listing %s: %w", dayURL, err)
	}

	base, err := url.Parse(dayURL)
	if err != nil {
		return nil, fmt.Errorf("parsing day URL: %w", err)
	}

	var files []RemoteFile
	for _, href := range hrefs {
		if !strings.Contains(href, station) {
			continue
		}
		startSec, ok := fileStartTime(href)
		if !ok {
			c.logger.Warn("skipping file without a recognizable start time", logging.Fields{
				"file": href,
			})
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		files = append(files, RemoteFile{
			Name:     href,
			URL:      base.ResolveReference(ref).String(),
			StartSec: startSec,
			Sequence: len(files),
		})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: station %s at %s", ErrNoFiles, station, dayURL)
	}

	c.logger.Debug("listed station day", logging.Fields{
		"station": station,
		"day":     day.Format("2006-01-02"),
		"files":   len(files),
	})
	return files, nil
}

// FetchDay downloads and decodes every station file for a day. Downloads
// run with bounded parallelism; completion order is irrelevant because
// chronological order is re-established by spectra.Order afterwards.
func (c *Client) FetchDay(ctx context.Context, station string, day time.Time) ([]spectra.Chunk, error) {
	files, err := c.ListDay(ctx, station, day)
	if err != nil {
		return nil, err
	}

	chunks := make([]spectra.Chunk, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.MaxConcurrent)
	for i, rf := range files {
		i, rf := i, rf
		g.Go(func() error {
			chunk, err := c.fetchChunk(ctx, rf)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", rf.Name, err)
			}
			chunks[i] = chunk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Info("fetched station day", logging.Fields{
		"station": station,
		"day":     day.Format("2006-01-02"),
		"chunks":  len(chunks),
	})
	return chunks, nil
}

// FetchBursts downloads the monthly burst list and returns the bursts
// observed by the station on the given day.
func (c *Client) FetchBursts(ctx context.Context, station string, day time.Time) ([]labels.Burst, error) {
	listURL, err := url.JoinPath(c.config.BurstListURL, day.Format("2006"),
		fmt.Sprintf("e-CALLISTO_%s.txt", day.Format("2006_01")))
	if err != nil {
		return nil, fmt.Errorf("building burst list URL: %w", err)
	}

	body, err := c.get(ctx, listURL)
	if err != nil {
		return nil, err
	}
	return labels.ParseMonthlyCatalog(bytes.NewReader(body), day, station)
}

// fetchChunk downloads one compressed file, decompresses it in memory and
// decodes the FITS payload.
func (c *Client) fetchChunk(ctx context.Context, rf RemoteFile) (spectra.Chunk, error) {
	body, err := c.get(ctx, rf.URL)
	if err != nil {
		return spectra.Chunk{}, err
	}

	raw := body
	if strings.HasSuffix(rf.Name, ".gz") {
		gz, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return spectra.Chunk{}, fmt.Errorf("opening gzip stream: %w", err)
		}
		raw, err = io.ReadAll(gz)
		if err != nil {
			return spectra.Chunk{}, fmt.Errorf("decompressing: %w", err)
		}
		if err := gz.Close(); err != nil {
			return spectra.Chunk{}, fmt.Errorf("closing gzip stream: %w", err)
		}
	}

	chunk, err := decodeFITS(raw, rf.StartSec, rf.Sequence)
	if err != nil {
		return spectra.Chunk{}, err
	}

	c.logger.Debug("decoded chunk", logging.Fields{
		"file":      rf.Name,
		"freq_bins": len(chunk.FreqAxis),
		"time_bins": len(chunk.TimeAxis),
	})
	return chunk, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("requesting %s: unexpected status %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return body, nil
}

// listingHrefs extracts anchor targets from an HTML directory index,
// skipping parent and self links.
func listingHrefs(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if attr.Val == "../" || attr.Val == "./" {
					continue
				}
				hrefs = append(hrefs, attr.Val)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return hrefs, nil
}

// fileStartTime extracts the HHMMSS start time embedded in a station
// filename.
func fileStartTime(name string) (float64, bool) {
	match := fileTimeRe.FindStringSubmatch(name)
	if match == nil {
		match = fileTimeOldRe.FindStringSubmatch(name)
	}
	if match == nil {
		return 0, false
	}

	hhmmss := match[1]
	h := int(hhmmss[0]-'0')*10 + int(hhmmss[1]-'0')
	m := int(hhmmss[2]-'0')*10 + int(hhmmss[3]-'0')
	s := int(hhmmss[4]-'0')*10 + int(hhmmss[5]-'0')
	return float64(h*3600 + m*60 + s), true
}
