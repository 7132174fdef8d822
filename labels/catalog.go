package labels

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/heliodyne/ecallisto/logging"
)

// ParseMonthlyCatalog extracts the bursts observed by one station on one
// day from a monthly e-Callisto burst list.
//
// The list is tab-separated with lines of the form
//
//	20250513	05:12-05:14	III	ALASKA-ANCHORAGE, AUSTRIA-UNIGRAZ
//
// Blank lines and lines starting with "#" or "-" are headers or rulers and
// are skipped, as are rows with fewer than four columns. Times accept both
// HH:MM and HH:MM:SS. Rows whose time range cannot be parsed are skipped
// with a warning rather than failing the whole catalog.
func ParseMonthlyCatalog(r io.Reader, day time.Time, station string) ([]Burst, error) {
	date := day.Format("20060102")

	var bursts []Burst
	malformed := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 4 {
			continue
		}
		lineDate, timeRange, burstType, stations := parts[0], parts[1], parts[2], parts[3]
		if strings.TrimSpace(lineDate) != date {
			continue
		}
		if !containsStation(stations, station) {
			continue
		}

		start, end, err := parseTimeRange(timeRange)
		if err != nil {
			malformed++
			logging.Warn("skipping malformed burst entry", logging.Fields{
				"component":  "burst_catalog",
				"time_range": timeRange,
				"error":      err.Error(),
			})
			continue
		}

		bursts = append(bursts, Burst{
			Start: start,
			End:   end,
			Type:  strings.TrimSpace(burstType),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading burst catalog: %w", err)
	}

	logging.Debug("parsed burst catalog", logging.Fields{
		"component": "burst_catalog",
		"station":   station,
		"date":      date,
		"bursts":    len(bursts),
		"malformed": malformed,
	})
	return bursts, nil
}

func containsStation(stations, station string) bool {
	for _, s := range strings.Split(stations, ",") {
		if strings.TrimSpace(s) == station {
			return true
		}
	}
	return false
}

// parseTimeRange parses "HH:MM-HH:MM" or "HH:MM:SS-HH:MM:SS" into seconds
// since midnight.
func parseTimeRange(s string) (start, end float64, err error) {
	halves := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(halves) != 2 {
		return 0, 0, fmt.Errorf("time range %q has no separator", s)
	}
	if start, err = parseTimeOfDay(halves[0]); err != nil {
		return 0, 0, err
	}
	if end, err = parseTimeOfDay(halves[1]); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimeOfDay converts "HH:MM" or "HH:MM:SS" to seconds since midnight.
func parseTimeOfDay(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("time %q is not HH:MM or HH:MM:SS", s)
	}

	total := 0
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("time %q is not numeric: %w", s, err)
		}
		total = total*60 + v
	}
	if len(parts) == 2 {
		total *= 60
	}
	return float64(total), nil
}
