package labels

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = "#Product: e-CALLISTO burst list\n" +
	"#Please, acknowledge the e-CALLISTO network\n" +
	"----------------------------------------\n" +
	"20250512\t23:58-00:02\tIII\tALASKA-ANCHORAGE\n" +
	"20250513\t05:12-05:14\tIII\tALASKA-ANCHORAGE, AUSTRIA-UNIGRAZ\n" +
	"20250513\t09:01:30-09:03:15\tII\tAUSTRIA-UNIGRAZ\n" +
	"20250513\t11:45-11:47\tV\tALASKA-ANCHORAGE\n" +
	"20250513\tnonsense\tIII\tALASKA-ANCHORAGE\n" +
	"20250513\t12:00-12:05\tIII\n" +
	"\n" +
	"20250514\t01:10-01:12\tIII\tALASKA-ANCHORAGE\n"

func TestParseMonthlyCatalogFiltersDateAndStation(t *testing.T) {
	day := time.Date(2025, 5, 13, 0, 0, 0, 0, time.UTC)

	bursts, err := ParseMonthlyCatalog(strings.NewReader(sampleCatalog), day, "ALASKA-ANCHORAGE")
	require.NoError(t, err)
	require.Len(t, bursts, 2)

	assert.Equal(t, Burst{Start: 5*3600 + 12*60, End: 5*3600 + 14*60, Type: "III"}, bursts[0])
	assert.Equal(t, Burst{Start: 11*3600 + 45*60, End: 11*3600 + 47*60, Type: "V"}, bursts[1])
}

func TestParseMonthlyCatalogSecondsPrecision(t *testing.T) {
	day := time.Date(2025, 5, 13, 0, 0, 0, 0, time.UTC)

	bursts, err := ParseMonthlyCatalog(strings.NewReader(sampleCatalog), day, "AUSTRIA-UNIGRAZ")
	require.NoError(t, err)
	require.Len(t, bursts, 2)

	assert.Equal(t, float64(9*3600+1*60+30), bursts[1].Start)
	assert.Equal(t, float64(9*3600+3*60+15), bursts[1].End)
	assert.Equal(t, "II", bursts[1].Type)
}

func TestParseMonthlyCatalogNoMatches(t *testing.T) {
	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	bursts, err := ParseMonthlyCatalog(strings.NewReader(sampleCatalog), day, "ALASKA-ANCHORAGE")
	require.NoError(t, err)
	assert.Empty(t, bursts)
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "05:12", want: 5*3600 + 12*60},
		{in: "23:59:59", want: 86399},
		{in: " 10:30 ", want: 10*3600 + 30*60},
		{in: "garbage", wantErr: true},
		{in: "10", wantErr: true},
		{in: "aa:bb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimeOfDay(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
