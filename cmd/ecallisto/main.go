// Command ecallisto fetches e-Callisto station days, assembles them into
// spectrogram artifacts, and compares denoising filters by SNR.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/heliodyne/ecallisto/archive"
	"github.com/heliodyne/ecallisto/logging"
	"github.com/heliodyne/ecallisto/persist"
	"github.com/heliodyne/ecallisto/pipeline"
)

var version = "dev"

var (
	flagLogLevel string
	flagNoColor  bool
)

func main() {
	root := &cobra.Command{
		Use:           "ecallisto",
		Short:         "e-Callisto solar radio spectrogram preprocessing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetLevel(logging.ParseLevel(flagLogLevel))
			if flagNoColor {
				logging.DisableColors()
			}
		},
	}
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored log output")

	root.AddCommand(newFetchCmd(), newCompareCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newFetchCmd() *cobra.Command {
	var (
		outDir      string
		baseURL     string
		burstLabels bool
		dayStart    string
	)

	cmd := &cobra.Command{
		Use:   "fetch STATION DATE",
		Short: "Download and assemble one station day into .npy artifacts",
		Long: `Download all spectrogram files recorded by STATION on DATE
(format: YYYY-MM-DD), order them chronologically across the day boundary,
and write the assembled spectrogram plus its axis metadata. With
--burst-labels the monthly burst catalog is fetched too and the aligned
label index is written alongside.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			station := args[0]
			day, err := time.Parse("2006-01-02", args[1])
			if err != nil {
				return fmt.Errorf("bad date %q, expected YYYY-MM-DD: %w", args[1], err)
			}

			cfg := pipeline.DefaultConfig()
			if dayStart != "" {
				sec, err := parseHHMMSS(dayStart)
				if err != nil {
					return err
				}
				cfg.DayStartSec = sec
			}

			clientCfg := archive.DefaultClientConfig()
			if baseURL != "" {
				clientCfg.BaseURL = baseURL
			}
			client := archive.NewClient(clientCfg)

			ctx := cmd.Context()
			chunks, err := client.FetchDay(ctx, station, day)
			if err != nil {
				return err
			}

			p := pipeline.NewPipeline(cfg)
			s, err := p.AssembleDay(station, day, chunks)
			if err != nil {
				return err
			}

			specPath, metaPath, err := persist.WriteSpectrogram(outDir, s)
			if err != nil {
				return err
			}
			fmt.Printf("Spectrogram: %s (%d x %d)\n", specPath, s.FreqBins(), s.TimeBins())
			fmt.Printf("Metadata   : %s\n", metaPath)

			if burstLabels {
				bursts, err := client.FetchBursts(ctx, station, day)
				if err != nil {
					return err
				}
				idx := p.AlignBursts(s, bursts)
				labelsPath := persist.LabelsPath(outDir, station, day)
				if err := persist.WriteLabels(labelsPath, idx); err != nil {
					return err
				}
				fmt.Printf("Labels     : %s (%d ranges, %d dropped)\n", labelsPath, len(idx.Ranges), idx.Dropped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory for artifacts")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "override the archive base URL")
	cmd.Flags().BoolVar(&burstLabels, "burst-labels", false, "fetch the burst catalog and write the label index")
	cmd.Flags().StringVar(&dayStart, "day-start", "", "fixed day start as HHMMSS instead of gap auto-detection")
	return cmd
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare SPEC.npy META.json LABELS.npy",
		Short: "Compare denoising filters on a labeled spectrogram",
		Long: `Load an assembled spectrogram with its label index and report the
SNR of the raw data, the Gaussian background-subtracted version, and the
median-despiked version.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := persist.ReadSpectrogram(args[0], args[1])
			if err != nil {
				return err
			}
			idx, err := persist.ReadLabels(args[2])
			if err != nil {
				return err
			}

			fmt.Printf("Loaded spectrogram %d x %d (%s, %s)\n",
				s.FreqBins(), s.TimeBins(), s.Station, s.Day.Format("2006-01-02"))
			fmt.Printf("Loaded %d burst label ranges\n\n", len(idx.Ranges))

			p := pipeline.NewPipeline(nil)
			comparison, err := p.CompareFilters(s, idx.Ranges)
			if err != nil {
				return err
			}

			fmt.Printf("%-10s %10s %14s %14s %10s\n", "variant", "SNR (dB)", "signal mean", "noise mean", "elapsed")
			for _, v := range comparison.Variants {
				fmt.Printf("%-10s %10.2f %14.3f %14.3f %10s\n",
					v.Variant, v.SNRdB, v.Detail.SignalMean, v.Detail.NoiseMean, v.Elapsed.Round(time.Millisecond))
			}
			fmt.Printf("\nBest: %s\n", comparison.Best)
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ecallisto version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("ecallisto", version)
		},
	}
}

// parseHHMMSS converts a compact time of day to seconds since midnight.
func parseHHMMSS(s string) (float64, error) {
	if len(s) != 6 {
		return 0, fmt.Errorf("bad time %q, expected HHMMSS", s)
	}
	h, err1 := strconv.Atoi(s[0:2])
	m, err2 := strconv.Atoi(s[2:4])
	sec, err3 := strconv.Atoi(s[4:6])
	if err1 != nil || err2 != nil || err3 != nil || h > 23 || m > 59 || sec > 59 {
		return 0, fmt.Errorf("bad time %q, expected HHMMSS", s)
	}
	return float64(h*3600 + m*60 + sec), nil
}
