package cli

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"agriinsight/internal/domain"
	"agriinsight/internal/tui"
)

const sparklineWidth = 60

func newRainfallCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rainfall",
		Short: "Daily precipitation history from Open-Meteo",
	}
	cmd.AddCommand(
		newRainfallSeriesCmd(opts),
		newRainfallLatestCmd(opts),
		newRainfallCompareCmd(opts),
	)
	return cmd
}

func newRainfallSeriesCmd(opts *rootOptions) *cobra.Command {
	var (
		days     int
		lat, lon float64
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "series [state]",
		Short: "Print the daily series for a state or --lat/--lon",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return errors.New("--days must be positive")
			}
			coords := cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")
			var (
				series *domain.RainfallSeries
				err    error
			)
			switch {
			case len(args) == 1 && !coords:
				series, err = opts.backend.Rainfall(cmd.Context(), args[0], days)
			case len(args) == 0 && coords:
				series, err = opts.backend.RainfallAt(cmd.Context(), lat, lon, days)
			default:
				return errors.New("give either a state name or --lat and --lon")
			}
			if err != nil {
				return fmt.Errorf("fetch rainfall: %w", err)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, series)
			}
			values := make([]*float64, len(series.Points))
			for i, p := range series.Points {
				values[i] = p.PrecipMM
			}
			fmt.Fprintf(out, "Daily rainfall last %d days: %s\n", days, series.Location)
			fmt.Fprintln(out, tui.Sparkline(values, sparklineWidth))
			if mean, ok := series.Mean(); ok {
				fmt.Fprintf(out, "Mean: %.2f mm\n", mean)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "date\tprecip_mm")
			for _, p := range series.Points {
				fmt.Fprintf(tw, "%s\t%s\n", p.Date.Format("2006-01-02"), formatMM(p.PrecipMM))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 365, "days of history")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude instead of a state name")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude instead of a state name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the series as JSON")
	return cmd
}

func newRainfallLatestCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "latest [state]",
		Short: "Print the most recent daily reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reading, err := opts.backend.LatestRainfall(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), reading)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s latest rainfall (mm): %s (%s)\n",
				reading.Location, formatMM(reading.PrecipMM), reading.Date.Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the reading as JSON")
	return cmd
}

func newRainfallCompareCmd(opts *rootOptions) *cobra.Command {
	var (
		days   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "compare [state...]",
		Short: "Average rainfall per state (default: first three supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return errors.New("--days must be positive")
			}
			names := args
			if len(names) == 0 {
				names = opts.backend.States()
				if len(names) > 3 {
					names = names[:3]
				}
			}
			rows := opts.backend.CompareRainfall(cmd.Context(), names, days)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, rows)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "state\tavg_rain_mm")
			for _, row := range rows {
				value := formatMM(row.AvgMM)
				if row.Error != "" {
					value = row.Error
				}
				fmt.Fprintf(tw, "%s\t%s\n", row.Location, value)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "days of history to average")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output rows as JSON")
	return cmd
}

func newStatesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List locations supported by the rainfall commands",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range opts.backend.States() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func formatMM(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
