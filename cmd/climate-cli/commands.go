package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/climate-dashboard/internal/climate"
	"github.com/i474232898/climate-dashboard/internal/kv"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the available climate datasets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printCatalog(cmd.OutOrStdout(), climate.Catalog())
	},
}

var (
	seriesFrom int
	seriesLast int
)

var seriesCmd = &cobra.Command{
	Use:   "series <dataset>",
	Short: "Print a normalized climate series",
	Long: `Print the normalized entries of one dataset, oldest first.

Without --from the dataset's default start year is used.

Examples:
  climate-cli series co2
  climate-cli series temperature --from 1880 --last 100`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := climate.Lookup(args[0])
		if err != nil {
			return err
		}
		from := info.DefaultStartYear
		if cmd.Flags().Changed("from") {
			from = seriesFrom
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		entries, err := dashboard.Climate.SeriesFrom(ctx, info.Dataset, from)
		if err != nil {
			return fail("load "+string(info.Dataset), err)
		}
		return printSeries(cmd.OutOrStdout(), info, climate.Last(entries, seriesLast))
	},
}

var weatherCity string

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Print current conditions and the 7-day forecast",
	Long: `Print the weather report for a city, or for the device location
(DEVICE_LAT/DEVICE_LON) when --city is omitted. Without a device location the
default city is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		report, err := dashboard.Weather.Report(ctx, weatherCity)
		if err != nil {
			return fail("load weather", err)
		}
		return printReport(cmd.OutOrStdout(), report)
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear cached records",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached records and their age",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		entries, err := dashboard.CacheEntries(ctx)
		if err != nil {
			return fail("list cache", err)
		}
		return printCacheEntries(cmd.OutOrStdout(), entries)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <key>...",
	Short: "Remove cached records so the next read refetches them",
	Long: `Remove cached records. Keys are dataset names (co2, methane, ...) or
weather keys (weather-<city>, weather-current).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		for _, key := range args {
			key = strings.TrimSpace(key)
			if err := dashboard.Invalidate(ctx, key); err != nil {
				return fail("clear "+key, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", key)
		}
		return nil
	},
}

func init() {
	seriesCmd.Flags().IntVar(&seriesFrom, "from", 0, "first year to include (default: the dataset's start year)")
	seriesCmd.Flags().IntVar(&seriesLast, "last", 0, "only print the last N entries")
	weatherCmd.Flags().StringVar(&weatherCity, "city", "", "city name (default: device location)")

	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd)
}

func kvBackend(s string) kv.Backend {
	return kv.Backend(strings.ToLower(strings.TrimSpace(s)))
}
