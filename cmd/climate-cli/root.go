package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/climate-dashboard/internal/app"
	"github.com/i474232898/climate-dashboard/internal/config"
	"github.com/i474232898/climate-dashboard/internal/logging"
)

// dashboard is the application shared by every subcommand, built in
// PersistentPreRunE.
var dashboard *app.App

var (
	storeBackend string
	verbose      bool
	timeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "climate-cli",
	Short: "Print normalized climate series and weather reports",
	Long: `climate-cli fetches the dashboard's climate datasets and weather reports
through the same cache as the server and prints them as tables.

Configuration is read from the environment (and a .env file), see the
README of the server for the variables.

Examples:
  climate-cli datasets
  climate-cli series co2 --from 2020 --last 10
  climate-cli weather --city Paris
  climate-cli cache list`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if dashboard == nil {
			return nil
		}
		return dashboard.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "cache store backend (memory or sqlite); overrides STORE_BACKEND")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log upstream and cache activity to stderr")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "overall command timeout")

	rootCmd.AddCommand(datasetsCmd, seriesCmd, weatherCmd, cacheCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if storeBackend != "" {
		cfg.StoreBackend = kvBackend(storeBackend)
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = logging.New("debug", "console"); err != nil {
			return err
		}
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	dashboard = a
	return nil
}

// commandContext bounds a subcommand by the --timeout flag.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func fail(action string, err error) error {
	return fmt.Errorf("failed to %s: %w", action, err)
}
