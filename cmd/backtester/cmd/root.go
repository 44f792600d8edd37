package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/internal/util"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "A daily-bar stock strategy backtesting engine",
	Long: `Backtester replays daily OHLCV bars through trading strategies and reports
how a portfolio would have performed.

It provides tools for:
  - Backtesting a catalog of built-in strategies with historical bar data
  - Splitting capital across several strategies in one run
  - Stop-loss / take-profit risk management with per-strategy overrides
  - Commission and slippage aware trade execution
  - Persisting runs, trades and equity curves to SQLite or CSV

Complete documentation is available at https://github.com/rustyeddy/backtester`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		util.SetDefault(util.NewLogger(logLevel))
	},
}

var logLevel string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}
