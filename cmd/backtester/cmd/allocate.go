package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/strategies"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Split capital across several strategies in one run",
	Long: `Allocate runs one independent backtest per strategy slice and reports the
combined portfolio outcome. Allocations come from the config file's
allocations section and must sum to 100 percent.

Example config:
  allocations:
    - strategy: sma-cross
      percent: 60
    - strategy: rsi-reversion
      percent: 40

Example:
  backtester allocate -c portfolio.yaml`,
	RunE: runAllocate,
}

var allocConfigPath string

func init() {
	rootCmd.AddCommand(allocateCmd)

	allocateCmd.Flags().StringVarP(&allocConfigPath, "config", "c", "", "run config file with an allocations section (required)")
	allocateCmd.MarkFlagRequired("config")
}

func runAllocate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(allocConfigPath)
	if err != nil {
		return err
	}
	if len(cfg.Allocations) == 0 {
		return fmt.Errorf("config %s has no allocations section", allocConfigPath)
	}

	start, end, err := cfg.Backtest.Dates()
	if err != nil {
		return err
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	defer j.Close()

	allocs := make([]backtest.Allocation, len(cfg.Allocations))
	for i, a := range cfg.Allocations {
		allocs[i] = backtest.Allocation{
			Strategy: a.Strategy,
			Percent:  a.Percent,
			Params:   a.Params,
		}
	}

	allocator := backtest.NewAllocator(backtest.Config{
		Symbols:     cfg.Backtest.Symbols,
		Start:       start,
		End:         end,
		InitialCash: cfg.Account.InitialCash,
		Exec:        cfg.Execution,
		Risk:        cfg.Risk,
	}, market.NewCSVRepository(cfg.Backtest.Data),
		strategies.NewDefaultRegistry(), j, slog.Default())

	fmt.Printf("Running %d-strategy allocation\n", len(allocs))
	for _, a := range allocs {
		fmt.Printf("  %-20s %5.1f%%\n", a.Strategy, a.Percent)
	}
	fmt.Println()

	res, err := allocator.Run(context.Background(), allocs)
	if err != nil {
		return fmt.Errorf("allocate: %w", err)
	}

	for _, r := range res.Runs {
		backtest.PrintResult(os.Stdout, r)
		fmt.Println()
	}

	fmt.Printf("Combined Portfolio\n")
	fmt.Printf("  Initial: $%.2f\n", res.InitialCash)
	fmt.Printf("  Final:   $%.2f\n", res.FinalCash)
	fmt.Printf("  Return:  $%.2f (%.2f%%)\n", res.TotalReturn, res.ReturnPct)
	return nil
}
