package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query persisted backtest runs",
	Long: `Query and display backtest records from a SQLite journal.

Subcommands:
  run    - Show a run's summary by id
  trades - List a run's executed trades
  equity - List a run's daily equity curve

Examples:
  backtester journal run <run-id>
  backtester journal trades <run-id>
  backtester journal equity <run-id>`,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show a run's summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List a run's executed trades",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity <run-id>",
	Short: "List a run's daily equity curve",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalEquity,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalEquityCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./backtests.sqlite", "path to SQLite journal DB")
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	fmt.Printf("Run:       %s\n", rec.RunID)
	fmt.Printf("Status:    %s\n", rec.Status)
	fmt.Printf("Strategy:  %s\n", rec.Strategy)
	fmt.Printf("Symbols:   %s\n", rec.Symbols)
	fmt.Printf("Range:     %s .. %s\n",
		rec.Start.Format("2006-01-02"), rec.End.Format("2006-01-02"))
	fmt.Printf("Initial:   $%.2f\n", rec.InitialCash)
	fmt.Printf("Final:     $%.2f\n", rec.FinalCash)
	fmt.Printf("Return:    $%.2f (%.2f%%)\n", rec.TotalReturn, rec.TotalReturnPct)
	fmt.Printf("Drawdown:  %.2f%%\n", rec.MaxDrawdown)
	fmt.Printf("Sharpe:    %.2f\n", rec.SharpeRatio)
	fmt.Printf("Trades:    %d (%d W / %d L)\n", rec.TotalTrades, rec.WinningTrades, rec.LosingTrades)
	if rec.Error != "" {
		fmt.Printf("Error:     %s\n", rec.Error)
	}
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	trades, err := j.ListTradesByRun(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Printf("%-4s %-12s %-8s %-6s %10s %12s %10s  %s\n",
		"#", "DATE", "SYMBOL", "SIDE", "QTY", "PRICE", "COMM", "REASON")
	for _, tr := range trades {
		fmt.Printf("%-4d %-12s %-8s %-6s %10d %12.2f %10.2f  %s\n",
			tr.Seq, tr.Date.Format("2006-01-02"), tr.Symbol, tr.Side,
			tr.Quantity, tr.Price, tr.Commission, tr.Reason)
	}
	return nil
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	curve, err := j.ListEquityByRun(args[0])
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}

	fmt.Printf("%-12s %14s %14s %10s\n", "DATE", "CASH", "VALUE", "RETURN")
	for _, eq := range curve {
		fmt.Printf("%-12s %14.2f %14.2f %9.4f%%\n",
			eq.Date.Format("2006-01-02"), eq.Cash, eq.Value, eq.DailyReturn*100)
	}
	return nil
}
