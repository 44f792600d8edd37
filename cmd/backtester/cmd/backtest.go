package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/risk"
	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a backtest with one of the built-in strategies",
	Long: `Backtest replays daily bars against a strategy and prints a performance
report. Bars come from a CSV file (plain, .csv.xz or .zip) with rows of
date,symbol,open,high,low,close,volume.

Example:
  backtester backtest -b bars.csv -y AAPL,MSFT -s sma-cross -p fast=5,slow=20`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btBarsPath   string
	btSymbols    []string
	btStart      string
	btEnd        string
	btCash       float64
	btStrategy   string
	btParams     string
	btCommission float64
	btSlippage   float64
	btStopLoss   float64
	btTakeProfit float64
	btDBPath     string
	btCSVPrefix  string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "run config file; flags override its values")
	backtestCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "path to bar CSV (.csv, .csv.xz or .zip)")
	backtestCmd.Flags().StringSliceVarP(&btSymbols, "symbols", "y", nil, "symbols to trade")
	backtestCmd.Flags().StringVar(&btStart, "start", "2024-01-01", "start date (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&btEnd, "end", "2024-12-31", "end date (YYYY-MM-DD)")
	backtestCmd.Flags().Float64Var(&btCash, "cash", 100_000, "starting cash")

	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "sma-cross", "strategy name (see 'backtester strategies')")
	backtestCmd.Flags().StringVarP(&btParams, "params", "p", "", "strategy parameter overrides, e.g. fast=5,slow=20")

	backtestCmd.Flags().Float64Var(&btCommission, "commission", 0.0015, "commission rate per fill")
	backtestCmd.Flags().Float64Var(&btSlippage, "slippage", 0.001, "slippage rate per fill")
	backtestCmd.Flags().Float64Var(&btStopLoss, "stop-loss", 0.05, "stop loss fraction")
	backtestCmd.Flags().Float64Var(&btTakeProfit, "take-profit", 0.15, "take profit fraction")

	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "persist the run to this SQLite DB")
	backtestCmd.Flags().StringVar(&btCSVPrefix, "csv-out", "", "persist trades/equity to <prefix>-trades.csv and <prefix>-equity.csv")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	start, end, err := cfg.Backtest.Dates()
	if err != nil {
		return err
	}

	strat, err := strategies.NewDefaultRegistry().New(cfg.Strategy.Name, cfg.Strategy.Params)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	defer j.Close()

	engine := backtest.New(backtest.Config{
		Symbols:     cfg.Backtest.Symbols,
		Start:       start,
		End:         end,
		InitialCash: cfg.Account.InitialCash,
		Exec:        cfg.Execution,
		Risk:        cfg.Risk,
	}, market.NewCSVRepository(cfg.Backtest.Data), strat,
		backtest.WithJournal(j),
		backtest.WithLogger(slog.Default()))

	fmt.Printf("Running backtest with strategy: %s\n", cfg.Strategy.Name)
	fmt.Printf("  Bars: %s\n", cfg.Backtest.Data)
	fmt.Printf("  Symbols: %s\n", strings.Join(cfg.Backtest.Symbols, ","))
	fmt.Printf("  Range: %s .. %s\n\n", cfg.Backtest.Start, cfg.Backtest.End)

	res, err := engine.Run(context.Background())
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	backtest.PrintResult(os.Stdout, res)
	return nil
}

// effectiveConfig merges an optional config file with the command flags;
// any flag the user set wins over the file.
func effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	fromFile := btConfigPath != ""
	if fromFile {
		loaded, err := config.LoadFromFile(btConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// A flag the user set always wins; with no config file the flag
	// defaults fill everything.
	set := func(name string) bool {
		return !fromFile || cmd.Flags().Changed(name)
	}
	if set("bars") {
		cfg.Backtest.Data = btBarsPath
	}
	if set("symbols") {
		cfg.Backtest.Symbols = btSymbols
	}
	if set("start") {
		cfg.Backtest.Start = btStart
	}
	if set("end") {
		cfg.Backtest.End = btEnd
	}
	if set("cash") {
		cfg.Account.InitialCash = btCash
	}
	if set("strategy") {
		cfg.Strategy.Name = btStrategy
	}
	if set("params") {
		params, err := parseParams(btParams)
		if err != nil {
			return nil, err
		}
		if params != nil {
			cfg.Strategy.Params = params
		}
	}
	if set("commission") || set("slippage") {
		cfg.Execution = sim.ExecConfig{CommissionRate: btCommission, SlippageRate: btSlippage}
	}
	if set("stop-loss") || set("take-profit") {
		cfg.Risk = risk.Config{StopLossPct: btStopLoss, TakeProfitPct: btTakeProfit}
	}
	if cmd.Flags().Changed("db") {
		cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: btDBPath}
	}
	if cmd.Flags().Changed("csv-out") {
		cfg.Journal = config.JournalConfig{
			Type:       "csv",
			TradesFile: btCSVPrefix + "-trades.csv",
			EquityFile: btCSVPrefix + "-equity.csv",
		}
	}

	if cfg.Journal.Type == "" {
		cfg.Journal.Type = "none"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseParams converts "fast=5,slow=20" into a parameter override map.
func parseParams(s string) (map[string]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	out := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("bad param %q (want name=value)", pair)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("bad param value %q: %w", pair, err)
		}
		out[strings.TrimSpace(key)] = f
	}
	return out, nil
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	case "csv":
		return journal.NewCSV(cfg.TradesFile, cfg.EquityFile)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}
