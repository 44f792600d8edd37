// Package backtest drives the day-by-day simulation loop: it wires the
// ledger, risk manager, strategy and execution model together and derives
// the run's performance statistics.
package backtest

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rustyeddy/backtester/sim"
)

// Result is the frozen outcome of one completed run. It is produced once,
// after the last trading date, and never mutated.
//
// FinalCash is the final total portfolio value (cash plus open positions at
// their last mark), matching TotalReturn = FinalCash - InitialCash.
type Result struct {
	RunID    string
	Strategy string
	Symbols  []string
	Start    time.Time
	End      time.Time

	InitialCash        float64
	FinalCash          float64
	TotalReturn        float64
	TotalReturnPercent float64

	MaxDrawdown  float64 // percent of peak
	SharpeRatio  float64
	WinRate      float64
	TotalTrades  int
	WinningTrades int
	LosingTrades  int
	AvgWin       float64
	AvgLoss      float64
	ProfitFactor float64

	Trades          []sim.Trade
	DailyReturns    []float64
	PortfolioValues []float64
}

// PrintResult writes a human-readable run summary.
func PrintResult(w io.Writer, r *Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	fmt.Fprintf(w, "Symbols:       %v\n", r.Symbols)
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format("2006-01-02"))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format("2006-01-02"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Initial Cash:  %.2f\n", r.InitialCash)
	fmt.Fprintf(w, "Final Value:   %.2f\n", r.FinalCash)
	fmt.Fprintf(w, "Total Return:  %.2f (%.2f%%)\n", r.TotalReturn, r.TotalReturnPercent)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", r.MaxDrawdown)
	fmt.Fprintf(w, "Sharpe Ratio:  %.2f\n", r.SharpeRatio)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trades")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Total:         %d\n", r.TotalTrades)
	fmt.Fprintf(w, "Wins:          %d\n", r.WinningTrades)
	fmt.Fprintf(w, "Losses:        %d\n", r.LosingTrades)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.WinRate*100)
	fmt.Fprintf(w, "Avg Win:       %.2f\n", r.AvgWin)
	fmt.Fprintf(w, "Avg Loss:      %.2f\n", r.AvgLoss)

	if math.IsInf(r.ProfitFactor, 1) {
		fmt.Fprintf(w, "Profit Factor: Inf\n")
	} else {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", r.ProfitFactor)
	}
	fmt.Fprintln(w)
}
