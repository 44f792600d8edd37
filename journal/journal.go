// Package journal is the persistence sink for backtest runs: run status,
// the executed trade log and the daily equity curve.
package journal

import "time"

// Run status values as stored in the journal.
const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// RunRecord mirrors the runs table: one row per backtest, updated as the
// run moves through its lifecycle.
type RunRecord struct {
	RunID    string
	Status   string
	Strategy string
	Symbols  string // comma-joined
	Start    time.Time
	End      time.Time
	Created  time.Time

	InitialCash     float64
	FinalCash       float64
	TotalReturn     float64
	TotalReturnPct  float64
	MaxDrawdown     float64
	SharpeRatio     float64
	WinRate         float64
	TotalTrades     int
	WinningTrades   int
	LosingTrades    int
	AvgWin          float64
	AvgLoss         float64
	ProfitFactor    float64
	Error           string
}

// TradeRecord is one executed trade, appended in execution order. Seq is
// the position in the run's trade log, starting at 0.
type TradeRecord struct {
	RunID      string
	Seq        int
	Symbol     string
	Side       string
	Quantity   int64
	Price      float64
	Date       time.Time
	Commission float64
	Reason     string
}

// EquitySnapshot is the end-of-day portfolio valuation.
type EquitySnapshot struct {
	RunID       string
	Date        time.Time
	Cash        float64
	Value       float64
	DailyReturn float64
}

// Journal receives run lifecycle notifications and per-day/per-trade
// records. Implementations must serialize writes for the same run id.
// Any returned error is treated as fatal by the engine.
type Journal interface {
	RunStarted(runID, strategy string, symbols []string) error
	RunCompleted(rec RunRecord) error
	RunFailed(runID, cause string) error
	RecordTrade(tr TradeRecord) error
	RecordEquity(eq EquitySnapshot) error
	Close() error
}

// Nop is a Journal that discards everything. Used when a run needs no
// persistence.
type Nop struct{}

func (Nop) RunStarted(string, string, []string) error { return nil }
func (Nop) RunCompleted(RunRecord) error              { return nil }
func (Nop) RunFailed(string, string) error            { return nil }
func (Nop) RecordTrade(TradeRecord) error             { return nil }
func (Nop) RecordEquity(EquitySnapshot) error         { return nil }
func (Nop) Close() error                              { return nil }
