// Package risk implements the per-position stop-loss / take-profit override
// that runs ahead of a strategy's own signal each day.
package risk

import (
	"sort"

	"github.com/rustyeddy/backtester/sim"
)

// Config holds the exit thresholds as fractions of the average entry price.
type Config struct {
	StopLossPct   float64 `json:"stop-loss-pct" yaml:"stop-loss-pct"`
	TakeProfitPct float64 `json:"take-profit-pct" yaml:"take-profit-pct"`
}

// Default returns the standard thresholds: 5% stop loss, 15% take profit.
func Default() Config {
	return Config{
		StopLossPct:   0.05,
		TakeProfitPct: 0.15,
	}
}

// Manager evaluates open positions against the configured thresholds.
type Manager struct {
	cfg Config
}

// NewManager creates a Manager with the given thresholds.
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// Config returns the manager's thresholds.
func (m *Manager) Config() Config { return m.cfg }

// Check returns a full-quantity forced exit for every position whose
// unrealized move breaches a threshold at the day's close. Symbols without
// a close today are skipped. Results are ordered by symbol so runs are
// deterministic.
func (m *Manager) Check(positions map[string]sim.Position, closes map[string]float64) []sim.Proposed {
	symbols := make([]string, 0, len(positions))
	for sym := range positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var exits []sim.Proposed
	for _, sym := range symbols {
		pos := positions[sym]
		close, ok := closes[sym]
		if !ok || pos.AvgPrice == 0 {
			continue
		}

		pnlPct := (close - pos.AvgPrice) / pos.AvgPrice
		switch {
		case pnlPct <= -m.cfg.StopLossPct:
			exits = append(exits, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    close,
				Reason:   "Stop Loss",
			})
		case pnlPct >= m.cfg.TakeProfitPct:
			exits = append(exits, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    close,
				Reason:   "Take Profit",
			})
		}
	}
	return exits
}
