// Package strategies contains the strategy contract, the typed parameter
// schema, the registry, and the built-in strategy catalog.
package strategies

import (
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/risk"
	"github.com/rustyeddy/backtester/sim"
)

// SeriesProvider exposes read-only per-symbol history. The engine's History
// satisfies it; strategies never see the mutable buffer.
type SeriesProvider interface {
	Series(symbol string) market.Series
	Len(symbol string) int
}

// Context is everything a strategy may consult for one trading day.
// Positions is a copy; mutating it has no effect on the ledger.
type Context struct {
	Date      time.Time
	Bars      map[string]market.Bar
	Cash      float64
	Positions map[string]sim.Position
	History   SeriesProvider
}

// Strategy is a stateless decision function over one trading day. Decide
// must be pure CPU work: no I/O, no blocking, no retained state between
// calls. It returns zero or more proposed trades; each carries a
// human-readable reason for the audit trail.
type Strategy interface {
	Name() string
	Params() Schema
	Decide(ctx Context) ([]sim.Proposed, error)
}

// RiskOverride is optionally implemented by strategies that want tighter or
// looser stop/take thresholds than the run defaults.
type RiskOverride interface {
	RiskConfig() risk.Config
}

// symbols returns the day's symbols in a stable order.
func symbols(bars map[string]market.Bar) []string {
	out := make([]string, 0, len(bars))
	for sym := range bars {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// shares converts a cash fraction into a whole-share quantity at price.
// Zero means the position would be too small to open.
func shares(cash, fraction, price float64) int64 {
	if price <= 0 {
		return 0
	}
	return int64(math.Floor(cash * fraction / price))
}

// defined reports whether every value is a real number. Indicator outputs
// are NaN during warmup and must never justify a trade.
func defined(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
