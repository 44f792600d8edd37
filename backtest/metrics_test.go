package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/backtester/sim"
)

func TestMaxDrawdown(t *testing.T) {
	// Peak 110 down to trough 90 is an 18.18% decline; the later high does
	// not erase it.
	dd := MaxDrawdown([]float64{100, 110, 90, 95, 120})
	assert.InDelta(t, 18.18, dd, 0.01)

	assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 105, 110}))
	assert.Equal(t, 0.0, MaxDrawdown(nil))
	assert.InDelta(t, 50.0, MaxDrawdown([]float64{100, 50}), 1e-9)
}

func TestSharpeRatio(t *testing.T) {
	assert.Equal(t, 0.0, SharpeRatio(nil))
	assert.Equal(t, 0.0, SharpeRatio([]float64{0.01, 0.01, 0.01}))

	// mean 0.01, population stddev 0.01, annualized by sqrt(252).
	got := SharpeRatio([]float64{0.0, 0.02, 0.0, 0.02})
	assert.InDelta(t, 1.0*math.Sqrt(252), got, 1e-9)

	down := SharpeRatio([]float64{-0.01, -0.03})
	assert.Less(t, down, 0.0)
}

func tradeLog(legs ...sim.Trade) []sim.Trade { return legs }

func TestComputeTradeStatsRoundTrips(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	trades := tradeLog(
		sim.Trade{Symbol: "A", Side: sim.Buy, Quantity: 100, Price: 100, Date: day},
		sim.Trade{Symbol: "A", Side: sim.Buy, Quantity: 100, Price: 110, Date: day},
		// Avg cost 105; sell at 120 realizes +1500 minus its commission.
		sim.Trade{Symbol: "A", Side: sim.Sell, Quantity: 100, Price: 120, Commission: 18, Date: day},
		// Remaining 100 sold at 95 realizes -1000 minus commission.
		sim.Trade{Symbol: "A", Side: sim.Sell, Quantity: 100, Price: 95, Commission: 14.25, Date: day},
	)

	st := computeTradeStats(trades)
	assert.Equal(t, 1, st.winning)
	assert.Equal(t, 1, st.losing)
	assert.InDelta(t, 0.5, st.winRate, 1e-9)
	assert.InDelta(t, 1482, st.avgWin, 1e-9)
	assert.InDelta(t, 1014.25, st.avgLoss, 1e-9)
	assert.InDelta(t, 1482/1014.25, st.profitFactor, 1e-9)
}

func TestComputeTradeStatsAllWinners(t *testing.T) {
	trades := tradeLog(
		sim.Trade{Symbol: "A", Side: sim.Buy, Quantity: 10, Price: 100},
		sim.Trade{Symbol: "A", Side: sim.Sell, Quantity: 10, Price: 110},
	)

	st := computeTradeStats(trades)
	assert.Equal(t, 1, st.winning)
	assert.Equal(t, 0, st.losing)
	assert.Equal(t, 1.0, st.winRate)
	assert.True(t, math.IsInf(st.profitFactor, 1))
}

func TestComputeTradeStatsBuysOnly(t *testing.T) {
	trades := tradeLog(
		sim.Trade{Symbol: "A", Side: sim.Buy, Quantity: 10, Price: 100},
	)

	st := computeTradeStats(trades)
	assert.Equal(t, 0, st.winning)
	assert.Equal(t, 0, st.losing)
	assert.Equal(t, 0.0, st.winRate)
	assert.Equal(t, 0.0, st.profitFactor)
}

func TestComputeTradeStatsResetsAfterFlat(t *testing.T) {
	trades := tradeLog(
		sim.Trade{Symbol: "A", Side: sim.Buy, Quantity: 10, Price: 100},
		sim.Trade{Symbol: "A", Side: sim.Sell, Quantity: 10, Price: 90},
		// A fresh position after going flat starts a new cost basis.
		sim.Trade{Symbol: "A", Side: sim.Buy, Quantity: 10, Price: 50},
		sim.Trade{Symbol: "A", Side: sim.Sell, Quantity: 10, Price: 60},
	)

	st := computeTradeStats(trades)
	assert.Equal(t, 1, st.winning)
	assert.Equal(t, 1, st.losing)
	assert.InDelta(t, 100.0, st.avgWin, 1e-9)
	assert.InDelta(t, 100.0, st.avgLoss, 1e-9)
	assert.InDelta(t, 1.0, st.profitFactor, 1e-9)
}
