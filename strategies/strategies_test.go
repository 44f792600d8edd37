package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sim"
)

// buildCtx fills a history from per-symbol close series (high=low=close)
// and returns a Context for the final day.
func buildCtx(t *testing.T, closes map[string][]float64, cash float64, positions map[string]sim.Position) Context {
	t.Helper()

	h := market.NewHistory()
	bars := make(map[string]market.Bar)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var date time.Time
	for sym, series := range closes {
		for i, c := range series {
			date = base.AddDate(0, 0, i)
			b := market.Bar{
				Symbol: sym, Date: date,
				Open: c, High: c, Low: c, Close: c, Volume: 1000,
			}
			h.Append(b)
			bars[sym] = b
		}
	}

	if positions == nil {
		positions = map[string]sim.Position{}
	}
	return Context{
		Date:      date,
		Bars:      bars,
		Cash:      cash,
		Positions: positions,
		History:   h,
	}
}

// goldenCrossCloses is flat at 100 for 20 days, then rises linearly to 120
// by day 31.
func goldenCrossCloses() []float64 {
	closes := make([]float64, 31)
	for i := 0; i < 20; i++ {
		closes[i] = 100
	}
	for i := 20; i < 31; i++ {
		closes[i] = 100 + float64(i-19)*(20.0/11.0)
	}
	closes[30] = 120
	return closes
}

func TestSchemaResolveDefaultsAndBounds(t *testing.T) {
	s := Schema{
		{Name: "period", Type: ParamInt, Default: 14, Min: 2, Max: 100},
		{Name: "fraction", Type: ParamFloat, Default: 0.1, Min: 0.01, Max: 1},
	}

	v, err := s.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, 14, v.Int("period"))
	assert.Equal(t, 0.1, v.Float("fraction"))

	v, err = s.Resolve(map[string]float64{"period": 21})
	require.NoError(t, err)
	assert.Equal(t, 21, v.Int("period"))

	_, err = s.Resolve(map[string]float64{"period": 500})
	assert.Error(t, err)

	_, err = s.Resolve(map[string]float64{"period": 14.5})
	assert.Error(t, err)

	_, err = s.Resolve(map[string]float64{"bogus": 1})
	assert.Error(t, err)
}

func TestDefaultRegistryHasFullCatalog(t *testing.T) {
	r := NewDefaultRegistry()
	names := r.List()
	assert.Len(t, names, 12)

	for _, name := range names {
		s, err := r.New(name, nil)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
	}

	_, err := r.New("nope", nil)
	assert.Error(t, err)

	schema, err := r.Schema("sma-cross")
	require.NoError(t, err)
	assert.NotEmpty(t, schema)
}

func TestSMACrossGoldenCross(t *testing.T) {
	s, err := NewSMACross(nil)
	require.NoError(t, err)

	ctx := buildCtx(t, map[string][]float64{"AAPL": goldenCrossCloses()}, 1_000_000, nil)
	trades, err := s.Decide(ctx)
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, sim.Buy, trades[0].Side)
	assert.Equal(t, int64(833), trades[0].Quantity)
	assert.Contains(t, trades[0].Reason, "Golden Cross")
}

func TestSMACrossInsufficientLookback(t *testing.T) {
	s, err := NewSMACross(map[string]float64{"fast": 10, "slow": 10})
	require.NoError(t, err)

	// 9 bars against a 10-day SMA must stay silent.
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	ctx := buildCtx(t, map[string][]float64{"A": closes}, 100_000, nil)
	trades, err := s.Decide(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestSMACrossZeroShareProposalDropped(t *testing.T) {
	s, err := NewSMACross(nil)
	require.NoError(t, err)

	// 10% of 500 cash cannot afford a single 120-priced share.
	ctx := buildCtx(t, map[string][]float64{"A": goldenCrossCloses()}, 500, nil)
	trades, err := s.Decide(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestRSIReversionOversoldReason(t *testing.T) {
	s, err := NewRSIReversion(map[string]float64{"period": 5})
	require.NoError(t, err)

	closes := []float64{100, 98, 96, 94, 92, 90, 88}
	ctx := buildCtx(t, map[string][]float64{"A": closes}, 100_000, nil)
	trades, err := s.Decide(ctx)
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, sim.Buy, trades[0].Side)
	assert.Contains(t, trades[0].Reason, "RSI Oversold")
}

func TestRSIReversionOverboughtExit(t *testing.T) {
	s, err := NewRSIReversion(map[string]float64{"period": 5})
	require.NoError(t, err)

	closes := []float64{100, 102, 104, 106, 108, 110, 112}
	positions := map[string]sim.Position{"A": {Symbol: "A", Quantity: 7, AvgPrice: 100}}
	ctx := buildCtx(t, map[string][]float64{"A": closes}, 1_000, positions)
	trades, err := s.Decide(ctx)
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, sim.Sell, trades[0].Side)
	assert.Equal(t, int64(7), trades[0].Quantity)
}

func TestBreakoutEntry(t *testing.T) {
	s, err := NewBreakout(map[string]float64{"period": 5})
	require.NoError(t, err)

	closes := []float64{10, 10, 10, 10, 10, 12}
	ctx := buildCtx(t, map[string][]float64{"A": closes}, 10_000, nil)
	trades, err := s.Decide(ctx)
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Contains(t, trades[0].Reason, "High Breakout")
}

func TestContrarianBuysDownStreak(t *testing.T) {
	s, err := NewContrarian(nil)
	require.NoError(t, err)

	closes := []float64{100, 99, 98, 97}
	ctx := buildCtx(t, map[string][]float64{"A": closes}, 10_000, nil)
	trades, err := s.Decide(ctx)
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, sim.Buy, trades[0].Side)
	assert.Contains(t, trades[0].Reason, "Consecutive Down")
}

func TestMomentumEntryAndExit(t *testing.T) {
	s, err := NewMomentum(map[string]float64{"period": 5, "threshold": 0.05})
	require.NoError(t, err)

	up := []float64{100, 102, 104, 106, 108, 110}
	ctx := buildCtx(t, map[string][]float64{"A": up}, 10_000, nil)
	trades, err := s.Decide(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, sim.Buy, trades[0].Side)

	flat := []float64{100, 102, 104, 103, 101, 99}
	positions := map[string]sim.Position{"A": {Symbol: "A", Quantity: 3, AvgPrice: 100}}
	ctx = buildCtx(t, map[string][]float64{"A": flat}, 10_000, positions)
	trades, err = s.Decide(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, sim.Sell, trades[0].Side)
}

func TestDefensiveValueRiskOverride(t *testing.T) {
	s, err := NewDefensiveValue(nil)
	require.NoError(t, err)

	var override RiskOverride = s
	cfg := override.RiskConfig()
	assert.Equal(t, 0.03, cfg.StopLossPct)
	assert.Equal(t, 0.10, cfg.TakeProfitPct)
}

func TestBuyHoldSplitsEvenlyOnce(t *testing.T) {
	s, err := NewBuyHold(nil)
	require.NoError(t, err)

	closes := map[string][]float64{
		"A": {100},
		"B": {50},
		"C": {25},
	}
	ctx := buildCtx(t, closes, 300_000, nil)
	trades, err := s.Decide(ctx)
	require.NoError(t, err)

	require.Len(t, trades, 3)
	byQty := map[string]int64{}
	for _, tr := range trades {
		assert.Equal(t, sim.Buy, tr.Side)
		byQty[tr.Symbol] = tr.Quantity
	}
	assert.Equal(t, int64(1000), byQty["A"])
	assert.Equal(t, int64(2000), byQty["B"])
	assert.Equal(t, int64(4000), byQty["C"])

	// Holding anything at all silences the strategy.
	positions := map[string]sim.Position{"A": {Symbol: "A", Quantity: 1, AvgPrice: 100}}
	ctx = buildCtx(t, closes, 200_000, positions)
	trades, err = s.Decide(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestDecideIsDeterministic(t *testing.T) {
	r := NewDefaultRegistry()
	closes := map[string][]float64{
		"A": goldenCrossCloses(),
		"B": goldenCrossCloses(),
	}

	for _, name := range r.List() {
		s, err := r.New(name, nil)
		require.NoError(t, err)

		ctx := buildCtx(t, closes, 1_000_000, nil)
		first, err := s.Decide(ctx)
		require.NoError(t, err, name)
		second, err := s.Decide(ctx)
		require.NoError(t, err, name)
		assert.Equal(t, first, second, name)
	}
}
