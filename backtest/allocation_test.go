package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/strategies"
)

func TestValidateAllocations(t *testing.T) {
	assert.NoError(t, ValidateAllocations([]Allocation{
		{Strategy: "buy-hold", Percent: 60},
		{Strategy: "sma-cross", Percent: 40},
	}))

	// Float rounding inside tolerance is fine.
	assert.NoError(t, ValidateAllocations([]Allocation{
		{Strategy: "a", Percent: 33.33},
		{Strategy: "b", Percent: 33.33},
		{Strategy: "c", Percent: 33.34},
	}))

	assert.ErrorIs(t, ValidateAllocations(nil), ErrBadAllocation)
	assert.ErrorIs(t, ValidateAllocations([]Allocation{
		{Strategy: "a", Percent: 50},
		{Strategy: "b", Percent: 40},
	}), ErrBadAllocation)
	assert.ErrorIs(t, ValidateAllocations([]Allocation{
		{Strategy: "a", Percent: 110},
		{Strategy: "b", Percent: -10},
	}), ErrBadAllocation)
}

func TestAllocatorRunsSlicesIndependently(t *testing.T) {
	repo := market.NewMemoryRepository(barsFromCloses(map[string][]float64{
		"A": {100, 100, 100},
	})...)

	alloc := NewAllocator(frictionless([]string{"A"}, 3, 200_000),
		repo, strategies.NewDefaultRegistry(), nil, nil)

	res, err := alloc.Run(context.Background(), []Allocation{
		{Strategy: "buy-hold", Percent: 75},
		{Strategy: "sma-cross", Percent: 25},
	})
	require.NoError(t, err)

	require.Len(t, res.Runs, 2)
	assert.Equal(t, 200_000.0, res.InitialCash)

	// Flat prices: buy-hold deploys its slice at cost, sma-cross never
	// trades, so the portfolio ends where it started.
	assert.InDelta(t, 200_000, res.FinalCash, 1e-9)
	assert.InDelta(t, 0, res.TotalReturn, 1e-9)

	byStrategy := map[string]*Result{}
	for _, r := range res.Runs {
		byStrategy[r.Strategy] = r
	}
	require.Contains(t, byStrategy, "buy-hold")
	require.Contains(t, byStrategy, "sma-cross")
	assert.Equal(t, 150_000.0, byStrategy["buy-hold"].InitialCash)
	assert.Equal(t, 50_000.0, byStrategy["sma-cross"].InitialCash)
	assert.Empty(t, byStrategy["sma-cross"].Trades)
	assert.NotEqual(t, byStrategy["buy-hold"].RunID, byStrategy["sma-cross"].RunID)
}

func TestAllocatorUnknownStrategyFails(t *testing.T) {
	repo := market.NewMemoryRepository(barsFromCloses(map[string][]float64{
		"A": {100},
	})...)
	alloc := NewAllocator(frictionless([]string{"A"}, 1, 100_000),
		repo, strategies.NewDefaultRegistry(), nil, nil)

	_, err := alloc.Run(context.Background(), []Allocation{
		{Strategy: "buy-hold", Percent: 50},
		{Strategy: "does-not-exist", Percent: 50},
	})
	assert.Error(t, err)
}
