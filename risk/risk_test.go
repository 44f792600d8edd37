package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/sim"
)

func TestStopLossForcedExit(t *testing.T) {
	m := NewManager(Default())
	positions := map[string]sim.Position{
		"A": {Symbol: "A", Quantity: 100, AvgPrice: 100},
	}

	// -6% breaches the 5% stop.
	exits := m.Check(positions, map[string]float64{"A": 94})
	require.Len(t, exits, 1)
	assert.Equal(t, sim.Sell, exits[0].Side)
	assert.Equal(t, int64(100), exits[0].Quantity)
	assert.Equal(t, "Stop Loss", exits[0].Reason)
}

func TestTakeProfitForcedExit(t *testing.T) {
	m := NewManager(Default())
	positions := map[string]sim.Position{
		"A": {Symbol: "A", Quantity: 40, AvgPrice: 100},
	}

	exits := m.Check(positions, map[string]float64{"A": 115})
	require.Len(t, exits, 1)
	assert.Equal(t, "Take Profit", exits[0].Reason)
}

func TestWithinThresholdsNoExit(t *testing.T) {
	m := NewManager(Default())
	positions := map[string]sim.Position{
		"A": {Symbol: "A", Quantity: 40, AvgPrice: 100},
	}

	assert.Empty(t, m.Check(positions, map[string]float64{"A": 96}))
	assert.Empty(t, m.Check(positions, map[string]float64{"A": 114}))
}

func TestMissingCloseSkipsPosition(t *testing.T) {
	m := NewManager(Default())
	positions := map[string]sim.Position{
		"A": {Symbol: "A", Quantity: 40, AvgPrice: 100},
	}

	assert.Empty(t, m.Check(positions, map[string]float64{"B": 10}))
}

func TestExitsOrderedBySymbol(t *testing.T) {
	m := NewManager(Default())
	positions := map[string]sim.Position{
		"Z": {Symbol: "Z", Quantity: 1, AvgPrice: 100},
		"A": {Symbol: "A", Quantity: 1, AvgPrice: 100},
	}
	closes := map[string]float64{"Z": 90, "A": 90}

	exits := m.Check(positions, closes)
	require.Len(t, exits, 2)
	assert.Equal(t, "A", exits[0].Symbol)
	assert.Equal(t, "Z", exits[1].Symbol)
}
