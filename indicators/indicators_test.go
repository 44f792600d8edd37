package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := SMA(values, 3)

	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestSMAInsufficientData(t *testing.T) {
	out := SMA([]float64{1, 2}, 3)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}

func TestEMASeededWithFirstValue(t *testing.T) {
	values := []float64{10, 20, 30}
	out := EMA(values, 3)

	// multiplier = 0.5
	assert.InDelta(t, 10.0, out[0], 1e-9)
	assert.InDelta(t, 15.0, out[1], 1e-9)
	assert.InDelta(t, 22.5, out[2], 1e-9)
}

func TestRSIAllGains(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	out := RSI(values, 5)

	assert.True(t, math.IsNaN(out[4]))
	// No losses anywhere, so RSI pins at 100.
	assert.Equal(t, 100.0, out[5])
	assert.Equal(t, 100.0, out[7])
}

func TestRSIMixed(t *testing.T) {
	values := []float64{44, 45, 44, 46, 45, 47, 46, 48}
	out := RSI(values, 3)

	require.False(t, math.IsNaN(out[3]))
	for i := 3; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i], 0.0)
		assert.LessOrEqual(t, out[i], 100.0)
	}
}

func TestMACDHistogram(t *testing.T) {
	values := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	macd, signal, hist := MACD(values, 3, 6, 4)

	require.Len(t, macd, 10)
	for i := range values {
		assert.InDelta(t, macd[i]-signal[i], hist[i], 1e-9)
	}
	// Steady uptrend keeps the fast EMA above the slow EMA.
	assert.Greater(t, macd[9], 0.0)
}

func TestBollingerBands(t *testing.T) {
	values := []float64{2, 4, 6, 8, 10}
	middle, upper, lower := Bollinger(values, 5, 2)

	assert.True(t, math.IsNaN(upper[3]))
	assert.InDelta(t, 6.0, middle[4], 1e-9)

	// population stddev of 2,4,6,8,10 = sqrt(8)
	dev := math.Sqrt(8)
	assert.InDelta(t, 6+2*dev, upper[4], 1e-9)
	assert.InDelta(t, 6-2*dev, lower[4], 1e-9)
}

func TestStochastic(t *testing.T) {
	highs := []float64{10, 12, 14}
	lows := []float64{8, 9, 10}
	closes := []float64{9, 11, 13}

	out := Stochastic(highs, lows, closes, 3)
	assert.True(t, math.IsNaN(out[1]))
	// (13-8)/(14-8)*100
	assert.InDelta(t, 83.3333, out[2], 0.001)
}

func TestStochasticFlatRange(t *testing.T) {
	flat := []float64{5, 5, 5}
	out := Stochastic(flat, flat, flat, 3)
	assert.Equal(t, 50.0, out[2])
}

func TestATRWilder(t *testing.T) {
	highs := []float64{10, 11, 12, 13, 14}
	lows := []float64{9, 10, 11, 12, 13}
	closes := []float64{9.5, 10.5, 11.5, 12.5, 13.5}

	out := ATR(highs, lows, closes, 3)
	assert.True(t, math.IsNaN(out[2]))
	// Every true range is 1.5 (high-low 1, but gap vs prev close 1.5).
	assert.InDelta(t, 1.5, out[3], 1e-9)
	assert.InDelta(t, 1.5, out[4], 1e-9)
}

func TestStdDevWindow(t *testing.T) {
	out := StdDev([]float64{1, 1, 1, 5}, 2)
	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 0.0, out[1], 1e-9)
	assert.InDelta(t, 2.0, out[3], 1e-9)
}
