// Package indicators provides technical analysis indicators for daily bar
// series.
//
// Every function is pure: it takes a price series plus a period and returns
// a slice the same length as the input. Entries before the indicator has
// enough lookback are NaN. Callers must check NaN before acting on a value;
// a trade is never justified by a sentinel.
package indicators

import "math"

// nans returns a slice of n NaN values.
func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes the Simple Moving Average over period closes. The first
// period-1 entries are NaN.
func SMA(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the Exponential Moving Average with multiplier 2/(period+1),
// seeded with the first value. Every entry is defined; the average simply
// warms up over roughly the first period bars.
func EMA(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) == 0 {
		return out
	}

	multiplier := 2.0 / float64(period+1)
	ema := values[0]
	out[0] = ema
	for i := 1; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		out[i] = ema
	}
	return out
}

// RSI computes the Relative Strength Index using Wilder's smoothed average
// gain/loss. The first period entries are NaN. When the average loss is
// zero, RSI is 100.
func RSI(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD computes the MACD line EMA(fast)-EMA(slow), its signal line
// EMA(signalPeriod) of the MACD line, and the histogram macd-signal.
func MACD(values []float64, fast, slow, signalPeriod int) (macd, signal, histogram []float64) {
	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)

	macd = make([]float64, len(values))
	for i := range values {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	signal = EMA(macd, signalPeriod)

	histogram = make([]float64, len(values))
	for i := range values {
		histogram[i] = macd[i] - signal[i]
	}
	return macd, signal, histogram
}

// Bollinger computes Bollinger Bands: middle is SMA(period), upper/lower are
// middle +/- k standard deviations over the same window. The first period-1
// entries of each band are NaN.
func Bollinger(values []float64, period int, k float64) (middle, upper, lower []float64) {
	middle = SMA(values, period)
	dev := StdDev(values, period)

	upper = nans(len(values))
	lower = nans(len(values))
	for i := range values {
		if math.IsNaN(middle[i]) || math.IsNaN(dev[i]) {
			continue
		}
		upper[i] = middle[i] + k*dev[i]
		lower[i] = middle[i] - k*dev[i]
	}
	return middle, upper, lower
}

// StdDev computes the rolling population standard deviation over period
// values. The first period-1 entries are NaN.
func StdDev(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= float64(period)

		variance := 0.0
		for _, v := range window {
			d := v - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(period))
	}
	return out
}

// Stochastic computes the %K stochastic oscillator over the period's
// high/low range. When the range is zero, %K is 50. The first period-1
// entries are NaN.
func Stochastic(highs, lows, closes []float64, period int) []float64 {
	out := nans(len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}

	for i := period - 1; i < len(closes); i++ {
		hi := highs[i-period+1]
		lo := lows[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			hi = math.Max(hi, highs[j])
			lo = math.Min(lo, lows[j])
		}
		if hi == lo {
			out[i] = 50
			continue
		}
		out[i] = (closes[i] - lo) / (hi - lo) * 100
	}
	return out
}

// ATR computes the Average True Range using Wilder's smoothing. True range
// needs a previous close, so the first period entries are NaN.
func ATR(highs, lows, closes []float64, period int) []float64 {
	out := nans(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	trs := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		trs[i] = math.Max(hl, math.Max(hc, lc))
	}

	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trs[i]
	}
	atr /= float64(period)
	out[period] = atr

	for i := period + 1; i < len(closes); i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
		out[i] = atr
	}
	return out
}
