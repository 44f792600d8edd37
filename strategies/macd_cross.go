package strategies

import (
	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/sim"
)

// MACDCross buys when the MACD histogram turns positive (MACD line crossing
// above its signal line) and exits when it turns negative. Sizes entries at
// 10% of available cash.
type MACDCross struct {
	fast     int
	slow     int
	signal   int
	fraction float64
}

var macdCrossSchema = Schema{
	{Name: "fast", Type: ParamInt, Default: 12, Min: 2, Max: 100, Help: "fast EMA period"},
	{Name: "slow", Type: ParamInt, Default: 26, Min: 5, Max: 200, Help: "slow EMA period"},
	{Name: "signal", Type: ParamInt, Default: 9, Min: 2, Max: 50, Help: "signal EMA period"},
	{Name: "fraction", Type: ParamFloat, Default: 0.10, Min: 0.01, Max: 1, Help: "cash fraction per entry"},
}

// NewMACDCross builds the strategy from parameter overrides.
func NewMACDCross(params map[string]float64) (*MACDCross, error) {
	v, err := macdCrossSchema.Resolve(params)
	if err != nil {
		return nil, err
	}
	return &MACDCross{
		fast:     v.Int("fast"),
		slow:     v.Int("slow"),
		signal:   v.Int("signal"),
		fraction: v.Float("fraction"),
	}, nil
}

func (s *MACDCross) Name() string   { return "macd-cross" }
func (s *MACDCross) Params() Schema { return macdCrossSchema }

func (s *MACDCross) Decide(ctx Context) ([]sim.Proposed, error) {
	var out []sim.Proposed
	for _, sym := range symbols(ctx.Bars) {
		bar := ctx.Bars[sym]
		series := ctx.History.Series(sym)
		// Wait out the slow EMA plus the signal line warmup before trusting
		// a histogram flip.
		if series.Len() < s.slow+s.signal+1 {
			continue
		}

		_, _, hist := indicators.MACD(series.Closes(), s.fast, s.slow, s.signal)
		i := len(hist) - 1
		if !defined(hist[i-1], hist[i]) {
			continue
		}

		bull := hist[i] > 0 && hist[i-1] <= 0
		bear := hist[i] < 0 && hist[i-1] >= 0
		pos, held := ctx.Positions[sym]

		switch {
		case bull && !held:
			if qty := shares(ctx.Cash, s.fraction, bar.Close); qty > 0 {
				out = append(out, sim.Proposed{
					Symbol:   sym,
					Side:     sim.Buy,
					Quantity: qty,
					Price:    bar.Close,
					Reason:   "MACD Bullish Cross",
				})
			}
		case bear && held:
			out = append(out, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    bar.Close,
				Reason:   "MACD Bearish Cross",
			})
		}
	}
	return out, nil
}
