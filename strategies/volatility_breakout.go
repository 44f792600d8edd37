package strategies

import (
	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/sim"
)

// VolatilityBreakout buys when today's close advances more than a multiple
// of ATR over the previous close, and exits on an equally large decline.
// Sizes entries at 8% of available cash.
type VolatilityBreakout struct {
	period     int
	multiplier float64
	fraction   float64
}

var volBreakoutSchema = Schema{
	{Name: "period", Type: ParamInt, Default: 14, Min: 2, Max: 100, Help: "ATR period"},
	{Name: "multiplier", Type: ParamFloat, Default: 1.5, Min: 0.5, Max: 5, Help: "ATR multiple for a breakout"},
	{Name: "fraction", Type: ParamFloat, Default: 0.08, Min: 0.01, Max: 1, Help: "cash fraction per entry"},
}

// NewVolatilityBreakout builds the strategy from parameter overrides.
func NewVolatilityBreakout(params map[string]float64) (*VolatilityBreakout, error) {
	v, err := volBreakoutSchema.Resolve(params)
	if err != nil {
		return nil, err
	}
	return &VolatilityBreakout{
		period:     v.Int("period"),
		multiplier: v.Float("multiplier"),
		fraction:   v.Float("fraction"),
	}, nil
}

func (s *VolatilityBreakout) Name() string   { return "volatility-breakout" }
func (s *VolatilityBreakout) Params() Schema { return volBreakoutSchema }

func (s *VolatilityBreakout) Decide(ctx Context) ([]sim.Proposed, error) {
	var out []sim.Proposed
	for _, sym := range symbols(ctx.Bars) {
		bar := ctx.Bars[sym]
		series := ctx.History.Series(sym)
		if series.Len() < s.period+2 {
			continue
		}

		closes := series.Closes()
		atr := indicators.ATR(series.Highs(), series.Lows(), closes, s.period)

		i := len(closes) - 1
		// Range measured against yesterday's ATR so today's move cannot
		// inflate its own threshold.
		if !defined(atr[i-1]) {
			continue
		}

		move := closes[i] - closes[i-1]
		threshold := s.multiplier * atr[i-1]
		pos, held := ctx.Positions[sym]

		switch {
		case move > threshold && !held:
			if qty := shares(ctx.Cash, s.fraction, bar.Close); qty > 0 {
				out = append(out, sim.Proposed{
					Symbol:   sym,
					Side:     sim.Buy,
					Quantity: qty,
					Price:    bar.Close,
					Reason:   "Volatility Breakout Up",
				})
			}
		case move < -threshold && held:
			out = append(out, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    bar.Close,
				Reason:   "Volatility Breakout Down",
			})
		}
	}
	return out, nil
}
