package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/sim"
)

// RSIReversion is a mean-reversion strategy: it buys when RSI drops below
// the oversold level and exits when RSI climbs above the overbought level.
// Sizes entries at 8% of available cash.
type RSIReversion struct {
	period     int
	oversold   float64
	overbought float64
	fraction   float64
}

var rsiReversionSchema = Schema{
	{Name: "period", Type: ParamInt, Default: 14, Min: 2, Max: 100, Help: "RSI period"},
	{Name: "oversold", Type: ParamFloat, Default: 30, Min: 1, Max: 50, Help: "buy threshold"},
	{Name: "overbought", Type: ParamFloat, Default: 70, Min: 50, Max: 99, Help: "sell threshold"},
	{Name: "fraction", Type: ParamFloat, Default: 0.08, Min: 0.01, Max: 1, Help: "cash fraction per entry"},
}

// NewRSIReversion builds the strategy from parameter overrides.
func NewRSIReversion(params map[string]float64) (*RSIReversion, error) {
	v, err := rsiReversionSchema.Resolve(params)
	if err != nil {
		return nil, err
	}
	return &RSIReversion{
		period:     v.Int("period"),
		oversold:   v.Float("oversold"),
		overbought: v.Float("overbought"),
		fraction:   v.Float("fraction"),
	}, nil
}

func (s *RSIReversion) Name() string   { return "rsi-reversion" }
func (s *RSIReversion) Params() Schema { return rsiReversionSchema }

func (s *RSIReversion) Decide(ctx Context) ([]sim.Proposed, error) {
	var out []sim.Proposed
	for _, sym := range symbols(ctx.Bars) {
		bar := ctx.Bars[sym]
		series := ctx.History.Series(sym)
		if series.Len() < s.period+1 {
			continue
		}

		rsi := indicators.RSI(series.Closes(), s.period)
		value := rsi[len(rsi)-1]
		if !defined(value) {
			continue
		}

		pos, held := ctx.Positions[sym]
		switch {
		case value < s.oversold && !held:
			if qty := shares(ctx.Cash, s.fraction, bar.Close); qty > 0 {
				out = append(out, sim.Proposed{
					Symbol:   sym,
					Side:     sim.Buy,
					Quantity: qty,
					Price:    bar.Close,
					Reason:   fmt.Sprintf("RSI Oversold (%.2f)", value),
				})
			}
		case value > s.overbought && held:
			out = append(out, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    bar.Close,
				Reason:   fmt.Sprintf("RSI Overbought (%.2f)", value),
			})
		}
	}
	return out, nil
}
