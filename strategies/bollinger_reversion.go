package strategies

import (
	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/sim"
)

// BollingerReversion buys when the close drops below the lower band and
// exits above the upper band. Sizes entries at 8% of available cash.
type BollingerReversion struct {
	period   int
	width    float64
	fraction float64
}

var bollingerSchema = Schema{
	{Name: "period", Type: ParamInt, Default: 20, Min: 5, Max: 200, Help: "band SMA period"},
	{Name: "width", Type: ParamFloat, Default: 2.0, Min: 0.5, Max: 5, Help: "stddev multiplier"},
	{Name: "fraction", Type: ParamFloat, Default: 0.08, Min: 0.01, Max: 1, Help: "cash fraction per entry"},
}

// NewBollingerReversion builds the strategy from parameter overrides.
func NewBollingerReversion(params map[string]float64) (*BollingerReversion, error) {
	v, err := bollingerSchema.Resolve(params)
	if err != nil {
		return nil, err
	}
	return &BollingerReversion{
		period:   v.Int("period"),
		width:    v.Float("width"),
		fraction: v.Float("fraction"),
	}, nil
}

func (s *BollingerReversion) Name() string   { return "bollinger-reversion" }
func (s *BollingerReversion) Params() Schema { return bollingerSchema }

func (s *BollingerReversion) Decide(ctx Context) ([]sim.Proposed, error) {
	var out []sim.Proposed
	for _, sym := range symbols(ctx.Bars) {
		bar := ctx.Bars[sym]
		series := ctx.History.Series(sym)
		if series.Len() < s.period {
			continue
		}

		_, upper, lower := indicators.Bollinger(series.Closes(), s.period, s.width)
		i := series.Len() - 1
		if !defined(upper[i], lower[i]) {
			continue
		}

		pos, held := ctx.Positions[sym]
		switch {
		case bar.Close < lower[i] && !held:
			if qty := shares(ctx.Cash, s.fraction, bar.Close); qty > 0 {
				out = append(out, sim.Proposed{
					Symbol:   sym,
					Side:     sim.Buy,
					Quantity: qty,
					Price:    bar.Close,
					Reason:   "Below Lower Bollinger Band",
				})
			}
		case bar.Close > upper[i] && held:
			out = append(out, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    bar.Close,
				Reason:   "Above Upper Bollinger Band",
			})
		}
	}
	return out, nil
}
