package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/sim"
)

// Momentum rides continuation: it buys when the rate of change over the
// lookback clears a threshold and exits when momentum turns non-positive.
// Sizes entries at 12% of available cash.
type Momentum struct {
	period    int
	threshold float64
	fraction  float64
}

var momentumSchema = Schema{
	{Name: "period", Type: ParamInt, Default: 20, Min: 2, Max: 200, Help: "rate-of-change lookback"},
	{Name: "threshold", Type: ParamFloat, Default: 0.05, Min: 0.005, Max: 1, Help: "minimum ROC to enter"},
	{Name: "fraction", Type: ParamFloat, Default: 0.12, Min: 0.01, Max: 1, Help: "cash fraction per entry"},
}

// NewMomentum builds the strategy from parameter overrides.
func NewMomentum(params map[string]float64) (*Momentum, error) {
	v, err := momentumSchema.Resolve(params)
	if err != nil {
		return nil, err
	}
	return &Momentum{
		period:    v.Int("period"),
		threshold: v.Float("threshold"),
		fraction:  v.Float("fraction"),
	}, nil
}

func (s *Momentum) Name() string   { return "momentum" }
func (s *Momentum) Params() Schema { return momentumSchema }

func (s *Momentum) Decide(ctx Context) ([]sim.Proposed, error) {
	var out []sim.Proposed
	for _, sym := range symbols(ctx.Bars) {
		bar := ctx.Bars[sym]
		series := ctx.History.Series(sym)
		if series.Len() < s.period+1 {
			continue
		}

		closes := series.Closes()
		i := len(closes) - 1
		base := closes[i-s.period]
		if base <= 0 {
			continue
		}
		roc := closes[i]/base - 1

		pos, held := ctx.Positions[sym]
		switch {
		case roc >= s.threshold && !held:
			if qty := shares(ctx.Cash, s.fraction, bar.Close); qty > 0 {
				out = append(out, sim.Proposed{
					Symbol:   sym,
					Side:     sim.Buy,
					Quantity: qty,
					Price:    bar.Close,
					Reason:   fmt.Sprintf("Momentum +%.1f%%", roc*100),
				})
			}
		case roc <= 0 && held:
			out = append(out, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    bar.Close,
				Reason:   "Momentum Faded",
			})
		}
	}
	return out, nil
}
