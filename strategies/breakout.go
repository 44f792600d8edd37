package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/sim"
)

// Breakout buys when today's close exceeds the highest high of the
// preceding lookback window and exits when it falls under the lowest low of
// that window. Sizes entries at 10% of available cash.
type Breakout struct {
	period   int
	fraction float64
}

var breakoutSchema = Schema{
	{Name: "period", Type: ParamInt, Default: 20, Min: 5, Max: 200, Help: "lookback window (bars)"},
	{Name: "fraction", Type: ParamFloat, Default: 0.10, Min: 0.01, Max: 1, Help: "cash fraction per entry"},
}

// NewBreakout builds the strategy from parameter overrides.
func NewBreakout(params map[string]float64) (*Breakout, error) {
	v, err := breakoutSchema.Resolve(params)
	if err != nil {
		return nil, err
	}
	return &Breakout{
		period:   v.Int("period"),
		fraction: v.Float("fraction"),
	}, nil
}

func (s *Breakout) Name() string   { return "breakout" }
func (s *Breakout) Params() Schema { return breakoutSchema }

func (s *Breakout) Decide(ctx Context) ([]sim.Proposed, error) {
	var out []sim.Proposed
	for _, sym := range symbols(ctx.Bars) {
		bar := ctx.Bars[sym]
		series := ctx.History.Series(sym)
		// Window excludes today, so we need period prior bars plus today's.
		if series.Len() < s.period+1 {
			continue
		}

		highs := series.Highs()
		lows := series.Lows()
		n := series.Len() - 1 // index of today's bar

		hi := highs[n-s.period]
		lo := lows[n-s.period]
		for j := n - s.period + 1; j < n; j++ {
			if highs[j] > hi {
				hi = highs[j]
			}
			if lows[j] < lo {
				lo = lows[j]
			}
		}

		pos, held := ctx.Positions[sym]
		switch {
		case bar.Close > hi && !held:
			if qty := shares(ctx.Cash, s.fraction, bar.Close); qty > 0 {
				out = append(out, sim.Proposed{
					Symbol:   sym,
					Side:     sim.Buy,
					Quantity: qty,
					Price:    bar.Close,
					Reason:   fmt.Sprintf("%d-Day High Breakout", s.period),
				})
			}
		case bar.Close < lo && held:
			out = append(out, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    bar.Close,
				Reason:   fmt.Sprintf("%d-Day Low Breakdown", s.period),
			})
		}
	}
	return out, nil
}
