package strategies

import (
	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/sim"
)

// SMACross buys when the fast SMA crosses above the slow SMA (golden cross)
// and sells the full position when it crosses back below (death cross).
// Sizes entries at 10% of available cash.
type SMACross struct {
	fast     int
	slow     int
	fraction float64
}

var smaCrossSchema = Schema{
	{Name: "fast", Type: ParamInt, Default: 10, Min: 2, Max: 100, Help: "fast SMA period"},
	{Name: "slow", Type: ParamInt, Default: 30, Min: 5, Max: 300, Help: "slow SMA period"},
	{Name: "fraction", Type: ParamFloat, Default: 0.10, Min: 0.01, Max: 1, Help: "cash fraction per entry"},
}

// NewSMACross builds the strategy from parameter overrides.
func NewSMACross(params map[string]float64) (*SMACross, error) {
	v, err := smaCrossSchema.Resolve(params)
	if err != nil {
		return nil, err
	}
	return &SMACross{
		fast:     v.Int("fast"),
		slow:     v.Int("slow"),
		fraction: v.Float("fraction"),
	}, nil
}

func (s *SMACross) Name() string   { return "sma-cross" }
func (s *SMACross) Params() Schema { return smaCrossSchema }

func (s *SMACross) Decide(ctx Context) ([]sim.Proposed, error) {
	var out []sim.Proposed
	for _, sym := range symbols(ctx.Bars) {
		bar := ctx.Bars[sym]
		series := ctx.History.Series(sym)
		if series.Len() < s.slow+1 {
			continue
		}

		closes := series.Closes()
		fast := indicators.SMA(closes, s.fast)
		slow := indicators.SMA(closes, s.slow)

		i := len(closes) - 1
		if !defined(fast[i-1], slow[i-1], fast[i], slow[i]) {
			continue
		}

		// The first eligible day counts as a cross: with exactly slow+1
		// bars there is no prior tradable state to compare against, and a
		// fast average already above the slow one is an entry.
		first := series.Len() == s.slow+1
		golden := fast[i] > slow[i] && (first || fast[i-1] <= slow[i-1])
		death := fast[i] < slow[i] && (first || fast[i-1] >= slow[i-1])
		pos, held := ctx.Positions[sym]

		switch {
		case golden && !held:
			if qty := shares(ctx.Cash, s.fraction, bar.Close); qty > 0 {
				out = append(out, sim.Proposed{
					Symbol:   sym,
					Side:     sim.Buy,
					Quantity: qty,
					Price:    bar.Close,
					Reason:   "SMA Golden Cross",
				})
			}
		case death && held:
			out = append(out, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    bar.Close,
				Reason:   "SMA Death Cross",
			})
		}
	}
	return out, nil
}
