package strategies

import (
	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/sim"
)

// TripleMA is a trend follower over three stacked SMAs. It buys when the
// short/mid/long averages first align upward (short > mid > long) and exits
// when the short average falls back under the mid. Sizes entries at 12% of
// available cash.
type TripleMA struct {
	short    int
	mid      int
	long     int
	fraction float64
}

var tripleMASchema = Schema{
	{Name: "short", Type: ParamInt, Default: 5, Min: 2, Max: 50, Help: "short SMA period"},
	{Name: "mid", Type: ParamInt, Default: 20, Min: 5, Max: 100, Help: "mid SMA period"},
	{Name: "long", Type: ParamInt, Default: 50, Min: 10, Max: 300, Help: "long SMA period"},
	{Name: "fraction", Type: ParamFloat, Default: 0.12, Min: 0.01, Max: 1, Help: "cash fraction per entry"},
}

// NewTripleMA builds the strategy from parameter overrides.
func NewTripleMA(params map[string]float64) (*TripleMA, error) {
	v, err := tripleMASchema.Resolve(params)
	if err != nil {
		return nil, err
	}
	return &TripleMA{
		short:    v.Int("short"),
		mid:      v.Int("mid"),
		long:     v.Int("long"),
		fraction: v.Float("fraction"),
	}, nil
}

func (s *TripleMA) Name() string   { return "triple-ma" }
func (s *TripleMA) Params() Schema { return tripleMASchema }

func (s *TripleMA) Decide(ctx Context) ([]sim.Proposed, error) {
	var out []sim.Proposed
	for _, sym := range symbols(ctx.Bars) {
		bar := ctx.Bars[sym]
		series := ctx.History.Series(sym)
		if series.Len() < s.long+1 {
			continue
		}

		closes := series.Closes()
		short := indicators.SMA(closes, s.short)
		mid := indicators.SMA(closes, s.mid)
		long := indicators.SMA(closes, s.long)

		i := len(closes) - 1
		if !defined(short[i-1], mid[i-1], long[i-1], short[i], mid[i], long[i]) {
			continue
		}

		alignedNow := short[i] > mid[i] && mid[i] > long[i]
		alignedPrev := short[i-1] > mid[i-1] && mid[i-1] > long[i-1]
		pos, held := ctx.Positions[sym]

		switch {
		case alignedNow && !alignedPrev && !held:
			if qty := shares(ctx.Cash, s.fraction, bar.Close); qty > 0 {
				out = append(out, sim.Proposed{
					Symbol:   sym,
					Side:     sim.Buy,
					Quantity: qty,
					Price:    bar.Close,
					Reason:   "Triple MA Uptrend",
				})
			}
		case short[i] < mid[i] && held:
			out = append(out, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    bar.Close,
				Reason:   "Triple MA Trend Break",
			})
		}
	}
	return out, nil
}
