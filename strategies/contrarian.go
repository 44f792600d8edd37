package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/sim"
)

// Contrarian fades short streaks: it buys after a run of consecutive down
// closes and exits after a run of consecutive up closes. Sizes entries at
// 6% of available cash.
type Contrarian struct {
	streak   int
	fraction float64
}

var contrarianSchema = Schema{
	{Name: "streak", Type: ParamInt, Default: 3, Min: 2, Max: 10, Help: "consecutive closes to fade"},
	{Name: "fraction", Type: ParamFloat, Default: 0.06, Min: 0.01, Max: 1, Help: "cash fraction per entry"},
}

// NewContrarian builds the strategy from parameter overrides.
func NewContrarian(params map[string]float64) (*Contrarian, error) {
	v, err := contrarianSchema.Resolve(params)
	if err != nil {
		return nil, err
	}
	return &Contrarian{
		streak:   v.Int("streak"),
		fraction: v.Float("fraction"),
	}, nil
}

func (s *Contrarian) Name() string   { return "contrarian" }
func (s *Contrarian) Params() Schema { return contrarianSchema }

func (s *Contrarian) Decide(ctx Context) ([]sim.Proposed, error) {
	var out []sim.Proposed
	for _, sym := range symbols(ctx.Bars) {
		bar := ctx.Bars[sym]
		series := ctx.History.Series(sym)
		if series.Len() < s.streak+1 {
			continue
		}

		closes := series.Closes()
		i := len(closes) - 1

		down, up := true, true
		for j := 0; j < s.streak; j++ {
			if closes[i-j] >= closes[i-j-1] {
				down = false
			}
			if closes[i-j] <= closes[i-j-1] {
				up = false
			}
		}

		pos, held := ctx.Positions[sym]
		switch {
		case down && !held:
			if qty := shares(ctx.Cash, s.fraction, bar.Close); qty > 0 {
				out = append(out, sim.Proposed{
					Symbol:   sym,
					Side:     sim.Buy,
					Quantity: qty,
					Price:    bar.Close,
					Reason:   fmt.Sprintf("%d Consecutive Down Days", s.streak),
				})
			}
		case up && held:
			out = append(out, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    bar.Close,
				Reason:   fmt.Sprintf("%d Consecutive Up Days", s.streak),
			})
		}
	}
	return out, nil
}
