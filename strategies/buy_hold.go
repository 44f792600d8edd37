package strategies

import "github.com/rustyeddy/backtester/sim"

// BuyHold is the passive baseline. It only acts when no positions are open
// at all (normally the first day of a run), splitting cash evenly across
// the day's symbols, and then never trades again.
type BuyHold struct{}

var buyHoldSchema = Schema{}

// NewBuyHold builds the strategy. It takes no parameters; any supplied
// override is rejected.
func NewBuyHold(params map[string]float64) (*BuyHold, error) {
	if _, err := buyHoldSchema.Resolve(params); err != nil {
		return nil, err
	}
	return &BuyHold{}, nil
}

func (s *BuyHold) Name() string   { return "buy-hold" }
func (s *BuyHold) Params() Schema { return buyHoldSchema }

func (s *BuyHold) Decide(ctx Context) ([]sim.Proposed, error) {
	if len(ctx.Positions) > 0 || len(ctx.Bars) == 0 {
		return nil, nil
	}

	perSymbol := ctx.Cash / float64(len(ctx.Bars))

	var out []sim.Proposed
	for _, sym := range symbols(ctx.Bars) {
		bar := ctx.Bars[sym]
		qty := shares(perSymbol, 1, bar.Close)
		if qty == 0 {
			continue
		}
		out = append(out, sim.Proposed{
			Symbol:   sym,
			Side:     sim.Buy,
			Quantity: qty,
			Price:    bar.Close,
			Reason:   "Buy and Hold",
		})
	}
	return out, nil
}
