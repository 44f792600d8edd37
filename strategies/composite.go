package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/sim"
)

// Composite is a multi-factor vote across RSI, the MACD histogram and the
// close-versus-SMA trend filter. A net score of +2 or better opens a
// position; -2 or worse closes it. Sizes entries at 15% of available cash.
type Composite struct {
	rsiPeriod int
	smaPeriod int
	fraction  float64
}

var compositeSchema = Schema{
	{Name: "rsi-period", Type: ParamInt, Default: 14, Min: 2, Max: 100, Help: "RSI factor period"},
	{Name: "sma-period", Type: ParamInt, Default: 20, Min: 5, Max: 200, Help: "trend filter SMA period"},
	{Name: "fraction", Type: ParamFloat, Default: 0.15, Min: 0.01, Max: 1, Help: "cash fraction per entry"},
}

// macd factor uses the conventional 12/26/9 settings.
const (
	compositeMACDFast   = 12
	compositeMACDSlow   = 26
	compositeMACDSignal = 9
)

// NewComposite builds the strategy from parameter overrides.
func NewComposite(params map[string]float64) (*Composite, error) {
	v, err := compositeSchema.Resolve(params)
	if err != nil {
		return nil, err
	}
	return &Composite{
		rsiPeriod: v.Int("rsi-period"),
		smaPeriod: v.Int("sma-period"),
		fraction:  v.Float("fraction"),
	}, nil
}

func (s *Composite) Name() string   { return "composite" }
func (s *Composite) Params() Schema { return compositeSchema }

func (s *Composite) minBars() int {
	min := s.rsiPeriod + 1
	if s.smaPeriod > min {
		min = s.smaPeriod
	}
	if compositeMACDSlow+compositeMACDSignal > min {
		min = compositeMACDSlow + compositeMACDSignal
	}
	return min
}

func (s *Composite) Decide(ctx Context) ([]sim.Proposed, error) {
	var out []sim.Proposed
	for _, sym := range symbols(ctx.Bars) {
		bar := ctx.Bars[sym]
		series := ctx.History.Series(sym)
		if series.Len() < s.minBars() {
			continue
		}

		closes := series.Closes()
		i := len(closes) - 1

		rsi := indicators.RSI(closes, s.rsiPeriod)
		sma := indicators.SMA(closes, s.smaPeriod)
		_, _, hist := indicators.MACD(closes, compositeMACDFast, compositeMACDSlow, compositeMACDSignal)
		if !defined(rsi[i], sma[i], hist[i]) {
			continue
		}

		score := 0
		switch {
		case rsi[i] < 35:
			score++
		case rsi[i] > 65:
			score--
		}
		if hist[i] > 0 {
			score++
		} else {
			score--
		}
		if closes[i] > sma[i] {
			score++
		} else {
			score--
		}

		pos, held := ctx.Positions[sym]
		switch {
		case score >= 2 && !held:
			if qty := shares(ctx.Cash, s.fraction, bar.Close); qty > 0 {
				out = append(out, sim.Proposed{
					Symbol:   sym,
					Side:     sim.Buy,
					Quantity: qty,
					Price:    bar.Close,
					Reason:   fmt.Sprintf("Composite Score +%d", score),
				})
			}
		case score <= -2 && held:
			out = append(out, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    bar.Close,
				Reason:   fmt.Sprintf("Composite Score %d", score),
			})
		}
	}
	return out, nil
}
