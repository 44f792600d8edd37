package strategies

import (
	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/risk"
	"github.com/rustyeddy/backtester/sim"
)

// DefensiveValue only enters quiet uptrends: close above the long SMA with
// rolling volatility (stddev over mean) under a ceiling. It exits when the
// trend breaks. Sizes entries at a conservative 6% of available cash and
// overrides the run's risk thresholds with a tighter 3% stop / 10% take.
type DefensiveValue struct {
	smaPeriod int
	volPeriod int
	maxVol    float64
	fraction  float64
}

var defensiveSchema = Schema{
	{Name: "sma-period", Type: ParamInt, Default: 50, Min: 10, Max: 300, Help: "trend SMA period"},
	{Name: "vol-period", Type: ParamInt, Default: 20, Min: 5, Max: 100, Help: "volatility window"},
	{Name: "max-vol", Type: ParamFloat, Default: 0.02, Min: 0.001, Max: 0.2, Help: "max stddev/mean ratio"},
	{Name: "fraction", Type: ParamFloat, Default: 0.06, Min: 0.01, Max: 1, Help: "cash fraction per entry"},
}

// NewDefensiveValue builds the strategy from parameter overrides.
func NewDefensiveValue(params map[string]float64) (*DefensiveValue, error) {
	v, err := defensiveSchema.Resolve(params)
	if err != nil {
		return nil, err
	}
	return &DefensiveValue{
		smaPeriod: v.Int("sma-period"),
		volPeriod: v.Int("vol-period"),
		maxVol:    v.Float("max-vol"),
		fraction:  v.Float("fraction"),
	}, nil
}

func (s *DefensiveValue) Name() string   { return "defensive-value" }
func (s *DefensiveValue) Params() Schema { return defensiveSchema }

// RiskConfig tightens the engine's stop/take defaults for this strategy.
func (s *DefensiveValue) RiskConfig() risk.Config {
	return risk.Config{StopLossPct: 0.03, TakeProfitPct: 0.10}
}

func (s *DefensiveValue) Decide(ctx Context) ([]sim.Proposed, error) {
	var out []sim.Proposed
	for _, sym := range symbols(ctx.Bars) {
		bar := ctx.Bars[sym]
		series := ctx.History.Series(sym)
		if series.Len() < s.smaPeriod {
			continue
		}

		closes := series.Closes()
		i := len(closes) - 1

		sma := indicators.SMA(closes, s.smaPeriod)
		dev := indicators.StdDev(closes, s.volPeriod)
		if !defined(sma[i], dev[i]) || sma[i] <= 0 {
			continue
		}
		volRatio := dev[i] / sma[i]

		pos, held := ctx.Positions[sym]
		switch {
		case bar.Close > sma[i] && volRatio < s.maxVol && !held:
			if qty := shares(ctx.Cash, s.fraction, bar.Close); qty > 0 {
				out = append(out, sim.Proposed{
					Symbol:   sym,
					Side:     sim.Buy,
					Quantity: qty,
					Price:    bar.Close,
					Reason:   "Quiet Uptrend Entry",
				})
			}
		case bar.Close < sma[i] && held:
			out = append(out, sim.Proposed{
				Symbol:   sym,
				Side:     sim.Sell,
				Quantity: pos.Quantity,
				Price:    bar.Close,
				Reason:   "Trend Break Exit",
			})
		}
	}
	return out, nil
}
