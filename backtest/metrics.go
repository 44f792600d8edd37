package backtest

import (
	"math"

	"github.com/rustyeddy/backtester/sim"
)

// tradingDaysPerYear annualizes the Sharpe ratio.
const tradingDaysPerYear = 252

// MaxDrawdown returns the largest peak-to-trough decline of the value
// series as a percentage of the running peak.
func MaxDrawdown(values []float64) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD * 100
}

// SharpeRatio annualizes mean daily return over its volatility. Zero when
// volatility is zero or there are no returns.
func SharpeRatio(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range dailyReturns {
		mean += r
	}
	mean /= float64(len(dailyReturns))

	variance := 0.0
	for _, r := range dailyReturns {
		d := r - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(dailyReturns)))
	if stddev == 0 {
		return 0
	}

	return mean / stddev * math.Sqrt(tradingDaysPerYear)
}

// tradeStats summarizes realized round-trips from the executed trade log.
type tradeStats struct {
	winning      int
	losing       int
	winRate      float64
	avgWin       float64
	avgLoss      float64
	profitFactor float64
}

// computeTradeStats replays the trade log per symbol, matching each sell
// against the running quantity-weighted average cost of the buys before it.
// One sell yields one realized P&L sample:
//
//	(sellFill - avgCostAtSellTime) * sellQuantity - sellCommission
//
// Buy commissions are not folded into the average cost; only the sell's own
// commission is attributed to its sample.
func computeTradeStats(trades []sim.Trade) tradeStats {
	type book struct {
		qty int64
		avg float64
	}
	books := make(map[string]*book)

	var samples []float64
	for _, t := range trades {
		b := books[t.Symbol]
		if b == nil {
			b = &book{}
			books[t.Symbol] = b
		}

		switch t.Side {
		case sim.Buy:
			total := b.qty + t.Quantity
			b.avg = (b.avg*float64(b.qty) + t.Price*float64(t.Quantity)) / float64(total)
			b.qty = total
		case sim.Sell:
			pnl := (t.Price-b.avg)*float64(t.Quantity) - t.Commission
			samples = append(samples, pnl)
			b.qty -= t.Quantity
			if b.qty <= 0 {
				b.qty = 0
				b.avg = 0
			}
		}
	}

	var st tradeStats
	var sumWins, sumLosses float64
	for _, pnl := range samples {
		switch {
		case pnl > 0:
			st.winning++
			sumWins += pnl
		case pnl < 0:
			st.losing++
			sumLosses += pnl
		}
	}

	if st.winning+st.losing > 0 {
		st.winRate = float64(st.winning) / float64(st.winning+st.losing)
	}
	if st.winning > 0 {
		st.avgWin = sumWins / float64(st.winning)
	}
	if st.losing > 0 {
		st.avgLoss = math.Abs(sumLosses / float64(st.losing))
	}

	switch {
	case st.winning > 0 && sumLosses == 0:
		st.profitFactor = math.Inf(1)
	case sumLosses != 0:
		st.profitFactor = sumWins / math.Abs(sumLosses)
	}

	return st
}
