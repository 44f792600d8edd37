package sim

// Ledger owns the cash balance and the open position map for one backtest.
// A position exists iff its quantity is greater than zero; it is created on
// the first buy for a symbol and deleted when fully sold.
type Ledger struct {
	cash      float64
	positions map[string]*Position
}

// NewLedger creates a Ledger with the given starting cash.
func NewLedger(cash float64) *Ledger {
	return &Ledger{
		cash:      cash,
		positions: make(map[string]*Position),
	}
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// Position returns a copy of the open position for symbol, if any.
func (l *Ledger) Position(symbol string) (Position, bool) {
	p, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Positions returns a copy of all open positions keyed by symbol.
func (l *Ledger) Positions() map[string]Position {
	out := make(map[string]Position, len(l.positions))
	for sym, p := range l.positions {
		out[sym] = *p
	}
	return out
}

// HasPositions reports whether any position is open.
func (l *Ledger) HasPositions() bool { return len(l.positions) > 0 }

// MarkToMarket updates each open position's mark from the day's closes.
// Symbols without a close today keep their previous mark.
func (l *Ledger) MarkToMarket(closes map[string]float64) {
	for sym, p := range l.positions {
		if close, ok := closes[sym]; ok {
			p.CurrentPrice = close
		}
	}
}

// Value returns cash plus the marked value of every open position.
func (l *Ledger) Value() float64 {
	v := l.cash
	for _, p := range l.positions {
		v += p.MarketValue()
	}
	return v
}

// applyBuy debits cash and folds the fill into the position at a
// quantity-weighted average price.
func (l *Ledger) applyBuy(symbol string, qty int64, fill, commission float64) {
	l.cash -= fill*float64(qty) + commission

	p, ok := l.positions[symbol]
	if !ok {
		l.positions[symbol] = &Position{
			Symbol:       symbol,
			Quantity:     qty,
			AvgPrice:     fill,
			CurrentPrice: fill,
		}
		return
	}

	total := p.Quantity + qty
	p.AvgPrice = (p.AvgPrice*float64(p.Quantity) + fill*float64(qty)) / float64(total)
	p.Quantity = total
	p.CurrentPrice = fill
}

// applySell credits cash and reduces the position, deleting it at zero.
func (l *Ledger) applySell(symbol string, qty int64, fill, commission float64) {
	l.cash += fill*float64(qty) - commission

	p := l.positions[symbol]
	p.Quantity -= qty
	p.CurrentPrice = fill
	if p.Quantity <= 0 {
		delete(l.positions, symbol)
	}
}
