// Package sim models the cash/position ledger of a backtest and the
// execution of proposed trades against it, including commission and
// slippage.
package sim

import (
	"errors"
	"time"
)

// Side distinguishes buys from sells.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Rejection reasons double as audit strings in the journal, so the message
// text is fixed.
var (
	ErrInvalidQuantity    = errors.New("Invalid quantity")
	ErrInsufficientCash   = errors.New("Insufficient cash")
	ErrInsufficientShares = errors.New("Insufficient shares to sell")
)

// Proposed is a trade candidate emitted by a strategy or the risk manager.
// It has not been validated and is never persisted directly. Price is the
// reference price (normally the day's close) before slippage.
type Proposed struct {
	Symbol   string
	Side     Side
	Quantity int64
	Price    float64
	Reason   string
}

// Trade is a filled order. Price is the actual fill after slippage and
// Commission the fee charged on the fill. Trades are immutable once
// executed and appended to the trade log in execution order.
type Trade struct {
	Symbol     string
	Side       Side
	Quantity   int64
	Price      float64
	Date       time.Time
	Commission float64
	Reason     string
}

// Position is an open holding. AvgPrice is the quantity-weighted average
// entry price across buys; CurrentPrice is the latest mark.
type Position struct {
	Symbol       string
	Quantity     int64
	AvgPrice     float64
	CurrentPrice float64
}

// UnrealizedPL returns the open profit/loss at the current mark.
func (p Position) UnrealizedPL() float64 {
	return float64(p.Quantity) * (p.CurrentPrice - p.AvgPrice)
}

// MarketValue returns quantity times the current mark.
func (p Position) MarketValue() float64 {
	return float64(p.Quantity) * p.CurrentPrice
}
