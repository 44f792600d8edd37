package sim

import (
	"fmt"
	"time"
)

// ExecConfig holds the fill model parameters.
type ExecConfig struct {
	CommissionRate float64 `json:"commission-rate" yaml:"commission-rate"`
	SlippageRate   float64 `json:"slippage-rate" yaml:"slippage-rate"`
}

// DefaultExecConfig returns the standard fill model: 0.15% commission and
// 0.1% slippage.
func DefaultExecConfig() ExecConfig {
	return ExecConfig{
		CommissionRate: 0.0015,
		SlippageRate:   0.001,
	}
}

// Validate classifies a proposed trade against the current cash and
// positions. It never mutates state; a nil return means the proposal may be
// executed. The returned error is one of the sim sentinel errors, possibly
// wrapped with proposal context.
func Validate(p Proposed, cfg ExecConfig, cash float64, positions map[string]Position) error {
	if p.Quantity <= 0 {
		return fmt.Errorf("%s %s x%d: %w", p.Side, p.Symbol, p.Quantity, ErrInvalidQuantity)
	}

	switch p.Side {
	case Buy:
		cost := p.Price * float64(p.Quantity) * (1 + cfg.CommissionRate)
		if cost > cash {
			return fmt.Errorf("%s %s x%d needs %.2f, have %.2f: %w",
				p.Side, p.Symbol, p.Quantity, cost, cash, ErrInsufficientCash)
		}
	case Sell:
		held := positions[p.Symbol].Quantity
		if held < p.Quantity {
			return fmt.Errorf("%s %s x%d, hold %d: %w",
				p.Side, p.Symbol, p.Quantity, held, ErrInsufficientShares)
		}
	default:
		return fmt.Errorf("unknown side %q: %w", p.Side, ErrInvalidQuantity)
	}

	return nil
}

// Executor applies validated proposals to a ledger using the configured fill
// model.
type Executor struct {
	cfg    ExecConfig
	ledger *Ledger
}

// NewExecutor creates an Executor bound to the ledger.
func NewExecutor(ledger *Ledger, cfg ExecConfig) *Executor {
	return &Executor{cfg: cfg, ledger: ledger}
}

// Config returns the executor's fill model.
func (e *Executor) Config() ExecConfig { return e.cfg }

// Execute fills a proposal and mutates the ledger.
//
// Buys fill at price*(1+slippage), sells at price*(1-slippage); commission
// is charged on the fill notional. Cash and share constraints are checked
// again here because several proposals in one day can interact: a proposal
// that validated in the morning batch may no longer be affordable after an
// earlier fill.
func (e *Executor) Execute(p Proposed, date time.Time) (Trade, error) {
	if p.Quantity <= 0 {
		return Trade{}, fmt.Errorf("%s %s x%d: %w", p.Side, p.Symbol, p.Quantity, ErrInvalidQuantity)
	}

	switch p.Side {
	case Buy:
		fill := p.Price * (1 + e.cfg.SlippageRate)
		commission := fill * float64(p.Quantity) * e.cfg.CommissionRate
		debit := fill*float64(p.Quantity) + commission
		if debit > e.ledger.cash {
			return Trade{}, fmt.Errorf("%s %s x%d needs %.2f, have %.2f: %w",
				p.Side, p.Symbol, p.Quantity, debit, e.ledger.cash, ErrInsufficientCash)
		}

		e.ledger.applyBuy(p.Symbol, p.Quantity, fill, commission)
		return Trade{
			Symbol:     p.Symbol,
			Side:       Buy,
			Quantity:   p.Quantity,
			Price:      fill,
			Date:       date,
			Commission: commission,
			Reason:     p.Reason,
		}, nil

	case Sell:
		held := e.ledger.positions[p.Symbol]
		if held == nil || held.Quantity < p.Quantity {
			heldQty := int64(0)
			if held != nil {
				heldQty = held.Quantity
			}
			return Trade{}, fmt.Errorf("%s %s x%d, hold %d: %w",
				p.Side, p.Symbol, p.Quantity, heldQty, ErrInsufficientShares)
		}

		fill := p.Price * (1 - e.cfg.SlippageRate)
		commission := fill * float64(p.Quantity) * e.cfg.CommissionRate
		e.ledger.applySell(p.Symbol, p.Quantity, fill, commission)
		return Trade{
			Symbol:     p.Symbol,
			Side:       Sell,
			Quantity:   p.Quantity,
			Price:      fill,
			Date:       date,
			Commission: commission,
			Reason:     p.Reason,
		}, nil

	default:
		return Trade{}, fmt.Errorf("unknown side %q: %w", p.Side, ErrInvalidQuantity)
	}
}
