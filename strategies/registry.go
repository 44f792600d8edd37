package strategies

import (
	"fmt"
	"sort"
)

// Factory builds a strategy from user parameter overrides. A nil or empty
// map yields the strategy with its schema defaults.
type Factory func(params map[string]float64) (Strategy, error)

// Registry maps strategy names to factories. It is an explicit object
// constructed at startup and passed to whoever needs dynamic lookup; there
// is no package-level registry.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name, replacing any previous entry.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New builds the named strategy with the given parameter overrides.
func (r *Registry) New(name string, params map[string]float64) (Strategy, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (known: %v)", name, r.List())
	}
	return f(params)
}

// Schema returns the parameter schema of the named strategy.
func (r *Registry) Schema(name string) (Schema, error) {
	s, err := r.New(name, nil)
	if err != nil {
		return nil, err
	}
	return s.Params(), nil
}

// List returns all registered names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDefaultRegistry returns a Registry with every built-in strategy
// registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("sma-cross", func(p map[string]float64) (Strategy, error) { return NewSMACross(p) })
	r.Register("rsi-reversion", func(p map[string]float64) (Strategy, error) { return NewRSIReversion(p) })
	r.Register("macd-cross", func(p map[string]float64) (Strategy, error) { return NewMACDCross(p) })
	r.Register("bollinger-reversion", func(p map[string]float64) (Strategy, error) { return NewBollingerReversion(p) })
	r.Register("triple-ma", func(p map[string]float64) (Strategy, error) { return NewTripleMA(p) })
	r.Register("breakout", func(p map[string]float64) (Strategy, error) { return NewBreakout(p) })
	r.Register("volatility-breakout", func(p map[string]float64) (Strategy, error) { return NewVolatilityBreakout(p) })
	r.Register("contrarian", func(p map[string]float64) (Strategy, error) { return NewContrarian(p) })
	r.Register("momentum", func(p map[string]float64) (Strategy, error) { return NewMomentum(p) })
	r.Register("composite", func(p map[string]float64) (Strategy, error) { return NewComposite(p) })
	r.Register("defensive-value", func(p map[string]float64) (Strategy, error) { return NewDefensiveValue(p) })
	r.Register("buy-hold", func(p map[string]float64) (Strategy, error) { return NewBuyHold(p) })
	return r
}
