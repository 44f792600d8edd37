package market

// History accumulates bars per symbol as a backtest advances. It is
// append-only and owned exclusively by the engine; strategies only ever see
// read-only Series views, so the shared history cannot be mutated from a
// strategy's Decide call.
type History struct {
	bars map[string][]Bar
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{bars: make(map[string][]Bar)}
}

// Append adds a bar to the symbol's buffer. Bars must arrive in ascending
// date order; History does not re-sort.
func (h *History) Append(b Bar) {
	h.bars[b.Symbol] = append(h.bars[b.Symbol], b)
}

// Len returns the number of bars accumulated for symbol.
func (h *History) Len(symbol string) int {
	return len(h.bars[symbol])
}

// Series returns a read-only view over the bars accumulated for symbol.
func (h *History) Series(symbol string) Series {
	return Series{bars: h.bars[symbol]}
}

// Series is an immutable view over one symbol's accumulated bars. Accessors
// that return slices always copy, so holders cannot reach the underlying
// buffer.
type Series struct {
	bars []Bar
}

// Len returns the number of bars in the view.
func (s Series) Len() int { return len(s.bars) }

// Bar returns the i-th bar (0 is oldest).
func (s Series) Bar(i int) Bar { return s.bars[i] }

// Last returns the most recent bar. The second return is false when the
// series is empty.
func (s Series) Last() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// Closes returns a copy of all close prices, oldest first.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Close
	}
	return out
}

// Highs returns a copy of all high prices, oldest first.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.High
	}
	return out
}

// Lows returns a copy of all low prices, oldest first.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Low
	}
	return out
}

// Volumes returns a copy of all volumes, oldest first.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Volume
	}
	return out
}
