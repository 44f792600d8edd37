package market

import "time"

// BarRepository loads historical bars for a set of symbols. Implementations
// must return bars sorted by date then symbol, and an empty slice (not an
// error) when no data exists for the requested range.
type BarRepository interface {
	Query(symbols []string, start, end time.Time) ([]Bar, error)
}

// MemoryRepository is an in-memory BarRepository, used by tests and by
// callers that already hold bars from another source.
type MemoryRepository struct {
	bars []Bar
}

// NewMemoryRepository creates a MemoryRepository seeded with the given bars.
func NewMemoryRepository(bars ...Bar) *MemoryRepository {
	r := &MemoryRepository{}
	r.Add(bars...)
	return r
}

// Add appends bars to the repository.
func (r *MemoryRepository) Add(bars ...Bar) {
	r.bars = append(r.bars, bars...)
}

// Query returns the bars matching the symbols and the inclusive date range,
// sorted by date then symbol.
func (r *MemoryRepository) Query(symbols []string, start, end time.Time) ([]Bar, error) {
	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[s] = true
	}

	var out []Bar
	for _, b := range r.bars {
		if !want[b.Symbol] {
			continue
		}
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		out = append(out, b)
	}

	SortBars(out)
	return out, nil
}
