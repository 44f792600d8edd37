// Package market provides daily OHLCV bars, per-symbol history buffers and
// the repositories that load bars from datasets.
package market

import (
	"sort"
	"time"
)

// Bar represents one daily OHLCV bar for a single symbol.
type Bar struct {
	Symbol string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// SortBars orders bars by date, then by symbol for equal dates. This is the
// canonical ordering repositories must return and the engine relies on.
func SortBars(bars []Bar) {
	sort.Slice(bars, func(i, j int) bool {
		if !bars[i].Date.Equal(bars[j].Date) {
			return bars[i].Date.Before(bars[j].Date)
		}
		return bars[i].Symbol < bars[j].Symbol
	})
}

// GroupByDate splits sorted bars into per-date groups, preserving order.
// The returned dates are ascending and unique.
func GroupByDate(bars []Bar) ([]time.Time, map[time.Time][]Bar) {
	groups := make(map[time.Time][]Bar)
	var dates []time.Time

	for _, b := range bars {
		d := b.Date
		if _, ok := groups[d]; !ok {
			dates = append(dates, d)
		}
		groups[d] = append(groups[d], b)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, groups
}
