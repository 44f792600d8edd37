package market

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestSortBars(t *testing.T) {
	bars := []Bar{
		{Symbol: "B", Date: day(2)},
		{Symbol: "A", Date: day(2)},
		{Symbol: "Z", Date: day(1)},
	}
	SortBars(bars)

	assert.Equal(t, "Z", bars[0].Symbol)
	assert.Equal(t, "A", bars[1].Symbol)
	assert.Equal(t, "B", bars[2].Symbol)
}

func TestGroupByDate(t *testing.T) {
	bars := []Bar{
		{Symbol: "A", Date: day(1)},
		{Symbol: "B", Date: day(1)},
		{Symbol: "A", Date: day(2)},
	}
	dates, groups := GroupByDate(bars)

	require.Len(t, dates, 2)
	assert.Equal(t, day(1), dates[0])
	assert.Len(t, groups[day(1)], 2)
	assert.Len(t, groups[day(2)], 1)
}

func TestHistorySeriesIsACopy(t *testing.T) {
	h := NewHistory()
	h.Append(Bar{Symbol: "A", Date: day(1), Close: 100})
	h.Append(Bar{Symbol: "A", Date: day(2), Close: 101})

	s := h.Series("A")
	closes := s.Closes()
	closes[0] = -1

	assert.Equal(t, 100.0, h.Series("A").Closes()[0])
	assert.Equal(t, 2, s.Len())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 101.0, last.Close)

	_, ok = h.Series("MISSING").Last()
	assert.False(t, ok)
}

func TestMemoryRepositoryQuery(t *testing.T) {
	repo := NewMemoryRepository(
		Bar{Symbol: "A", Date: day(1), Close: 100},
		Bar{Symbol: "A", Date: day(5), Close: 105},
		Bar{Symbol: "B", Date: day(3), Close: 50},
		Bar{Symbol: "C", Date: day(3), Close: 10},
	)

	bars, err := repo.Query([]string{"A", "B"}, day(2), day(5))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "B", bars[0].Symbol)
	assert.Equal(t, "A", bars[1].Symbol)

	// No data is an empty result, not an error.
	bars, err = repo.Query([]string{"X"}, day(1), day(5))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestCSVRepository(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bars.csv")
	data := "date,symbol,open,high,low,close,volume\n" +
		"2024-01-01,AAPL,99,101,98,100,1000\n" +
		"2024-01-02,AAPL,100,103,100,102,1100\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	repo := NewCSVRepository(path)
	bars, err := repo.Query([]string{"AAPL"}, day(1), day(2))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 100.0, bars[0].Close)
	assert.Equal(t, 1100.0, bars[1].Volume)
}

func TestCSVRepositoryBadRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte("2024-01-01,AAPL,1,2\n"), 0644))

	_, err := NewCSVRepository(path).Query([]string{"AAPL"}, day(1), day(2))
	assert.Error(t, err)
}
