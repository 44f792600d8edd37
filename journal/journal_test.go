package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRunLifecycleRoundTrip(t *testing.T) {
	j := openTestJournal(t)

	require.NoError(t, j.RunStarted("run-1", "sma-cross", []string{"AAPL", "MSFT"}))

	rec, err := j.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, rec.Status)
	assert.Equal(t, "AAPL,MSFT", rec.Symbols)

	require.NoError(t, j.RunCompleted(RunRecord{
		RunID:          "run-1",
		Start:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		InitialCash:    100_000,
		FinalCash:      112_000,
		TotalReturn:    12_000,
		TotalReturnPct: 12,
		MaxDrawdown:    4.5,
		SharpeRatio:    1.2,
		WinRate:        0.6,
		TotalTrades:    10,
		WinningTrades:  6,
		LosingTrades:   4,
		AvgWin:         3000,
		AvgLoss:        1500,
		ProfitFactor:   3,
	}))

	rec, err = j.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, 112_000.0, rec.FinalCash)
	assert.Equal(t, 6, rec.WinningTrades)
}

func TestRunFailedStoresCause(t *testing.T) {
	j := openTestJournal(t)

	require.NoError(t, j.RunStarted("run-2", "momentum", []string{"X"}))
	require.NoError(t, j.RunFailed("run-2", "no historical data"))

	rec, err := j.GetRun("run-2")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "no historical data", rec.Error)
}

func TestTradeAndEquityOrder(t *testing.T) {
	j := openTestJournal(t)
	require.NoError(t, j.RunStarted("run-3", "buy-hold", []string{"A"}))

	d := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordTrade(TradeRecord{
			RunID: "run-3", Seq: i, Symbol: "A", Side: "BUY",
			Quantity: int64(i + 1), Price: 100, Date: d.AddDate(0, 0, i),
		}))
		require.NoError(t, j.RecordEquity(EquitySnapshot{
			RunID: "run-3", Date: d.AddDate(0, 0, i), Cash: 1, Value: float64(i),
		}))
	}

	trades, err := j.ListTradesByRun("run-3")
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, int64(1), trades[0].Quantity)
	assert.Equal(t, int64(3), trades[2].Quantity)

	equity, err := j.ListEquityByRun("run-3")
	require.NoError(t, err)
	require.Len(t, equity, 3)
	assert.Equal(t, 2.0, equity[2].Value)
}

func TestGetRunMissing(t *testing.T) {
	j := openTestJournal(t)
	_, err := j.GetRun("missing")
	assert.Error(t, err)
}

func TestCSVJournalWritesRows(t *testing.T) {
	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)

	require.NoError(t, j.RecordTrade(TradeRecord{
		RunID: "r", Seq: 0, Symbol: "A", Side: "BUY", Quantity: 5,
		Price: 101.5, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Reason: "entry",
	}))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(tradesPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "entry")
	assert.Contains(t, lines[1], "101.5")
}
