package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV writes trades and equity snapshots to two CSV files. Run lifecycle
// notifications are accepted but not stored; CSV output is meant for ad-hoc
// inspection next to a primary SQLite journal.
type CSV struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

// NewCSV creates the two output files, truncating any existing content.
func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	tw.Write([]string{"run_id", "seq", "symbol", "side", "quantity", "price", "date", "commission", "reason"})
	ew.Write([]string{"run_id", "date", "cash", "value", "daily_return"})
	tw.Flush()
	ew.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{trades: tw, equity: ew, tf: tf, ef: ef}, nil
}

func (j *CSV) RunStarted(string, string, []string) error { return nil }
func (j *CSV) RunCompleted(RunRecord) error              { return nil }
func (j *CSV) RunFailed(string, string) error            { return nil }

func (j *CSV) RecordTrade(t TradeRecord) error {
	j.trades.Write([]string{
		t.RunID,
		strconv.Itoa(t.Seq),
		t.Symbol,
		t.Side,
		strconv.FormatInt(t.Quantity, 10),
		f(t.Price),
		t.Date.Format(time.RFC3339),
		f(t.Commission),
		t.Reason,
	})
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	j.equity.Write([]string{
		e.RunID,
		e.Date.Format(time.RFC3339),
		f(e.Cash),
		f(e.Value),
		f(e.DailyReturn),
	})
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
