package journal

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite persists runs, trades and equity snapshots to a SQLite database.
// A single mutex serializes writes; concurrent runs sharing one journal
// cannot interleave their status updates.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens (creating if needed) the journal database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RunStarted(runID, strategy string, symbols []string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`
		INSERT INTO runs (run_id, status, strategy, symbols, created)
		VALUES (?, ?, ?, ?, ?)`,
		runID, StatusRunning, strategy, joinSymbols(symbols), time.Now().UTC(),
	)
	return err
}

func (j *SQLite) RunCompleted(rec RunRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`
		UPDATE runs SET
			status = ?, start_date = ?, end_date = ?,
			initial_cash = ?, final_cash = ?,
			total_return = ?, total_return_pct = ?,
			max_drawdown = ?, sharpe_ratio = ?, win_rate = ?,
			total_trades = ?, winning_trades = ?, losing_trades = ?,
			avg_win = ?, avg_loss = ?, profit_factor = ?
		WHERE run_id = ?`,
		StatusCompleted, rec.Start, rec.End,
		rec.InitialCash, rec.FinalCash,
		rec.TotalReturn, rec.TotalReturnPct,
		rec.MaxDrawdown, rec.SharpeRatio, rec.WinRate,
		rec.TotalTrades, rec.WinningTrades, rec.LosingTrades,
		rec.AvgWin, rec.AvgLoss, rec.ProfitFactor,
		rec.RunID,
	)
	return err
}

func (j *SQLite) RunFailed(runID, cause string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`UPDATE runs SET status = ?, error = ? WHERE run_id = ?`,
		StatusFailed, cause, runID,
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`
		INSERT INTO trades (run_id, seq, symbol, side, quantity, price, date, commission, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Seq, t.Symbol, t.Side, t.Quantity, t.Price, t.Date, t.Commission, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`
		INSERT INTO equity (run_id, date, cash, value, daily_return)
		VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Date, e.Cash, e.Value, e.DailyReturn,
	)
	return err
}

// GetRun returns the run row for runID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord
	var start, end sql.NullTime

	row := j.db.QueryRow(`
		SELECT run_id, status, strategy, symbols, start_date, end_date, created,
			initial_cash, final_cash, total_return, total_return_pct,
			max_drawdown, sharpe_ratio, win_rate,
			total_trades, winning_trades, losing_trades,
			avg_win, avg_loss, profit_factor, error
		FROM runs WHERE run_id = ?`, runID)

	err := row.Scan(
		&rec.RunID, &rec.Status, &rec.Strategy, &rec.Symbols, &start, &end, &rec.Created,
		&rec.InitialCash, &rec.FinalCash, &rec.TotalReturn, &rec.TotalReturnPct,
		&rec.MaxDrawdown, &rec.SharpeRatio, &rec.WinRate,
		&rec.TotalTrades, &rec.WinningTrades, &rec.LosingTrades,
		&rec.AvgWin, &rec.AvgLoss, &rec.ProfitFactor, &rec.Error,
	)
	if err == sql.ErrNoRows {
		return RunRecord{}, fmt.Errorf("run %q not found", runID)
	}
	if err != nil {
		return RunRecord{}, err
	}

	rec.Start = start.Time
	rec.End = end.Time
	return rec, nil
}

// ListTradesByRun returns the run's trades in execution order.
func (j *SQLite) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, seq, symbol, side, quantity, price, date, commission, reason
		FROM trades WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.RunID, &t.Seq, &t.Symbol, &t.Side, &t.Quantity,
			&t.Price, &t.Date, &t.Commission, &t.Reason); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEquityByRun returns the run's equity curve in date order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, date, cash, value, daily_return
		FROM equity WHERE run_id = ? ORDER BY date`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Date, &e.Cash, &e.Value, &e.DailyReturn); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func joinSymbols(symbols []string) string {
	return strings.Join(symbols, ",")
}
