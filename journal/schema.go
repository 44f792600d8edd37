package journal

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	strategy TEXT NOT NULL,
	symbols TEXT NOT NULL,
	start_date DATETIME,
	end_date DATETIME,
	created DATETIME NOT NULL,
	initial_cash REAL NOT NULL DEFAULT 0,
	final_cash REAL NOT NULL DEFAULT 0,
	total_return REAL NOT NULL DEFAULT 0,
	total_return_pct REAL NOT NULL DEFAULT 0,
	max_drawdown REAL NOT NULL DEFAULT 0,
	sharpe_ratio REAL NOT NULL DEFAULT 0,
	win_rate REAL NOT NULL DEFAULT 0,
	total_trades INTEGER NOT NULL DEFAULT 0,
	winning_trades INTEGER NOT NULL DEFAULT 0,
	losing_trades INTEGER NOT NULL DEFAULT 0,
	avg_win REAL NOT NULL DEFAULT 0,
	avg_loss REAL NOT NULL DEFAULT 0,
	profit_factor REAL NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	date DATETIME NOT NULL,
	commission REAL NOT NULL,
	reason TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	cash REAL NOT NULL,
	value REAL NOT NULL,
	daily_return REAL NOT NULL,
	PRIMARY KEY (run_id, date)
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id);
`
