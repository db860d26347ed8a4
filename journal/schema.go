package journal

const Schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	dataset TEXT NOT NULL,
	method TEXT NOT NULL,
	confidence REAL NOT NULL,
	window_size INTEGER NOT NULL,
	holding_period INTEGER NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	observations INTEGER NOT NULL,
	total_days INTEGER NOT NULL,
	exceptions INTEGER NOT NULL,
	exception_rate REAL NOT NULL,
	expected_rate REAL NOT NULL,
	status TEXT NOT NULL,
	org_path TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_backtest_runs_created ON backtest_runs(created);

CREATE TABLE IF NOT EXISTS credit_runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	dataset TEXT NOT NULL,
	counterparties INTEGER NOT NULL,
	total_ead REAL NOT NULL,
	correlation REAL NOT NULL,
	n_sims INTEGER NOT NULL,
	confidence REAL NOT NULL,
	seed INTEGER NOT NULL,
	expected_loss REAL NOT NULL,
	var_value REAL NOT NULL,
	worst_case REAL NOT NULL,
	vasicek_loss REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_credit_runs_created ON credit_runs(created);
`
