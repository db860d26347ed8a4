package journal

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordBacktest(ctx context.Context, r BacktestRun) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO backtest_runs
		(run_id, created, dataset, method, confidence, window_size, holding_period,
		 start_time, end_time, observations, total_days, exceptions,
		 exception_rate, expected_rate, status, org_path, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Dataset, r.Method, r.Confidence, r.Window, r.HoldingPeriod,
		r.Start.UTC(), r.End.UTC(), r.Observations, r.TotalDays, r.Exceptions,
		r.ExceptionRate, r.ExpectedRate, r.Status, r.OrgPath, strings.Join(r.Notes, "\n"),
	)
	return err
}

func (j *SQLiteJournal) RecordCredit(ctx context.Context, r CreditRun) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO credit_runs
		(run_id, created, dataset, counterparties, total_ead, correlation, n_sims,
		 confidence, seed, expected_loss, var_value, worst_case, vasicek_loss)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Dataset, r.Counterparties, r.TotalEAD, r.Correlation, r.NSims,
		r.Confidence, int64(r.Seed), r.ExpectedLoss, r.VaR, r.WorstCase, r.VasicekLoss,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
