package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const backtestColumns = `run_id, created, dataset, method, confidence, window_size, holding_period,
	start_time, end_time, observations, total_days, exceptions,
	exception_rate, expected_rate, status, org_path, notes`

const creditColumns = `run_id, created, dataset, counterparties, total_ead, correlation, n_sims,
	confidence, seed, expected_loss, var_value, worst_case, vasicek_loss`

type scanner interface {
	Scan(dest ...any) error
}

func scanBacktest(s scanner) (BacktestRun, error) {
	var r BacktestRun
	var notes string
	err := s.Scan(
		&r.RunID,
		&r.Created,
		&r.Dataset,
		&r.Method,
		&r.Confidence,
		&r.Window,
		&r.HoldingPeriod,
		&r.Start,
		&r.End,
		&r.Observations,
		&r.TotalDays,
		&r.Exceptions,
		&r.ExceptionRate,
		&r.ExpectedRate,
		&r.Status,
		&r.OrgPath,
		&notes,
	)
	if notes != "" {
		r.Notes = strings.Split(notes, "\n")
	}
	return r, err
}

func scanCredit(s scanner) (CreditRun, error) {
	var r CreditRun
	var seed int64
	err := s.Scan(
		&r.RunID,
		&r.Created,
		&r.Dataset,
		&r.Counterparties,
		&r.TotalEAD,
		&r.Correlation,
		&r.NSims,
		&r.Confidence,
		&seed,
		&r.ExpectedLoss,
		&r.VaR,
		&r.WorstCase,
		&r.VasicekLoss,
	)
	r.Seed = uint64(seed)
	return r, err
}

// GetBacktestRun returns a single backtest run by ID.
func (j *SQLiteJournal) GetBacktestRun(ctx context.Context, runID string) (BacktestRun, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+backtestColumns+`
		FROM backtest_runs
		WHERE run_id = ?`, runID)

	r, err := scanBacktest(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return BacktestRun{}, fmt.Errorf("backtest run %q not found", runID)
		}
		return BacktestRun{}, err
	}
	return r, nil
}

// ListBacktestRunsBetween returns runs whose created time is within [start, end).
func (j *SQLiteJournal) ListBacktestRunsBetween(ctx context.Context, start, end time.Time) ([]BacktestRun, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+backtestColumns+`
		FROM backtest_runs
		WHERE created >= ? AND created < ?
		ORDER BY created ASC, run_id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BacktestRun
	for rows.Next() {
		r, err := scanBacktest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCreditRun returns a single credit run by ID.
func (j *SQLiteJournal) GetCreditRun(ctx context.Context, runID string) (CreditRun, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+creditColumns+`
		FROM credit_runs
		WHERE run_id = ?`, runID)

	r, err := scanCredit(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return CreditRun{}, fmt.Errorf("credit run %q not found", runID)
		}
		return CreditRun{}, err
	}
	return r, nil
}

// ListCreditRuns returns the most recent credit runs, newest first. A
// limit of zero or less returns all of them.
func (j *SQLiteJournal) ListCreditRuns(ctx context.Context, limit int) ([]CreditRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `SELECT `+creditColumns+`
		FROM credit_runs
		ORDER BY created DESC, run_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CreditRun
	for rows.Next() {
		r, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
