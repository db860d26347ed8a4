// Package journal records the summary of each backtest and credit run so
// results can be compared across datasets, methods and seeds.
package journal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// BacktestRun mirrors the backtest_runs table.
type BacktestRun struct {
	RunID   string
	Created time.Time
	Dataset string

	// VaR model under test
	Method        string
	Confidence    float64
	Window        int
	HoldingPeriod int

	// Observed data range
	Start        time.Time
	End          time.Time
	Observations int

	// Results
	TotalDays     int
	Exceptions    int
	ExceptionRate float64
	ExpectedRate  float64
	Status        string

	OrgPath string
	Notes   []string
}

// CreditRun mirrors the credit_runs table.
type CreditRun struct {
	RunID   string
	Created time.Time
	Dataset string

	Counterparties int
	TotalEAD       float64
	Correlation    float64
	NSims          int
	Confidence     float64
	Seed           uint64

	ExpectedLoss float64
	VaR          float64
	WorstCase    float64
	VasicekLoss  float64
}

type Journal interface {
	RecordBacktest(ctx context.Context, r BacktestRun) error
	RecordCredit(ctx context.Context, r CreditRun) error
	Close() error
}

// Nop discards every record.
type Nop struct{}

func (Nop) RecordBacktest(context.Context, BacktestRun) error { return nil }
func (Nop) RecordCredit(context.Context, CreditRun) error     { return nil }
func (Nop) Close() error                                     { return nil }

// Open returns the journal named by kind: "none" (or empty), "csv" or
// "sqlite". CSV journals append to backtestCSV and creditCSV; the SQLite
// journal uses dbPath.
func Open(kind, dbPath, backtestCSV, creditCSV string) (Journal, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "none":
		return Nop{}, nil
	case "sqlite":
		if dbPath == "" {
			return nil, fmt.Errorf("journal: sqlite requires a db path")
		}
		return NewSQLite(dbPath)
	case "csv":
		if backtestCSV == "" || creditCSV == "" {
			return nil, fmt.Errorf("journal: csv requires backtest and credit file paths")
		}
		return NewCSV(backtestCSV, creditCSV)
	}
	return nil, fmt.Errorf("journal: unknown type %q", kind)
}
