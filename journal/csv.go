package journal

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	backtestHeader = []string{"run_id", "created", "dataset", "method", "confidence", "window", "holding_period", "start", "end", "observations", "total_days", "exceptions", "exception_rate", "expected_rate", "status", "notes"}
	creditHeader   = []string{"run_id", "created", "dataset", "counterparties", "total_ead", "correlation", "n_sims", "confidence", "seed", "expected_loss", "var", "worst_case", "vasicek_loss"}
)

// CSVJournal appends run records to two CSV files. A header row is written
// when a file is new or empty.
type CSVJournal struct {
	backtests *csv.Writer
	credits   *csv.Writer
	bf, cf    *os.File
}

func NewCSV(backtestPath, creditPath string) (*CSVJournal, error) {
	bf, bw, err := openCSV(backtestPath, backtestHeader)
	if err != nil {
		return nil, err
	}
	cf, cw, err := openCSV(creditPath, creditHeader)
	if err != nil {
		_ = bf.Close()
		return nil, err
	}
	return &CSVJournal{bw, cw, bf, cf}, nil
}

func openCSV(path string, header []string) (*os.File, *csv.Writer, error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	st, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, nil, err
	}

	w := csv.NewWriter(fh)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			_ = fh.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = fh.Close()
			return nil, nil, err
		}
	}
	return fh, w, nil
}

func (j *CSVJournal) RecordBacktest(_ context.Context, r BacktestRun) error {
	err := j.backtests.Write([]string{
		r.RunID,
		r.Created.UTC().Format(time.RFC3339),
		r.Dataset,
		r.Method,
		f(r.Confidence),
		strconv.Itoa(r.Window),
		strconv.Itoa(r.HoldingPeriod),
		r.Start.UTC().Format(time.RFC3339),
		r.End.UTC().Format(time.RFC3339),
		strconv.Itoa(r.Observations),
		strconv.Itoa(r.TotalDays),
		strconv.Itoa(r.Exceptions),
		f(r.ExceptionRate),
		f(r.ExpectedRate),
		r.Status,
		strings.Join(r.Notes, "; "),
	})
	if err != nil {
		return err
	}

	j.backtests.Flush()
	return j.backtests.Error()
}

func (j *CSVJournal) RecordCredit(_ context.Context, r CreditRun) error {
	err := j.credits.Write([]string{
		r.RunID,
		r.Created.UTC().Format(time.RFC3339),
		r.Dataset,
		strconv.Itoa(r.Counterparties),
		f(r.TotalEAD),
		f(r.Correlation),
		strconv.Itoa(r.NSims),
		f(r.Confidence),
		strconv.FormatUint(r.Seed, 10),
		f(r.ExpectedLoss),
		f(r.VaR),
		f(r.WorstCase),
		f(r.VasicekLoss),
	})
	if err != nil {
		return err
	}

	j.credits.Flush()
	return j.credits.Error()
}

func (j *CSVJournal) Close() error {
	j.backtests.Flush()
	if err := j.backtests.Error(); err != nil {
		return err
	}
	j.credits.Flush()
	if err := j.credits.Error(); err != nil {
		return err
	}

	if err := j.bf.Close(); err != nil {
		return err
	}
	if err := j.cf.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
