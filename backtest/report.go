package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/tailrisk/journal"
)

// PrintReport writes a human-readable summary of rep.
func PrintReport(w io.Writer, rep Report) {
	PrintBacktestRun(w, rep.Run())
}

func PrintBacktestRun(w io.Writer, r journal.BacktestRun) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " VaR Backtest")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Created:       %s\n", r.Created.Format(time.RFC3339))
	if r.Dataset != "" {
		fmt.Fprintf(w, "Dataset:       %s\n", r.Dataset)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))
	fmt.Fprintf(w, "Observations:  %d\n", r.Observations)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Model")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Method:        %s\n", r.Method)
	fmt.Fprintf(w, "Confidence:    %.2f%%\n", r.Confidence*100)
	fmt.Fprintf(w, "Window:        %d\n", r.Window)
	fmt.Fprintf(w, "Holding:       %d\n", r.HoldingPeriod)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exceptions")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Scored Days:   %d\n", r.TotalDays)
	fmt.Fprintf(w, "Exceptions:    %d\n", r.Exceptions)
	fmt.Fprintf(w, "Observed Rate: %.2f%%\n", r.ExceptionRate*100)
	fmt.Fprintf(w, "Expected Rate: %.2f%%\n", r.ExpectedRate*100)
	fmt.Fprintf(w, "Status:        %s\n", r.Status)

	if r.OrgPath != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Org Report:    %s\n", r.OrgPath)
	}

	if len(r.Notes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Observations")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, note := range r.Notes {
			fmt.Fprintf(w, "- %s\n", note)
		}
	}

	fmt.Fprintln(w)
}
