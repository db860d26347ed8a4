package journal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"
)

var backtestOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var backtestOrg = template.Must(template.New("backtest").Funcs(backtestOrgFuncs).Parse(BacktestOrgTemplate))

// RenderBacktestOrg writes r as an Org-mode entry.
func RenderBacktestOrg(w io.Writer, r BacktestRun) error {
	return backtestOrg.Execute(w, r)
}

// WriteBacktestOrg renders r into r.OrgPath.
func (r BacktestRun) WriteBacktestOrg() error {
	if r.OrgPath == "" {
		return fmt.Errorf("journal: backtest run %q has no org path", r.RunID)
	}
	fh, err := os.Create(r.OrgPath)
	if err != nil {
		return err
	}
	if err := RenderBacktestOrg(fh, r); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

const BacktestOrgTemplate = `* BACKTEST: {{.Method}} VaR {{printf "%.1f" (mul100 .Confidence)}}% {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:PROPERTIES:
:RUN_ID:         {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:METHOD:         {{.Method}}
:CONFIDENCE:     {{printf "%.4f" .Confidence}}
:WINDOW:         {{.Window}}
:HOLDING_PERIOD: {{.HoldingPeriod}}
:DATASET:        {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:     {{.Start.Format "2006-01-02"}}
:END_DATE:       {{.End.Format "2006-01-02"}}
:OBSERVATIONS:   {{.Observations}}
:TOTAL_DAYS:     {{.TotalDays}}
:EXCEPTIONS:     {{.Exceptions}}
:STATUS:         {{.Status}}
:CREATED:        [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Exceptions
| Measure        | Value |
|----------------+-------|
| Scored days    | {{.TotalDays}} |
| Exceptions     | {{.Exceptions}} |
| Observed rate  | {{printf "%.2f" (mul100 .ExceptionRate)}}% |
| Expected rate  | {{printf "%.2f" (mul100 .ExpectedRate)}}% |

** Traffic Light
- Status: *{{.Status}}*
{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`

// FormatCreditOrg renders a CreditRun as an Org-mode block. Structured facts
// go into the PROPERTIES drawer for search.
func FormatCreditOrg(r CreditRun) string {
	heading := fmt.Sprintf("* CREDIT: %s (%s)", orDefault(r.Dataset, "(dataset?)"), shortID(r.RunID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":RUN_ID: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf(":COUNTERPARTIES: %d\n", r.Counterparties))
	b.WriteString(fmt.Sprintf(":TOTAL_EAD: %.2f\n", r.TotalEAD))
	b.WriteString(fmt.Sprintf(":CORRELATION: %.4f\n", r.Correlation))
	b.WriteString(fmt.Sprintf(":N_SIMS: %d\n", r.NSims))
	b.WriteString(fmt.Sprintf(":CONFIDENCE: %.4f\n", r.Confidence))
	b.WriteString(fmt.Sprintf(":SEED: %d\n", r.Seed))
	b.WriteString(fmt.Sprintf(":CREATED: %s\n", r.Created.UTC().Format(time.RFC3339)))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("| Measure       | Value |\n")
	b.WriteString("|---------------+-------|\n")
	b.WriteString(fmt.Sprintf("| Expected loss | %.2f |\n", r.ExpectedLoss))
	b.WriteString(fmt.Sprintf("| Credit VaR    | %.2f |\n", r.VaR))
	b.WriteString(fmt.Sprintf("| Vasicek loss  | %.2f |\n", r.VasicekLoss))
	b.WriteString(fmt.Sprintf("| Worst case    | %.2f |\n", r.WorstCase))

	return b.String()
}

// FormatCreditRunsOrg renders multiple runs separated by blank lines.
func FormatCreditRunsOrg(runs []CreditRun) string {
	var b strings.Builder
	for i, r := range runs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatCreditOrg(r))
	}
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
