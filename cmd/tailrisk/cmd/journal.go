package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tailrisk/backtest"
	"github.com/rustyeddy/tailrisk/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the run journal",
	Long: `Query and display run records from the SQLite journal.

Subcommands:
  backtest - Show one backtest run as an Org-mode entry
  day      - List backtest runs created on a specific day
  credit   - List recent credit runs

Examples:
  tailrisk journal backtest <run-id>
  tailrisk journal day 2024-01-15
  tailrisk journal credit --limit 5`,
}

var journalBacktestCmd = &cobra.Command{
	Use:   "backtest <run-id>",
	Short: "Show a backtest run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalBacktest,
}

var journalDayCmd = &cobra.Command{
	Use:   "day [YYYY-MM-DD]",
	Short: "List backtest runs created on a day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalDay,
}

var journalCreditCmd = &cobra.Command{
	Use:   "credit",
	Short: "List recent credit runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalCredit,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalBacktestCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalCreditCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./tailrisk.sqlite", "path to SQLite journal DB (default journal.db_path)")
	journalCreditCmd.Flags().IntVarP(&journalLimit, "limit", "n", 10, "number of runs to show (0 for all)")
}

func openSQLite(cmd *cobra.Command) (*journal.SQLiteJournal, error) {
	path := journalDBPath
	if !cmd.Flags().Changed("db") && cfg.Journal.DBPath != "" {
		path = cfg.Journal.DBPath
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalBacktest(cmd *cobra.Command, args []string) error {
	j, err := openSQLite(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	run, err := j.GetBacktestRun(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get backtest run: %w", err)
	}
	return journal.RenderBacktestOrg(cmd.OutOrStdout(), run)
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	j, err := openSQLite(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	loc := time.Local
	day := time.Now().In(loc).Format("2006-01-02")
	if len(args) == 1 {
		day = args[0]
	}
	start, end, err := dayBounds(loc, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	runs, err := j.ListBacktestRunsBetween(cmd.Context(), start, end)
	if err != nil {
		return fmt.Errorf("query backtest runs: %w", err)
	}
	for _, r := range runs {
		backtest.PrintBacktestRun(cmd.OutOrStdout(), r)
	}
	return nil
}

func runJournalCredit(cmd *cobra.Command, args []string) error {
	j, err := openSQLite(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListCreditRuns(cmd.Context(), journalLimit)
	if err != nil {
		return fmt.Errorf("query credit runs: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatCreditRunsOrg(runs))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
