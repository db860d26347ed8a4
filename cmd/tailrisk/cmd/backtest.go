package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tailrisk/backtest"
	"github.com/rustyeddy/tailrisk/dataset"
	"github.com/rustyeddy/tailrisk/risk"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Traffic-light backtest of a rolling VaR model",
	Long: `Estimate VaR over each trailing window, count the days whose loss exceeded
it, and classify the model GREEN, YELLOW or RED against the expected
exception rate.

Examples:
  tailrisk backtest --returns spx.csv --window 250 --confidence 0.99
  tailrisk backtest --returns spx.csv --method parametric --from 2020-01-01 --org ./reports`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

var (
	btReturns    string
	btMethod     string
	btWindow     int
	btConfidence float64
	btSims       int
	btFrom       string
	btTo         string
	btOrgDir     string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btReturns, "returns", "r", "", "returns CSV (default market.returns_file)")
	backtestCmd.Flags().StringVarP(&btMethod, "method", "m", "historical", "historical|parametric|montecarlo")
	backtestCmd.Flags().IntVarP(&btWindow, "window", "w", backtest.DefaultWindow, "trailing window length")
	backtestCmd.Flags().Float64VarP(&btConfidence, "confidence", "c", backtest.DefaultConfidence, "confidence level in (0, 1)")
	backtestCmd.Flags().IntVar(&btSims, "sims", 1000, "Monte Carlo simulations per window")
	backtestCmd.Flags().StringVar(&btFrom, "from", "", "first day to include (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "first day to exclude (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&btOrgDir, "org", "", "directory for an Org-mode report (default backtest.org_dir)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	path := stringOr(cmd, "returns", btReturns, cfg.Market.ReturnsFile)
	if path == "" {
		return fmt.Errorf("a returns file is required (--returns or market.returns_file)")
	}
	method, err := risk.ParseMethod(stringOr(cmd, "method", btMethod, cfg.Backtest.Method))
	if err != nil {
		return err
	}
	from, err := parseDay(btFrom)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	to, err := parseDay(btTo)
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}
	kind, err := dataset.ParseReturnKind(cfg.Market.ReturnKind)
	if err != nil {
		return err
	}

	feed, err := dataset.NewCSVReturnsFeed(path, from, to)
	if err != nil {
		return err
	}
	feed.Kind = kind

	j, err := openJournal()
	if err != nil {
		_ = feed.Close()
		return err
	}
	defer j.Close()

	ctx, cancel, err := runContext(cmd)
	if err != nil {
		_ = feed.Close()
		return err
	}
	defer cancel()

	r := &backtest.Runner{
		Feed: feed,
		Options: backtest.RunnerOptions{
			Window:     intOr(cmd, "window", btWindow, cfg.Backtest.Window),
			Confidence: floatOr(cmd, "confidence", btConfidence, cfg.Backtest.Confidence),
			Method:     method,
			NSims:      btSims,
			Dataset:    filepath.Base(path),
			OrgDir:     stringOr(cmd, "org", btOrgDir, cfg.Backtest.OrgDir),
		},
		Rand:    newEngine(),
		Journal: j,
		Logger:  logger,
	}

	rep, err := r.Run(ctx)
	if err != nil {
		return err
	}

	backtest.PrintReport(cmd.OutOrStdout(), rep)
	return nil
}
