package cmd

import (
	"encoding/csv"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tailrisk/dataset"
	"github.com/rustyeddy/tailrisk/risk"
)

var rollingCmd = &cobra.Command{
	Use:   "rolling",
	Short: "Print a rolling VaR series as CSV",
	Long: `Estimate VaR over each trailing window and print time,return,var rows.
The first window rows have an empty var column.

Example:
  tailrisk rolling --returns spx.csv --window 250 --confidence 0.99 > var.csv`,
	Args: cobra.NoArgs,
	RunE: runRolling,
}

var (
	rollReturns    string
	rollMethod     string
	rollWindow     int
	rollConfidence float64
	rollSims       int
)

func init() {
	rootCmd.AddCommand(rollingCmd)

	rollingCmd.Flags().StringVarP(&rollReturns, "returns", "r", "", "returns CSV (default market.returns_file)")
	rollingCmd.Flags().StringVarP(&rollMethod, "method", "m", "historical", "historical|parametric|montecarlo")
	rollingCmd.Flags().IntVarP(&rollWindow, "window", "w", 60, "trailing window length")
	rollingCmd.Flags().Float64VarP(&rollConfidence, "confidence", "c", 0.95, "confidence level in (0, 1)")
	rollingCmd.Flags().IntVar(&rollSims, "sims", 1000, "Monte Carlo simulations per window")
}

func runRolling(cmd *cobra.Command, args []string) error {
	path := stringOr(cmd, "returns", rollReturns, cfg.Market.ReturnsFile)
	method, err := risk.ParseMethod(stringOr(cmd, "method", rollMethod, cfg.Backtest.Method))
	if err != nil {
		return err
	}
	window := intOr(cmd, "window", rollWindow, cfg.Backtest.Window)

	k, err := dataset.ParseReturnKind(cfg.Market.ReturnKind)
	if err != nil {
		return err
	}
	obs, err := dataset.LoadReturnsKind(path, k)
	if err != nil {
		return err
	}

	est, err := risk.NewEstimator(method, risk.Params{
		Confidence:    floatOr(cmd, "confidence", rollConfidence, cfg.Backtest.Confidence),
		HoldingPeriod: 1,
		NSims:         rollSims,
		Rand:          newEngine(),
	})
	if err != nil {
		return err
	}
	series, err := risk.RollingWith(est, dataset.Values(obs), window)
	if err != nil {
		return err
	}
	logger.Info("rolling VaR", "method", method.String(), "window", window, "defined", series.DefinedCount())

	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write([]string{"time", "return", "var"}); err != nil {
		return err
	}
	for i, o := range obs {
		v := ""
		if series[i].Defined {
			v = strconv.FormatFloat(series[i].Value, 'f', 6, 64)
		}
		if err := w.Write([]string{o.Time.Format(time.RFC3339), strconv.FormatFloat(o.Return, 'f', 6, 64), v}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
