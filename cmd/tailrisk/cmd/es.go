package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tailrisk/risk"
)

var esCmd = &cobra.Command{
	Use:   "es",
	Short: "Expected shortfall beyond historical VaR",
	Long: `Report historical VaR and the expected shortfall: the mean loss of the
returns that fall beyond VaR.

Example:
  tailrisk es --returns spx.csv --confidence 0.975`,
	Args: cobra.NoArgs,
	RunE: runES,
}

var (
	esReturns    string
	esKind       string
	esConfidence float64
	esValue      float64
)

func init() {
	rootCmd.AddCommand(esCmd)

	esCmd.Flags().StringVarP(&esReturns, "returns", "r", "", "returns CSV (default market.returns_file)")
	esCmd.Flags().StringVar(&esKind, "kind", "simple", "return kind when derived from prices: simple|log")
	esCmd.Flags().Float64VarP(&esConfidence, "confidence", "c", 0.99, "confidence level in (0, 1)")
	esCmd.Flags().Float64Var(&esValue, "value", 1_000_000, "portfolio value")
}

func runES(cmd *cobra.Command, args []string) error {
	path := stringOr(cmd, "returns", esReturns, cfg.Market.ReturnsFile)
	kind := stringOr(cmd, "kind", esKind, cfg.Market.ReturnKind)
	confidence := floatOr(cmd, "confidence", esConfidence, cfg.Market.Confidence)
	value := floatOr(cmd, "value", esValue, cfg.Market.PortfolioValue)

	returns, err := loadSeries(path, kind)
	if err != nil {
		return err
	}

	tr, err := risk.Tail(returns, confidence)
	if err != nil {
		return err
	}
	if tr.VaR.HasWarning(risk.WarnSmallSample) {
		warnSample(logger, "expected shortfall", len(returns), risk.MinObservations(confidence))
	}
	if tr.ES.HasWarning(risk.WarnEmptyTail) {
		logger.Warn("no return beyond VaR; expected shortfall falls back to VaR", "confidence", confidence)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Confidence:    %.2f%%\n", tr.Confidence*100)
	fmt.Fprintf(out, "Observations:  %d\n", len(returns))
	fmt.Fprintf(out, "Tail Count:    %d\n", tr.TailCount)
	fmt.Fprintf(out, "VaR:           %.6f (%.2f)\n", tr.VaR.Value, tr.VaR.Value*value)
	fmt.Fprintf(out, "ES:            %.6f (%.2f)\n", tr.ES.Value, tr.ES.Value*value)
	return nil
}
