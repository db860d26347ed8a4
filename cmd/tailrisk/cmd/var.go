package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tailrisk/dataset"
	"github.com/rustyeddy/tailrisk/risk"
)

var varCmd = &cobra.Command{
	Use:   "var",
	Short: "Estimate value-at-risk from a return series",
	Long: `Estimate one-sided VaR from a CSV of periodic returns.

The file holds a "returns" column, or a "close" column from which returns
are derived. VaR is reported as a positive loss fraction and scaled by the
portfolio value.

Examples:
  tailrisk var --returns spx.csv
  tailrisk var --returns spx.csv --method parametric --confidence 0.95 --holding 10
  tailrisk var --returns spx.csv --all`,
	Args: cobra.NoArgs,
	RunE: runVaR,
}

var varPortfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Variance-covariance VaR of a weighted portfolio",
	Long: `Compute portfolio VaR as sqrt(w'Σw) * z(confidence) * value.

The covariance file is a square CSV matrix, optionally with a header row of
asset names.

Example:
  tailrisk var portfolio --weights 0.6,0.4 --cov cov.csv --value 1000000`,
	Args: cobra.NoArgs,
	RunE: runPortfolioVaR,
}

var (
	varReturns    string
	varKind       string
	varMethod     string
	varConfidence float64
	varHolding    int
	varSims       int
	varValue      float64
	varAll        bool

	portWeights    []float64
	portCov        string
	portConfidence float64
	portValue      float64
)

func init() {
	rootCmd.AddCommand(varCmd)
	varCmd.AddCommand(varPortfolioCmd)

	varCmd.Flags().StringVarP(&varReturns, "returns", "r", "", "returns CSV (default market.returns_file)")
	varCmd.Flags().StringVar(&varKind, "kind", "simple", "return kind when derived from prices: simple|log")
	varCmd.Flags().StringVarP(&varMethod, "method", "m", "historical", "historical|parametric|montecarlo")
	varCmd.Flags().Float64VarP(&varConfidence, "confidence", "c", 0.99, "confidence level in (0, 1)")
	varCmd.Flags().IntVar(&varHolding, "holding", 1, "holding period in periods")
	varCmd.Flags().IntVar(&varSims, "sims", 10000, "Monte Carlo simulations")
	varCmd.Flags().Float64Var(&varValue, "value", 1_000_000, "portfolio value")
	varCmd.Flags().BoolVar(&varAll, "all", false, "report every method side by side")

	varPortfolioCmd.Flags().Float64SliceVarP(&portWeights, "weights", "w", nil, "portfolio weights (required)")
	varPortfolioCmd.Flags().StringVar(&portCov, "cov", "", "covariance matrix CSV (required)")
	varPortfolioCmd.Flags().Float64VarP(&portConfidence, "confidence", "c", 0.99, "confidence level in (0, 1)")
	varPortfolioCmd.Flags().Float64Var(&portValue, "value", 1_000_000, "portfolio value")
	varPortfolioCmd.MarkFlagRequired("weights")
	varPortfolioCmd.MarkFlagRequired("cov")
}

// loadSeries reads returns, or prices converted with kind when the file
// has no returns column.
func loadSeries(path, kind string) ([]float64, error) {
	if path == "" {
		return nil, fmt.Errorf("a returns file is required (--returns or market.returns_file)")
	}
	k, err := dataset.ParseReturnKind(kind)
	if err != nil {
		return nil, err
	}
	obs, err := dataset.LoadReturnsKind(path, k)
	if err != nil {
		return nil, err
	}
	logger.Info("returns loaded", "file", path, "observations", len(obs))
	return dataset.Values(obs), nil
}

func runVaR(cmd *cobra.Command, args []string) error {
	m := cfg.Market
	path := stringOr(cmd, "returns", varReturns, m.ReturnsFile)
	kind := stringOr(cmd, "kind", varKind, m.ReturnKind)
	method := stringOr(cmd, "method", varMethod, m.Method)
	p := risk.Params{
		Confidence:    floatOr(cmd, "confidence", varConfidence, m.Confidence),
		HoldingPeriod: float64(intOr(cmd, "holding", varHolding, m.HoldingPeriod)),
		NSims:         intOr(cmd, "sims", varSims, m.NSims),
		Rand:          newEngine(),
	}
	value := floatOr(cmd, "value", varValue, m.PortfolioValue)

	returns, err := loadSeries(path, kind)
	if err != nil {
		return err
	}

	methods := []risk.Method{risk.MethodHistorical, risk.MethodParametric, risk.MethodMonteCarlo}
	if !varAll {
		one, err := risk.ParseMethod(method)
		if err != nil {
			return err
		}
		methods = []risk.Method{one}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dataset:       %s (%d returns)\n", filepath.Base(path), len(returns))
	fmt.Fprintf(out, "Confidence:    %.2f%%\n", p.Confidence*100)
	fmt.Fprintf(out, "Holding:       %g\n", p.HoldingPeriod)
	fmt.Fprintf(out, "Value:         %.2f\n", value)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-12s %12s %16s\n", "Method", "VaR", "VaR (value)")
	fmt.Fprintln(out, "------------------------------------------")

	for _, method := range methods {
		est, err := risk.NewEstimator(method, p)
		if err != nil {
			return err
		}
		e, err := est.Estimate(returns)
		if err != nil {
			return fmt.Errorf("%s VaR: %w", method, err)
		}
		if e.HasWarning(risk.WarnSmallSample) {
			warnSample(logger, method.String(), len(returns), risk.MinObservations(p.Confidence))
		}
		fmt.Fprintf(out, "%-12s %12.6f %16.2f\n", method, e.Value, e.Value*value)
	}
	return nil
}

func runPortfolioVaR(cmd *cobra.Command, args []string) error {
	labels, cov, err := dataset.LoadMatrix(portCov)
	if err != nil {
		return err
	}
	confidence := floatOr(cmd, "confidence", portConfidence, cfg.Market.Confidence)
	value := floatOr(cmd, "value", portValue, cfg.Market.PortfolioValue)

	vol, err := risk.PortfolioVolatility(portWeights, cov)
	if err != nil {
		return err
	}
	e, err := risk.Portfolio(portWeights, cov, confidence, value)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, w := range portWeights {
		name := fmt.Sprintf("asset %d", i+1)
		if i < len(labels) {
			name = labels[i]
		}
		fmt.Fprintf(out, "%-12s %8.4f\n", name, w)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Volatility:    %.6f\n", vol)
	fmt.Fprintf(out, "Confidence:    %.2f%%\n", confidence*100)
	fmt.Fprintf(out, "Portfolio VaR: %.2f\n", e.Value)
	return nil
}
