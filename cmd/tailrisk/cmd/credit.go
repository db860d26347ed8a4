package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tailrisk/credit"
	"github.com/rustyeddy/tailrisk/dataset"
	"github.com/rustyeddy/tailrisk/internal/id"
	"github.com/rustyeddy/tailrisk/journal"
)

var creditCmd = &cobra.Command{
	Use:   "credit",
	Short: "Credit VaR of a counterparty portfolio",
	Long: `Simulate portfolio default losses with a single-factor Gaussian model and
compare the simulated quantile with the Vasicek closed form.

The exposures file lists one counterparty per row:
  name,ead,pd,lgd
  ACME,1000000,0.02,0.45

Examples:
  tailrisk credit --exposures book.csv
  tailrisk credit --exposures book.csv --rho 0.12 --sims 50000 --workers 8 --seed 7`,
	Args: cobra.NoArgs,
	RunE: runCredit,
}

var (
	crExposures  string
	crRho        float64
	crSims       int
	crConfidence float64
	crWorkers    int
	crDetail     bool
	crOrg        bool
)

func init() {
	rootCmd.AddCommand(creditCmd)

	creditCmd.Flags().StringVarP(&crExposures, "exposures", "e", "", "exposures CSV (default credit.exposures_file)")
	creditCmd.Flags().Float64Var(&crRho, "rho", credit.DefaultCorrelation, "asset correlation in [0, 1)")
	creditCmd.Flags().IntVar(&crSims, "sims", credit.DefaultNSims, "number of simulated trials")
	creditCmd.Flags().Float64VarP(&crConfidence, "confidence", "c", credit.DefaultConfidence, "confidence level in (0, 1)")
	creditCmd.Flags().IntVar(&crWorkers, "workers", 0, "goroutines for the simulation (default run.workers)")
	creditCmd.Flags().BoolVar(&crDetail, "detail", false, "print expected and unexpected loss per counterparty")
	creditCmd.Flags().BoolVar(&crOrg, "org", false, "print the run as an Org-mode block")
}

func runCredit(cmd *cobra.Command, args []string) error {
	path := stringOr(cmd, "exposures", crExposures, cfg.Credit.ExposuresFile)
	if path == "" {
		return fmt.Errorf("an exposures file is required (--exposures or credit.exposures_file)")
	}
	p := credit.Params{
		Correlation: floatOr(cmd, "rho", crRho, cfg.Credit.Correlation),
		NSims:       intOr(cmd, "sims", crSims, cfg.Credit.NSims),
		Confidence:  floatOr(cmd, "confidence", crConfidence, cfg.Credit.Confidence),
		Workers:     intOr(cmd, "workers", crWorkers, cfg.Run.Workers),
	}

	exposures, err := dataset.LoadExposures(path)
	if err != nil {
		return err
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	ctx, cancel, err := runContext(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	logger.Info("credit simulation",
		"counterparties", len(exposures),
		"rho", p.Correlation,
		"sims", p.NSims,
		"workers", p.Workers,
		"seed", cfg.Run.Seed,
	)
	start := time.Now()
	res, err := credit.Simulate(newEngine(), exposures, p)
	if err != nil {
		return err
	}
	vasicek, err := credit.VasicekLoss(exposures, p.Correlation, p.Confidence)
	if err != nil {
		return err
	}
	logger.Info("credit simulation done", "elapsed", time.Since(start))

	var totalEAD float64
	for _, e := range exposures {
		totalEAD += e.EAD
	}
	created := time.Now().UTC()
	run := journal.CreditRun{
		RunID:          id.NewAt(created),
		Created:        created,
		Dataset:        filepath.Base(path),
		Counterparties: len(exposures),
		TotalEAD:       totalEAD,
		Correlation:    p.Correlation,
		NSims:          res.NSims,
		Confidence:     p.Confidence,
		Seed:           cfg.Run.Seed,
		ExpectedLoss:   res.ExpectedLoss,
		VaR:            res.VaR,
		WorstCase:      res.WorstCase,
		VasicekLoss:    vasicek,
	}
	if err := j.RecordCredit(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	out := cmd.OutOrStdout()
	if crOrg {
		fmt.Fprintln(out, journal.FormatCreditOrg(run))
		return nil
	}

	if crDetail {
		fmt.Fprintf(out, "%-16s %14s %8s %6s %12s %12s\n", "Name", "EAD", "PD", "LGD", "EL", "UL")
		fmt.Fprintln(out, "------------------------------------------------------------------------")
		for i, e := range exposures {
			name := e.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			ul, err := credit.UnexpectedLoss(e, p.Correlation, p.Confidence)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-16s %14.2f %8.4f %6.2f %12.2f %12.2f\n", name, e.EAD, e.PD, e.LGD, credit.ExpectedLoss(e), ul)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "==================================================")
	fmt.Fprintln(out, " Credit VaR")
	fmt.Fprintln(out, "==================================================")
	fmt.Fprintf(out, "Run ID:         %s\n", run.RunID)
	fmt.Fprintf(out, "Counterparties: %d\n", run.Counterparties)
	fmt.Fprintf(out, "Total EAD:      %.2f\n", run.TotalEAD)
	fmt.Fprintf(out, "Correlation:    %.4f\n", run.Correlation)
	fmt.Fprintf(out, "Simulations:    %d\n", run.NSims)
	fmt.Fprintf(out, "Confidence:     %.2f%%\n", run.Confidence*100)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Expected Loss:  %.2f\n", run.ExpectedLoss)
	fmt.Fprintf(out, "Credit VaR:     %.2f\n", run.VaR)
	fmt.Fprintf(out, "Vasicek Loss:   %.2f\n", run.VasicekLoss)
	fmt.Fprintf(out, "Worst Case:     %.2f\n", run.WorstCase)
	return nil
}
