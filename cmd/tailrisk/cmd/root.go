package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tailrisk/config"
	"github.com/rustyeddy/tailrisk/internal/logging"
	"github.com/rustyeddy/tailrisk/journal"
	"github.com/rustyeddy/tailrisk/random"
)

var rootCmd = &cobra.Command{
	Use:   "tailrisk",
	Short: "Tail-risk engine for market and credit portfolios",
	Long: `Tailrisk estimates the tail of a portfolio's loss distribution.

It provides tools for:
  - Value-at-risk by historical, parametric and Monte Carlo methods
  - Expected shortfall and rolling VaR series
  - Portfolio VaR from weights and a covariance matrix
  - Credit VaR with a single-factor default simulation and the Vasicek formula
  - Traffic-light backtests of a VaR model against realized returns
  - A SQLite or CSV journal of every run`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logSync != nil {
			_ = logSync()
		}
	},
}

var (
	cfgFile  string
	logLevel string
	devLog   bool
	seedFlag uint64

	cfg     = config.Default()
	logger  = logging.Discard()
	logSync func() error
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "path to config file (YAML or JSON)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	pf.BoolVar(&devLog, "dev", false, "human-readable colored logs")
	pf.Uint64Var(&seedFlag, "seed", 0, "random seed (overrides config)")
}

// setup loads the config file, applies global flag overrides and builds
// the logger.
func setup(cmd *cobra.Command, args []string) error {
	c := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return err
		}
		c = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Run.LogLevel = logLevel
	}
	if flags.Changed("dev") {
		c.Run.Dev = devLog
	}
	if flags.Changed("seed") {
		c.Run.Seed = seedFlag
	}

	log, sync, err := logging.New(c.Run.LogLevel, c.Run.Dev)
	if err != nil {
		return err
	}
	cfg, logger, logSync = c, log, sync
	return nil
}

// runContext bounds the command by run.timeout when one is configured.
func runContext(cmd *cobra.Command) (context.Context, context.CancelFunc, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := cfg.Run.ParseTimeout()
	if err != nil {
		return nil, nil, fmt.Errorf("run.timeout: %w", err)
	}
	if d <= 0 {
		ctx, cancel := context.WithCancel(ctx)
		return ctx, cancel, nil
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	return ctx, cancel, nil
}

func newEngine() *random.Engine {
	logger.Debug("random engine", "seed", cfg.Run.Seed)
	return random.New(cfg.Run.Seed)
}

func openJournal() (journal.Journal, error) {
	j, err := journal.Open(cfg.Journal.Type, cfg.Journal.DBPath, cfg.Journal.BacktestsFile, cfg.Journal.CreditFile)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return j, nil
}

// stringOr returns the flag value when it was set on the command line.
func stringOr(cmd *cobra.Command, name, flag, fallback string) string {
	if cmd.Flags().Changed(name) {
		return flag
	}
	return fallback
}

func floatOr(cmd *cobra.Command, name string, flag, fallback float64) float64 {
	if cmd.Flags().Changed(name) {
		return flag
	}
	return fallback
}

func intOr(cmd *cobra.Command, name string, flag, fallback int) int {
	if cmd.Flags().Changed(name) {
		return flag
	}
	return fallback
}

func parseDay(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func warnSample(log *slog.Logger, what string, n, need int) {
	log.Warn("sample shorter than the tail needs", "estimate", what, "observations", n, "min", need)
}
