package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/rustyeddy/tailrisk/dataset"
	"github.com/rustyeddy/tailrisk/internal/id"
	"github.com/rustyeddy/tailrisk/internal/logging"
	"github.com/rustyeddy/tailrisk/journal"
	"github.com/rustyeddy/tailrisk/random"
	"github.com/rustyeddy/tailrisk/risk"
)

// Defaults for rolling backtests.
const (
	DefaultWindow     = 60
	DefaultConfidence = 0.95
)

// ReturnFeed yields dated returns one at a time, in time order.
// Implementations return (ok=false, err=nil) at EOF.
type ReturnFeed interface {
	Next() (o dataset.Observation, ok bool, err error)
	Close() error
}

// RunnerOptions controls the rolling VaR model under test.
type RunnerOptions struct {
	Window     int
	Confidence float64
	Method     risk.Method
	// HoldingPeriod defaults to 1 when zero.
	HoldingPeriod int
	// NSims is used by risk.MethodMonteCarlo only.
	NSims int

	// Dataset labels the run in reports and the journal.
	Dataset string
	// OrgDir, when set, receives an Org-mode report named <run-id>.org.
	OrgDir string
}

// Runner reads a feed, builds the rolling VaR series and scores it.
type Runner struct {
	Feed    ReturnFeed
	Options RunnerOptions

	// Rand is required for risk.MethodMonteCarlo.
	Rand *random.Engine
	// Journal, when set, receives the run summary.
	Journal journal.Journal
	Logger  *slog.Logger
	// Now stamps the run; defaults to time.Now.
	Now func() time.Time
}

// Report is a scored backtest plus the run metadata.
type Report struct {
	Result

	RunID         string
	Created       time.Time
	Dataset       string
	Method        risk.Method
	Confidence    float64
	Window        int
	HoldingPeriod int

	Start        time.Time
	End          time.Time
	Observations int

	Series risk.Series
	// SmallSample counts scored positions whose window was too short for
	// the confidence level.
	SmallSample int
	Notes       []string
	OrgPath     string
}

// Run executes the backtest:
//  1. drain the feed
//  2. estimate VaR over each trailing window
//  3. score realized returns against the series
//
// The feed is closed on return.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	if r.Feed == nil {
		return Report{}, fmt.Errorf("backtest: Feed is required")
	}
	defer r.Feed.Close()

	opt := r.Options
	if opt.Window <= 0 {
		return Report{}, fmt.Errorf("backtest: %w (got %d)", risk.ErrWindow, opt.Window)
	}
	if opt.HoldingPeriod == 0 {
		opt.HoldingPeriod = 1
	}
	est, err := risk.NewEstimator(opt.Method, risk.Params{
		Confidence:    opt.Confidence,
		HoldingPeriod: float64(opt.HoldingPeriod),
		NSims:         opt.NSims,
		Rand:          r.Rand,
	})
	if err != nil {
		return Report{}, fmt.Errorf("backtest: %w", err)
	}

	log := r.Logger
	if log == nil {
		log = logging.Discard()
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	var (
		obs        []dataset.Observation
		start, end time.Time
	)
	for {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		o, ok, err := r.Feed.Next()
		if err != nil {
			return Report{}, err
		}
		if !ok {
			break
		}
		if start.IsZero() || o.Time.Before(start) {
			start = o.Time
		}
		if end.IsZero() || o.Time.After(end) {
			end = o.Time
		}
		obs = append(obs, o)
	}

	log.Info("backtest data loaded",
		"dataset", opt.Dataset,
		"observations", len(obs),
		"start", start,
		"end", end,
	)

	returns := dataset.Values(obs)
	series, err := risk.RollingWith(est, returns, opt.Window)
	if err != nil {
		return Report{}, fmt.Errorf("backtest: %w", err)
	}
	res, err := Score(returns, series, opt.Confidence)
	if err != nil {
		return Report{}, fmt.Errorf("backtest: %d observations, window %d: %w", len(obs), opt.Window, err)
	}

	created := now().UTC()
	rep := Report{
		Result:        res,
		RunID:         id.NewAt(created),
		Created:       created,
		Dataset:       opt.Dataset,
		Method:        opt.Method,
		Confidence:    opt.Confidence,
		Window:        opt.Window,
		HoldingPeriod: opt.HoldingPeriod,
		Start:         start,
		End:           end,
		Observations:  len(obs),
		Series:        series,
	}
	for _, e := range series {
		if e.Defined && e.HasWarning(risk.WarnSmallSample) {
			rep.SmallSample++
		}
	}
	if rep.SmallSample > 0 {
		log.Warn("VaR window shorter than the tail needs",
			"window", opt.Window,
			"min", risk.MinObservations(opt.Confidence),
			"positions", rep.SmallSample,
		)
		rep.Notes = append(rep.Notes, fmt.Sprintf(
			"window %d is below the %d observations needed at %.4f confidence",
			opt.Window, risk.MinObservations(opt.Confidence), opt.Confidence))
	}

	if opt.OrgDir != "" {
		rep.OrgPath = filepath.Join(opt.OrgDir, rep.RunID+".org")
		if err := rep.Run().WriteBacktestOrg(); err != nil {
			return rep, fmt.Errorf("backtest: write org report: %w", err)
		}
	}

	if r.Journal != nil {
		if err := r.Journal.RecordBacktest(ctx, rep.Run()); err != nil {
			return rep, fmt.Errorf("backtest: record run: %w", err)
		}
	}

	log.Info("backtest scored",
		"run_id", rep.RunID,
		"method", opt.Method.String(),
		"days", res.TotalDays,
		"exceptions", res.Exceptions,
		"rate", res.ExceptionRate,
		"status", res.Status.String(),
	)
	return rep, nil
}

// Run converts the report into a journal record.
func (rep Report) Run() journal.BacktestRun {
	return journal.BacktestRun{
		RunID:         rep.RunID,
		Created:       rep.Created,
		Dataset:       rep.Dataset,
		Method:        rep.Method.String(),
		Confidence:    rep.Confidence,
		Window:        rep.Window,
		HoldingPeriod: rep.HoldingPeriod,
		Start:         rep.Start,
		End:           rep.End,
		Observations:  rep.Observations,
		TotalDays:     rep.TotalDays,
		Exceptions:    rep.Exceptions,
		ExceptionRate: rep.ExceptionRate,
		ExpectedRate:  rep.ExpectedRate,
		Status:        rep.Status.String(),
		OrgPath:       rep.OrgPath,
		Notes:         rep.Notes,
	}
}
