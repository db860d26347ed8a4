package credit

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rustyeddy/tailrisk/random"
	"github.com/rustyeddy/tailrisk/risk"
)

// Defaults for credit VaR runs.
const (
	DefaultCorrelation = 0.20
	DefaultNSims       = 10000
	DefaultConfidence  = 0.99
)

// Params controls a simulation run.
type Params struct {
	Correlation float64
	NSims       int
	Confidence  float64
	// Workers > 1 spreads trials over that many goroutines. The result does
	// not depend on the worker count.
	Workers int
}

// Result summarises the simulated loss distribution.
type Result struct {
	ExpectedLoss float64
	VaR          float64
	WorstCase    float64
	NSims        int
}

// DefaultThreshold is the latent asset level below which a counterparty
// with default probability pd defaults: Phi^-1(pd), saturating to -Inf at
// pd = 0 (never defaults) and +Inf at pd = 1 (always defaults).
func DefaultThreshold(pd float64) float64 {
	switch {
	case pd <= 0:
		return math.Inf(-1)
	case pd >= 1:
		return math.Inf(1)
	}
	return distuv.UnitNormal.Quantile(pd)
}

// SimulatePortfolioLoss is Simulate over index-aligned arrays.
func SimulatePortfolioLoss(rng *random.Engine, ead, pd, lgd []float64, rho float64, nSims int, confidence float64) (Result, error) {
	exposures, err := FromArrays(ead, pd, lgd)
	if err != nil {
		return Result{}, err
	}
	return Simulate(rng, exposures, Params{Correlation: rho, NSims: nSims, Confidence: confidence})
}

// Simulate runs the single-factor default simulation and returns the mean,
// the Confidence-quantile and the maximum of the trial losses.
func Simulate(rng *random.Engine, exposures []Exposure, p Params) (Result, error) {
	if err := risk.CheckConfidence(p.Confidence); err != nil {
		return Result{}, err
	}
	losses, err := Losses(rng, exposures, p)
	if err != nil {
		return Result{}, err
	}
	return Result{
		ExpectedLoss: stat.Mean(losses, nil),
		VaR:          risk.Percentile(losses, p.Confidence),
		WorstCase:    floats.Max(losses),
		NSims:        len(losses),
	}, nil
}

// Losses returns the portfolio loss of each of p.NSims trials. In each
// trial one systematic factor z and one idiosyncratic factor e_i per
// counterparty are drawn; counterparty i defaults when
//
//	sqrt(rho)*z + sqrt(1-rho)*e_i < Phi^-1(pd_i)
//
// and contributes EAD_i*LGD_i to the trial loss.
//
// The caller's engine advances by one draw. Trial t draws from substream t
// of a child engine, so the returned slice is identical for every
// Workers setting.
func Losses(rng *random.Engine, exposures []Exposure, p Params) ([]float64, error) {
	if err := checkCorrelation(p.Correlation); err != nil {
		return nil, err
	}
	if err := risk.CheckSimulations(p.NSims); err != nil {
		return nil, err
	}
	if err := Validate(exposures); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: simulation needs a random engine", risk.ErrDomain)
	}

	m := newModel(exposures, p.Correlation)
	base := rng.Split()
	losses := make([]float64, p.NSims)

	workers := p.Workers
	if workers <= 1 || p.NSims < 2*workers {
		m.run(base, losses, 0)
		return losses, nil
	}

	var g errgroup.Group
	chunk := (p.NSims + workers - 1) / workers
	for lo := 0; lo < p.NSims; lo += chunk {
		hi := min(lo+chunk, p.NSims)
		g.Go(func() error {
			m.run(base, losses[lo:hi], lo)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return losses, nil
}

// model holds the per-run constants shared read-only by all trials.
type model struct {
	sys, idio  float64
	thresholds []float64
	severity   []float64
}

func newModel(exposures []Exposure, rho float64) *model {
	m := &model{
		sys:        math.Sqrt(rho),
		idio:       math.Sqrt(1 - rho),
		thresholds: make([]float64, len(exposures)),
		severity:   make([]float64, len(exposures)),
	}
	for i, e := range exposures {
		m.thresholds[i] = DefaultThreshold(e.PD)
		m.severity[i] = e.LossGivenDefault()
	}
	return m
}

// run fills out with trials offset, offset+1, ...
func (m *model) run(base *random.Engine, out []float64, offset int) {
	for k := range out {
		st := base.Stream(uint64(offset + k))
		z := m.sys * st.Normal()
		var loss float64
		for i, th := range m.thresholds {
			if z+m.idio*st.Normal() < th {
				loss += m.severity[i]
			}
		}
		out[k] = loss
	}
}
