// Package risk implements the Value-at-Risk estimators, expected shortfall
// and the rolling VaR series scored by package backtest.
//
// Sign convention: the sample-based estimators (Historical, Parametric,
// MonteCarlo) read the lower (1-confidence) tail of a return distribution
// and report it as a positive loss magnitude. Portfolio instead multiplies a
// portfolio volatility by the upper confidence quantile; see Portfolio.
package risk

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rustyeddy/tailrisk/random"
)

// Estimate is a single risk figure. Defined is false for positions where
// no estimate could be produced (for example inside a rolling warm-up).
type Estimate struct {
	Value    float64
	Defined  bool
	Warnings []Warning
}

func defined(v float64, warnings ...Warning) Estimate {
	return Estimate{Value: v, Defined: true, Warnings: warnings}
}

// HasWarning reports whether w was raised for this estimate.
func (e Estimate) HasWarning(w Warning) bool {
	return slices.Contains(e.Warnings, w)
}

// Series is a VaR series aligned 1:1 with a return series.
type Series []Estimate

// Values returns the defined values and their positions.
func (s Series) Values() (idx []int, vals []float64) {
	for i, e := range s {
		if e.Defined {
			idx = append(idx, i)
			vals = append(vals, e.Value)
		}
	}
	return idx, vals
}

// DefinedCount returns how many positions carry an estimate.
func (s Series) DefinedCount() int {
	n := 0
	for _, e := range s {
		if e.Defined {
			n++
		}
	}
	return n
}

// Method selects a sample-based estimator.
type Method int

const (
	MethodHistorical Method = iota
	MethodParametric
	MethodMonteCarlo
)

func (m Method) String() string {
	switch m {
	case MethodHistorical:
		return "historical"
	case MethodParametric:
		return "parametric"
	case MethodMonteCarlo:
		return "montecarlo"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps a name to a Method. There is no fallback: unknown names
// return ErrUnknownMethod.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "historical", "hist":
		return MethodHistorical, nil
	case "parametric", "normal":
		return MethodParametric, nil
	case "montecarlo", "monte-carlo", "mc":
		return MethodMonteCarlo, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Estimator produces a VaR estimate from a return sample.
type Estimator interface {
	Estimate(returns []float64) (Estimate, error)
}

// Params are the options shared by the sample-based estimators.
type Params struct {
	Confidence    float64
	HoldingPeriod float64
	// NSims and Rand are used by MethodMonteCarlo only.
	NSims int
	Rand  *random.Engine
}

// NewEstimator validates p and returns the estimator for m.
func NewEstimator(m Method, p Params) (Estimator, error) {
	if err := CheckConfidence(p.Confidence); err != nil {
		return nil, err
	}
	if err := checkHoldingPeriod(p.HoldingPeriod); err != nil {
		return nil, err
	}
	switch m {
	case MethodHistorical:
		return HistoricalEstimator{Confidence: p.Confidence, HoldingPeriod: p.HoldingPeriod}, nil
	case MethodParametric:
		return ParametricEstimator{Confidence: p.Confidence, HoldingPeriod: p.HoldingPeriod}, nil
	case MethodMonteCarlo:
		if err := CheckSimulations(p.NSims); err != nil {
			return nil, err
		}
		if p.Rand == nil {
			return nil, fmt.Errorf("%w: monte carlo estimator needs a random engine", ErrDomain)
		}
		return &MonteCarloEstimator{
			Confidence:    p.Confidence,
			HoldingPeriod: p.HoldingPeriod,
			NSims:         p.NSims,
			Rand:          p.Rand,
		}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, m)
}
