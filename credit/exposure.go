// Package credit models portfolio credit losses under the single-factor
// Gaussian (Vasicek) framework, both by Monte Carlo simulation and in
// closed form.
package credit

import (
	"fmt"
	"math"

	"github.com/rustyeddy/tailrisk/risk"
)

var (
	ErrCorrelation    = fmt.Errorf("%w: asset correlation must be in [0, 1)", risk.ErrDomain)
	ErrProbability    = fmt.Errorf("%w: probability must be in [0, 1]", risk.ErrDomain)
	ErrLossSeverity   = fmt.Errorf("%w: loss given default must be in (0, 1]", risk.ErrDomain)
	ErrExposure       = fmt.Errorf("%w: exposure at default must be finite", risk.ErrDomain)
	ErrLengthMismatch = fmt.Errorf("%w: exposure arrays have different lengths", risk.ErrDomain)
	ErrEmptyPortfolio = fmt.Errorf("%w: no counterparties", risk.ErrDomain)
)

// Exposure is one counterparty. EAD may be negative for derivative
// positions where the counterparty owes nothing on default.
type Exposure struct {
	Name string
	EAD  float64
	PD   float64
	LGD  float64
}

// LossGivenDefault is the currency loss if the counterparty defaults.
func (e Exposure) LossGivenDefault() float64 {
	return e.EAD * e.LGD
}

// FromArrays builds an exposure set from index-aligned arrays.
func FromArrays(ead, pd, lgd []float64) ([]Exposure, error) {
	if len(ead) != len(pd) || len(ead) != len(lgd) {
		return nil, fmt.Errorf("%w: ead=%d pd=%d lgd=%d", ErrLengthMismatch, len(ead), len(pd), len(lgd))
	}
	out := make([]Exposure, len(ead))
	for i := range ead {
		out[i] = Exposure{EAD: ead[i], PD: pd[i], LGD: lgd[i]}
	}
	return out, Validate(out)
}

// Validate checks every counterparty. PD may be exactly 0 or 1; LGD must be
// positive.
func Validate(exposures []Exposure) error {
	if len(exposures) == 0 {
		return ErrEmptyPortfolio
	}
	for i, e := range exposures {
		if math.IsNaN(e.EAD) || math.IsInf(e.EAD, 0) {
			return fmt.Errorf("counterparty %d: %w (got %v)", i, ErrExposure, e.EAD)
		}
		if !(e.PD >= 0 && e.PD <= 1) {
			return fmt.Errorf("counterparty %d: pd %w (got %v)", i, ErrProbability, e.PD)
		}
		if !(e.LGD > 0 && e.LGD <= 1) {
			return fmt.Errorf("counterparty %d: %w (got %v)", i, ErrLossSeverity, e.LGD)
		}
	}
	return nil
}

func checkCorrelation(rho float64) error {
	if !(rho >= 0 && rho < 1) {
		return fmt.Errorf("%w (got %v)", ErrCorrelation, rho)
	}
	return nil
}
