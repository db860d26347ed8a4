package credit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rustyeddy/tailrisk/risk"
)

// BaselCorrelation is the fixed asset correlation of the Basel corporate
// unexpected-loss convention; callers without a calibrated rho use it.
const BaselCorrelation = 0.12

// ConditionalPD is the default probability conditional on the systematic
// factor sitting at its adverse confidence quantile:
//
//	Phi((Phi^-1(pd) + sqrt(rho)*Phi^-1(confidence)) / sqrt(1-rho))
func ConditionalPD(pd, rho, confidence float64) (float64, error) {
	if err := checkCorrelation(rho); err != nil {
		return 0, err
	}
	if err := risk.CheckConfidence(confidence); err != nil {
		return 0, err
	}
	if !(pd >= 0 && pd <= 1) {
		return 0, fmt.Errorf("pd %w (got %v)", ErrProbability, pd)
	}
	switch pd {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	}
	z := distuv.UnitNormal.Quantile(confidence)
	x := (distuv.UnitNormal.Quantile(pd) + math.Sqrt(rho)*z) / math.Sqrt(1-rho)
	return distuv.UnitNormal.CDF(x), nil
}

// ExpectedLoss is PD*LGD*EAD.
func ExpectedLoss(e Exposure) float64 {
	return e.PD * e.LGD * e.EAD
}

// PortfolioExpectedLoss sums ExpectedLoss over the portfolio.
func PortfolioExpectedLoss(exposures []Exposure) float64 {
	var el float64
	for _, e := range exposures {
		el += ExpectedLoss(e)
	}
	return el
}

// UnexpectedLoss is LGD*EAD*(ConditionalPD - PD): the loss at the
// confidence quantile in excess of the expected loss.
func UnexpectedLoss(e Exposure, rho, confidence float64) (float64, error) {
	if err := Validate([]Exposure{e}); err != nil {
		return 0, err
	}
	cpd, err := ConditionalPD(e.PD, rho, confidence)
	if err != nil {
		return 0, err
	}
	return e.LGD * e.EAD * (cpd - e.PD), nil
}

// VasicekLoss is the confidence quantile of portfolio loss in the
// infinitely granular limit, Sum LGD_i*EAD_i*ConditionalPD(pd_i). Simulate
// converges to it as the portfolio grows and NSims grows.
func VasicekLoss(exposures []Exposure, rho, confidence float64) (float64, error) {
	if err := Validate(exposures); err != nil {
		return 0, err
	}
	var loss float64
	for _, e := range exposures {
		cpd, err := ConditionalPD(e.PD, rho, confidence)
		if err != nil {
			return 0, err
		}
		loss += e.LossGivenDefault() * cpd
	}
	return loss, nil
}
