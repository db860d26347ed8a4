package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// FitNormal returns the sample mean and the sample (n-1) standard deviation.
func FitNormal(returns []float64) (mu, sigma float64, err error) {
	if len(returns) < 2 {
		return 0, 0, fmt.Errorf("normal fit: %w (need 2, got %d)", ErrInsufficientData, len(returns))
	}
	if err := checkReturns(returns); err != nil {
		return 0, 0, fmt.Errorf("normal fit: %w", err)
	}
	mu, sigma = stat.MeanStdDev(returns, nil)
	return mu, sigma, nil
}

// Parametric returns the variance-covariance VaR of a single return series
// under a normal assumption:
//
//	VaR = -(mu*h + z*sigma*sqrt(h)),  z = Phi^-1(1-confidence)
//
// The result is not clamped: a series with a strong positive drift can
// produce a negative VaR, meaning no loss is expected at this confidence.
func Parametric(returns []float64, confidence, holdingPeriod float64) (Estimate, error) {
	if err := CheckConfidence(confidence); err != nil {
		return Estimate{}, err
	}
	if err := checkHoldingPeriod(holdingPeriod); err != nil {
		return Estimate{}, err
	}
	mu, sigma, err := FitNormal(returns)
	if err != nil {
		return Estimate{}, fmt.Errorf("parametric VaR: %w", err)
	}

	z := LowerZ(confidence)
	v := -(mu*holdingPeriod + z*sigma*math.Sqrt(holdingPeriod))
	return defined(v, sampleWarnings(len(returns), confidence)...), nil
}

// ParametricEstimator binds Parametric to fixed parameters.
type ParametricEstimator struct {
	Confidence    float64
	HoldingPeriod float64
}

func (p ParametricEstimator) Estimate(returns []float64) (Estimate, error) {
	return Parametric(returns, p.Confidence, p.HoldingPeriod)
}
