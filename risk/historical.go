package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Historical returns the historical-simulation VaR: each return is scaled by
// sqrt(holdingPeriod), the (1-confidence) percentile of the scaled sample is
// taken, and its magnitude is reported.
//
// The magnitude assumes the lower tail of the sample is negative (simple or
// log returns in fractional units). A sample whose lower percentile is
// positive yields a positive "VaR" that is really a gain.
//
// Samples with fewer than MinObservations(confidence) returns carry
// WarnSmallSample.
func Historical(returns []float64, confidence, holdingPeriod float64) (Estimate, error) {
	if err := CheckConfidence(confidence); err != nil {
		return Estimate{}, err
	}
	if err := checkHoldingPeriod(holdingPeriod); err != nil {
		return Estimate{}, err
	}
	if len(returns) == 0 {
		return Estimate{}, fmt.Errorf("historical VaR: %w (got 0)", ErrInsufficientData)
	}
	if err := checkReturns(returns); err != nil {
		return Estimate{}, fmt.Errorf("historical VaR: %w", err)
	}

	scaled := make([]float64, len(returns))
	floats.ScaleTo(scaled, math.Sqrt(holdingPeriod), returns)

	v := math.Abs(Percentile(scaled, 1-confidence))
	return defined(v, sampleWarnings(len(returns), confidence)...), nil
}

// HistoricalEstimator binds Historical to fixed parameters.
type HistoricalEstimator struct {
	Confidence    float64
	HoldingPeriod float64
}

func (h HistoricalEstimator) Estimate(returns []float64) (Estimate, error) {
	return Historical(returns, h.Confidence, h.HoldingPeriod)
}

func sampleWarnings(n int, confidence float64) []Warning {
	if n < MinObservations(confidence) {
		return []Warning{WarnSmallSample}
	}
	return nil
}
