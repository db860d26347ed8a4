package risk

import "fmt"

// RollingVaR returns a historical one-period VaR series aligned with
// returns. Position i (i >= window) is estimated from returns[i-window:i],
// so the day being scored is never part of its own window. The first
// window positions are undefined; if window >= len(returns) every position
// is undefined.
func RollingVaR(returns []float64, window int, confidence float64) (Series, error) {
	if err := CheckConfidence(confidence); err != nil {
		return nil, err
	}
	return RollingWith(HistoricalEstimator{Confidence: confidence, HoldingPeriod: 1}, returns, window)
}

// RollingWith runs est over each trailing window of returns.
func RollingWith(est Estimator, returns []float64, window int) (Series, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrWindow, window)
	}
	if err := checkReturns(returns); err != nil {
		return nil, fmt.Errorf("rolling VaR: %w", err)
	}

	out := make(Series, len(returns))
	for i := window; i < len(returns); i++ {
		e, err := est.Estimate(returns[i-window : i])
		if err != nil {
			return nil, fmt.Errorf("rolling VaR at %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}
