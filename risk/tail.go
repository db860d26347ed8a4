package risk

import (
	"fmt"
	"math"
)

// ExpectedShortfall returns the mean loss magnitude of the returns lying
// strictly beyond the one-period historical VaR (r < -VaR).
//
// When no return lies beyond VaR the result falls back to VaR itself and
// carries WarnEmptyTail. Warnings from the underlying VaR are kept.
func ExpectedShortfall(returns []float64, confidence float64) (Estimate, error) {
	v, err := Historical(returns, confidence, 1)
	if err != nil {
		return Estimate{}, fmt.Errorf("expected shortfall: %w", err)
	}

	var sum float64
	var n int
	for _, r := range returns {
		if r < -v.Value {
			sum += r
			n++
		}
	}

	if n == 0 {
		return defined(v.Value, append(v.Warnings, WarnEmptyTail)...), nil
	}
	return defined(math.Abs(sum/float64(n)), v.Warnings...), nil
}

// TailReport bundles the VaR and ES read off the same sample.
type TailReport struct {
	Confidence float64
	VaR        Estimate
	ES         Estimate
	TailCount  int
}

// Tail computes historical VaR and expected shortfall together.
func Tail(returns []float64, confidence float64) (TailReport, error) {
	es, err := ExpectedShortfall(returns, confidence)
	if err != nil {
		return TailReport{}, err
	}
	v, err := Historical(returns, confidence, 1)
	if err != nil {
		return TailReport{}, err
	}
	tr := TailReport{Confidence: confidence, VaR: v, ES: es}
	for _, r := range returns {
		if r < -v.Value {
			tr.TailCount++
		}
	}
	return tr, nil
}
