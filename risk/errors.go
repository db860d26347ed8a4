package risk

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrDomain is the class of all caller-correctable input errors. Every
// sentinel below wraps it, so errors.Is(err, ErrDomain) reports whether a
// failure came from bad parameters rather than from the computation.
var ErrDomain = errors.New("domain error")

var (
	ErrConfidence         = fmt.Errorf("%w: confidence must be in (0, 1)", ErrDomain)
	ErrHoldingPeriod      = fmt.Errorf("%w: holding period must be positive", ErrDomain)
	ErrInsufficientData   = fmt.Errorf("%w: not enough observations", ErrDomain)
	ErrSimulations        = fmt.Errorf("%w: simulation count must be positive", ErrDomain)
	ErrWindow             = fmt.Errorf("%w: window must be positive", ErrDomain)
	ErrDimensionMismatch  = fmt.Errorf("%w: dimension mismatch", ErrDomain)
	ErrSingularCovariance = fmt.Errorf("%w: covariance matrix is not positive definite", ErrDomain)
	ErrPortfolioValue     = fmt.Errorf("%w: portfolio value must be positive", ErrDomain)
	ErrUnknownMethod      = fmt.Errorf("%w: unknown estimation method", ErrDomain)
	ErrNonFinite          = fmt.Errorf("%w: value is NaN or infinite", ErrDomain)
)

// Warning is a non-fatal data-quality signal attached to an estimate.
type Warning string

const (
	// WarnSmallSample: fewer than 1/(1-confidence) observations back the
	// requested percentile, so the tail is represented by interpolation only.
	WarnSmallSample Warning = "SMALL_SAMPLE"
	// WarnEmptyTail: no observation lies beyond VaR; expected shortfall
	// fell back to VaR.
	WarnEmptyTail Warning = "EMPTY_TAIL"
)

// CheckConfidence returns ErrConfidence unless 0 < c < 1.
func CheckConfidence(c float64) error {
	if !(c > 0 && c < 1) {
		return fmt.Errorf("%w (got %v)", ErrConfidence, c)
	}
	return nil
}

func checkHoldingPeriod(h float64) error {
	if !(h > 0) {
		return fmt.Errorf("%w (got %v)", ErrHoldingPeriod, h)
	}
	return nil
}

// checkFinite rejects any NaN or infinite entry of xs.
func checkFinite(what string, xs []float64) error {
	if floats.HasNaN(xs) {
		return fmt.Errorf("%s: %w (NaN)", what, ErrNonFinite)
	}
	for i, x := range xs {
		if math.IsInf(x, 0) {
			return fmt.Errorf("%s[%d]: %w (got %v)", what, i, ErrNonFinite, x)
		}
	}
	return nil
}

func checkReturns(returns []float64) error {
	return checkFinite("returns", returns)
}

// CheckSimulations returns ErrSimulations unless n > 0.
func CheckSimulations(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w (got %d)", ErrSimulations, n)
	}
	return nil
}
