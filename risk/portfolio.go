package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// symmetryTol bounds |cov[i][j]-cov[j][i]| relative to the diagonal scale.
const symmetryTol = 1e-10

// Portfolio returns the variance-covariance VaR of a weighted portfolio:
//
//	VaR = sqrt(w' * cov * w) * Phi^-1(confidence) * value
//
// Unlike the sample-based estimators, z is taken at the upper quantile
// (confidence, not 1-confidence): the formula scales a positive portfolio
// volatility into a loss amount rather than reading a quantile off a return
// distribution. Swapping in LowerZ here flips the sign of the result.
//
// cov must be square, match len(weights), be symmetric and be positive
// definite; anything else is rejected with ErrDimensionMismatch or
// ErrSingularCovariance.
func Portfolio(weights []float64, cov [][]float64, confidence, value float64) (Estimate, error) {
	if err := CheckConfidence(confidence); err != nil {
		return Estimate{}, err
	}
	if !(value > 0) {
		return Estimate{}, fmt.Errorf("%w (got %v)", ErrPortfolioValue, value)
	}

	sym, err := covariance(weights, cov)
	if err != nil {
		return Estimate{}, err
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return Estimate{}, fmt.Errorf("portfolio VaR: %w", ErrSingularCovariance)
	}

	w := mat.NewVecDense(len(weights), weights)
	variance := mat.Inner(w, sym, w)
	if variance < 0 {
		return Estimate{}, fmt.Errorf("portfolio VaR: %w (variance %v)", ErrSingularCovariance, variance)
	}

	v := math.Sqrt(variance) * UpperZ(confidence) * value
	return defined(v), nil
}

// PortfolioVolatility returns sqrt(w' * cov * w) after the same validation
// Portfolio applies.
func PortfolioVolatility(weights []float64, cov [][]float64) (float64, error) {
	sym, err := covariance(weights, cov)
	if err != nil {
		return 0, err
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return 0, fmt.Errorf("portfolio volatility: %w", ErrSingularCovariance)
	}
	w := mat.NewVecDense(len(weights), weights)
	return math.Sqrt(mat.Inner(w, sym, w)), nil
}

func covariance(weights []float64, cov [][]float64) (*mat.SymDense, error) {
	n := len(weights)
	if n == 0 {
		return nil, fmt.Errorf("portfolio: %w (no weights)", ErrInsufficientData)
	}
	if err := checkFinite("weights", weights); err != nil {
		return nil, err
	}
	if len(cov) != n {
		return nil, fmt.Errorf("%w: covariance has %d rows, want %d", ErrDimensionMismatch, len(cov), n)
	}

	scale := 0.0
	for i, row := range cov {
		if len(row) != n {
			return nil, fmt.Errorf("%w: covariance row %d has %d columns, want %d", ErrDimensionMismatch, i, len(row), n)
		}
		if err := checkFinite(fmt.Sprintf("covariance row %d", i), row); err != nil {
			return nil, err
		}
		scale = math.Max(scale, math.Abs(row[i]))
	}

	data := make([]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if math.Abs(cov[i][j]-cov[j][i]) > symmetryTol*math.Max(scale, 1) {
				return nil, fmt.Errorf("%w: covariance is not symmetric at (%d,%d)", ErrSingularCovariance, i, j)
			}
			data = append(data, cov[i][j])
		}
	}
	return mat.NewSymDense(n, data), nil
}
