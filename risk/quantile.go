package risk

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// Percentile returns the p-quantile (0 <= p <= 1) of xs using linear
// interpolation between the closest ranks: the value at position p*(n-1)
// of the sorted sample. xs is not modified. It panics on an empty sample;
// callers validate length first.
func Percentile(xs []float64, p float64) float64 {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// LowerZ is the standard-normal quantile at 1-confidence (negative for
// confidence > 0.5). Used by the estimators that read a quantile off a
// return distribution.
func LowerZ(confidence float64) float64 {
	return distuv.UnitNormal.Quantile(1 - confidence)
}

// UpperZ is the standard-normal quantile at confidence (positive for
// confidence > 0.5). Only Portfolio uses it: there z scales a volatility,
// it is not read off a loss distribution.
func UpperZ(confidence float64) float64 {
	return distuv.UnitNormal.Quantile(confidence)
}

// MinObservations is the smallest sample for which the (1-confidence)
// percentile is backed by at least one observation in the tail.
func MinObservations(confidence float64) int {
	return int(math.Ceil(1/(1-confidence) - 1e-9))
}
