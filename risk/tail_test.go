package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tailrisk/random"
)

func TestExpectedShortfall_Scenario(t *testing.T) {
	t.Parallel()

	v, err := Historical(scenarioReturns, 0.95, 1)
	require.NoError(t, err)

	es, err := ExpectedShortfall(scenarioReturns, 0.95)
	require.NoError(t, err)

	// only -0.08 lies beyond -0.0725
	var sum float64
	var n int
	for _, r := range scenarioReturns {
		if r < -v.Value {
			sum += r
			n++
		}
	}
	require.Equal(t, 1, n)
	assert.InDelta(t, -sum/float64(n), es.Value, 1e-12)
	assert.InDelta(t, 0.08, es.Value, 1e-12)
	assert.GreaterOrEqual(t, es.Value, v.Value)
	assert.False(t, es.HasWarning(WarnEmptyTail))
}

func TestExpectedShortfall_EmptyTailFallsBack(t *testing.T) {
	t.Parallel()

	// a single observation is its own percentile; nothing lies strictly beyond it
	rets := []float64{-0.02}
	v, err := Historical(rets, 0.95, 1)
	require.NoError(t, err)

	es, err := ExpectedShortfall(rets, 0.95)
	require.NoError(t, err)
	assert.Equal(t, v.Value, es.Value)
	assert.True(t, es.HasWarning(WarnEmptyTail))
	assert.True(t, es.Defined)
}

func TestExpectedShortfall_Errors(t *testing.T) {
	t.Parallel()

	_, err := ExpectedShortfall(nil, 0.95)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = ExpectedShortfall(scenarioReturns, 0)
	assert.ErrorIs(t, err, ErrConfidence)
}

func TestTail(t *testing.T) {
	t.Parallel()

	tr, err := Tail(scenarioReturns, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 0.0725, tr.VaR.Value, 1e-12)
	assert.InDelta(t, 0.08, tr.ES.Value, 1e-12)
	assert.Equal(t, 1, tr.TailCount)
}

func TestRollingVaR(t *testing.T) {
	t.Parallel()

	const window = 3
	series, err := RollingVaR(scenarioReturns, window, 0.95)
	require.NoError(t, err)
	require.Len(t, series, len(scenarioReturns))

	for i := 0; i < window; i++ {
		assert.False(t, series[i].Defined, "position %d", i)
	}
	for i := window; i < len(scenarioReturns); i++ {
		want, err := Historical(scenarioReturns[i-window:i], 0.95, 1)
		require.NoError(t, err)
		assert.True(t, series[i].Defined)
		assert.Equal(t, want.Value, series[i].Value, "position %d", i)
	}
	assert.Equal(t, 3, series.DefinedCount())
}

func TestRollingVaR_NoLookAhead(t *testing.T) {
	t.Parallel()

	a := []float64{-0.01, 0.02, -0.03, 0.01, 0.00}
	b := append([]float64(nil), a...)
	b[3] = -0.50 // shock the day being scored

	sa, err := RollingVaR(a, 3, 0.95)
	require.NoError(t, err)
	sb, err := RollingVaR(b, 3, 0.95)
	require.NoError(t, err)

	assert.Equal(t, sa[3], sb[3])
	assert.NotEqual(t, sa[4].Value, sb[4].Value)
}

func TestRollingVaR_WindowLongerThanSeries(t *testing.T) {
	t.Parallel()

	series, err := RollingVaR(scenarioReturns, 10, 0.95)
	require.NoError(t, err)
	assert.Len(t, series, len(scenarioReturns))
	assert.Zero(t, series.DefinedCount())
}

func TestRollingVaR_Errors(t *testing.T) {
	t.Parallel()

	_, err := RollingVaR(scenarioReturns, 0, 0.95)
	assert.ErrorIs(t, err, ErrWindow)
	_, err = RollingVaR(scenarioReturns, -2, 0.95)
	assert.ErrorIs(t, err, ErrWindow)
	_, err = RollingVaR(scenarioReturns, 2, 1.5)
	assert.ErrorIs(t, err, ErrConfidence)
}

func TestRollingWith_Parametric(t *testing.T) {
	t.Parallel()

	est, err := NewEstimator(MethodParametric, Params{Confidence: 0.95, HoldingPeriod: 1})
	require.NoError(t, err)

	// a window of one cannot be fitted
	_, err = RollingWith(est, scenarioReturns, 1)
	assert.ErrorIs(t, err, ErrInsufficientData)

	series, err := RollingWith(est, scenarioReturns, 4)
	require.NoError(t, err)
	idx, vals := series.Values()
	assert.Equal(t, []int{4, 5}, idx)
	assert.Len(t, vals, 2)
}

func TestRollingWith_MonteCarloReproducible(t *testing.T) {
	t.Parallel()

	run := func() Series {
		est, err := NewEstimator(MethodMonteCarlo, Params{
			Confidence: 0.95, HoldingPeriod: 1, NSims: 500, Rand: random.New(3),
		})
		require.NoError(t, err)
		s, err := RollingWith(est, scenarioReturns, 3)
		require.NoError(t, err)
		return s
	}
	assert.Equal(t, run(), run())
}

func TestRollingWith_RejectsNonFinite(t *testing.T) {
	t.Parallel()

	returns := []float64{0.01, -0.02, 0.03, -0.01, 0.02, math.NaN(), 0.01}
	_, err := RollingVaR(returns, 3, 0.95)
	assert.ErrorIs(t, err, ErrNonFinite)

	// the bad value sits outside every window but is still rejected
	_, err = RollingWith(ParametricEstimator{Confidence: 0.95, HoldingPeriod: 1}, []float64{0.01, -0.02, 0.03, math.Inf(-1)}, 3)
	assert.ErrorIs(t, err, ErrNonFinite)
}
