package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tailrisk/credit"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReturns(t *testing.T) {
	t.Parallel()

	prices := []float64{100, 110, 99}

	simple, err := SimpleReturns(prices)
	require.NoError(t, err)
	require.Len(t, simple, 2)
	assert.InDelta(t, 0.10, simple[0], 1e-12)
	assert.InDelta(t, -0.10, simple[1], 1e-12)

	logr, err := LogReturns(prices)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(1.1), logr[0], 1e-12)
	assert.InDelta(t, math.Log(0.9), logr[1], 1e-12)

	none, err := SimpleReturns([]float64{100})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = SimpleReturns([]float64{100, 0, 10})
	assert.ErrorIs(t, err, ErrPrice)
}

func TestParseReturnKind(t *testing.T) {
	t.Parallel()

	k, err := ParseReturnKind("LOG")
	require.NoError(t, err)
	assert.Equal(t, Log, k)

	k, err = ParseReturnKind("simple")
	require.NoError(t, err)
	assert.Equal(t, Simple, k)

	_, err = ParseReturnKind("percent")
	assert.ErrorIs(t, err, ErrReturnKind)
}

func TestLoadReturns_ReturnsColumn(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "r.csv", "Date,Close,returns\n"+
		"2024-01-02,100,\n"+
		"2024-01-03,98,-0.02\n"+
		"2024-01-04,99.96,0.02\n")

	obs, err := LoadReturns(path)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), obs[0].Time)
	assert.Equal(t, []float64{-0.02, 0.02}, Values(obs))
}

func TestLoadReturns_DerivedFromClose(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "c.csv", "date,open,close\n"+
		"2024-01-02,1,100\n"+
		"2024-01-03,1,110\n"+
		"2024-01-04,1,99\n")

	obs, err := LoadReturns(path)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.InDelta(t, 0.10, obs[0].Return, 1e-12)
	assert.InDelta(t, -0.10, obs[1].Return, 1e-12)
}

func TestLoadReturns_Headerless(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "h.csv", "2024-01-02T00:00:00Z,-0.01\n2024-01-03T00:00:00Z,0.03\n")

	obs, err := LoadReturns(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{-0.01, 0.03}, Values(obs))
}

func TestLoadReturns_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadReturns(writeFile(t, "x.csv", "date,volume\n2024-01-02,5\n"))
	assert.ErrorIs(t, err, ErrNoReturnColumn)

	_, err = LoadReturns(writeFile(t, "y.csv", "date,returns\n2024-01-02,abc\n"))
	assert.Error(t, err)

	_, err = LoadReturns(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestCSVReturnsFeed_Range(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "c.csv", "date,close\n"+
		"2024-01-01,100\n"+
		"2024-01-02,101\n"+
		"2024-01-03,102\n"+
		"2024-01-04,103\n")

	from := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	feed, err := NewCSVReturnsFeed(path, from, time.Time{})
	require.NoError(t, err)
	defer feed.Close()

	var got []Observation
	for {
		o, ok, err := feed.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, o)
	}
	require.Len(t, got, 2)
	// the close before the window still seeds the first return
	assert.InDelta(t, 102.0/101-1, got[0].Return, 1e-12)
}

func TestLoadExposures(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "e.csv", "name,ead,pd,lgd\n"+
		"ACME,1000,0.02,0.45\n"+
		"Globex,-50,0.1,1\n")

	exp, err := LoadExposures(path)
	require.NoError(t, err)
	assert.Equal(t, []credit.Exposure{
		{Name: "ACME", EAD: 1000, PD: 0.02, LGD: 0.45},
		{Name: "Globex", EAD: -50, PD: 0.1, LGD: 1},
	}, exp)
}

func TestLoadExposures_LongHeaders(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "e.csv", "exposure_at_default,probability_of_default,loss_given_default\n100,0.05,1\n")
	exp, err := LoadExposures(path)
	require.NoError(t, err)
	require.Len(t, exp, 1)
	assert.Equal(t, 100.0, exp[0].EAD)
}

func TestLoadExposures_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadExposures(writeFile(t, "a.csv", "name,ead,lgd\nx,1,1\n"))
	assert.ErrorIs(t, err, ErrNoExposureField)

	_, err = LoadExposures(writeFile(t, "b.csv", "ead,pd,lgd\n1,1.5,1\n"))
	assert.ErrorIs(t, err, credit.ErrProbability)

	_, err = LoadExposures(writeFile(t, "c.csv", "ead,pd,lgd\n"))
	assert.ErrorIs(t, err, credit.ErrEmptyPortfolio)
}

func TestLoadMatrix(t *testing.T) {
	t.Parallel()

	labels, m, err := LoadMatrix(writeFile(t, "cov.csv", "SPX,TLT\n0.04,0.01\n0.01,0.02\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"SPX", "TLT"}, labels)
	assert.Equal(t, [][]float64{{0.04, 0.01}, {0.01, 0.02}}, m)

	labels, m, err = LoadMatrix(writeFile(t, "bare.csv", "1\n"))
	require.NoError(t, err)
	assert.Nil(t, labels)
	assert.Equal(t, [][]float64{{1}}, m)

	_, _, err = LoadMatrix(writeFile(t, "rect.csv", "0.04,0.01\n0.01\n"))
	assert.ErrorIs(t, err, ErrMatrixShape)

	_, _, err = LoadMatrix(writeFile(t, "labels.csv", "A,B,C\n0.04,0.01\n0.01,0.02\n"))
	assert.ErrorIs(t, err, ErrMatrixShape)

	_, _, err = LoadMatrix(writeFile(t, "bad.csv", "0.04,x\n0.01,0.02\n"))
	assert.Error(t, err)
}

func TestLoadReturnsKind_Log(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "c.csv", "date,close\n2024-01-02,100\n2024-01-03,110\n")
	obs, err := LoadReturnsKind(path, Log)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.InDelta(t, math.Log(1.1), obs[0].Return, 1e-12)
}
