package backtest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tailrisk/dataset"
	"github.com/rustyeddy/tailrisk/journal"
	"github.com/rustyeddy/tailrisk/random"
	"github.com/rustyeddy/tailrisk/risk"
)

// mockReturnFeed is a simple in-memory feed for testing
type mockReturnFeed struct {
	obs    []dataset.Observation
	index  int
	closed bool
}

func newMockReturnFeed(returns []float64) *mockReturnFeed {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]dataset.Observation, len(returns))
	for i, r := range returns {
		obs[i] = dataset.Observation{Time: start.AddDate(0, 0, i), Return: r}
	}
	return &mockReturnFeed{obs: obs}
}

func (m *mockReturnFeed) Next() (dataset.Observation, bool, error) {
	if m.index >= len(m.obs) {
		return dataset.Observation{}, false, nil
	}
	o := m.obs[m.index]
	m.index++
	return o, true, nil
}

func (m *mockReturnFeed) Close() error {
	m.closed = true
	return nil
}

// errorReturnFeed returns an error on Next()
type errorReturnFeed struct{}

func (e *errorReturnFeed) Next() (dataset.Observation, bool, error) {
	return dataset.Observation{}, false, errors.New("mock error")
}

func (e *errorReturnFeed) Close() error {
	return nil
}

// recordingJournal keeps what it is given.
type recordingJournal struct {
	journal.Nop
	runs []journal.BacktestRun
}

func (j *recordingJournal) RecordBacktest(_ context.Context, r journal.BacktestRun) error {
	j.runs = append(j.runs, r)
	return nil
}

// alternating returns: every fourth day loses 5%, the rest gain 1%.
func patterned(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%4 == 3 {
			out[i] = -0.05
		} else {
			out[i] = 0.01
		}
	}
	return out
}

func fixedNow() time.Time { return time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC) }

func TestRunner_Run_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("missing feed", func(t *testing.T) {
		t.Parallel()

		r := &Runner{Options: RunnerOptions{Window: 10, Confidence: 0.95}}
		_, err := r.Run(ctx)
		require.Error(t, err)
		assert.Equal(t, "backtest: Feed is required", err.Error())
	})

	t.Run("bad window", func(t *testing.T) {
		t.Parallel()

		feed := newMockReturnFeed(patterned(10))
		r := &Runner{Feed: feed, Options: RunnerOptions{Window: 0, Confidence: 0.95}}
		_, err := r.Run(ctx)
		assert.ErrorIs(t, err, risk.ErrWindow)
		assert.True(t, feed.closed)
	})

	t.Run("bad confidence", func(t *testing.T) {
		t.Parallel()

		r := &Runner{Feed: newMockReturnFeed(nil), Options: RunnerOptions{Window: 5, Confidence: 1.2}}
		_, err := r.Run(ctx)
		assert.ErrorIs(t, err, risk.ErrConfidence)
	})

	t.Run("monte carlo without engine", func(t *testing.T) {
		t.Parallel()

		r := &Runner{
			Feed:    newMockReturnFeed(nil),
			Options: RunnerOptions{Window: 5, Confidence: 0.95, Method: risk.MethodMonteCarlo, NSims: 100},
		}
		_, err := r.Run(ctx)
		assert.ErrorIs(t, err, risk.ErrDomain)
	})

	t.Run("feed error", func(t *testing.T) {
		t.Parallel()

		r := &Runner{Feed: &errorReturnFeed{}, Options: RunnerOptions{Window: 5, Confidence: 0.95}}
		_, err := r.Run(ctx)
		assert.EqualError(t, err, "mock error")
	})

	t.Run("window longer than data", func(t *testing.T) {
		t.Parallel()

		r := &Runner{Feed: newMockReturnFeed(patterned(5)), Options: RunnerOptions{Window: 5, Confidence: 0.95}}
		_, err := r.Run(ctx)
		assert.ErrorIs(t, err, risk.ErrInsufficientData)
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		r := &Runner{Feed: newMockReturnFeed(patterned(30)), Options: RunnerOptions{Window: 5, Confidence: 0.95}}
		_, err := r.Run(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRunner_Run_Historical(t *testing.T) {
	t.Parallel()

	returns := patterned(100)
	feed := newMockReturnFeed(returns)
	j := &recordingJournal{}

	r := &Runner{
		Feed: feed,
		Options: RunnerOptions{
			Window:     20,
			Confidence: 0.95,
			Method:     risk.MethodHistorical,
			Dataset:    "pattern",
		},
		Journal: j,
		Now:     fixedNow,
	}

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, feed.closed, "expected feed to be closed")

	// matches scoring the rolling series directly
	series, err := risk.RollingVaR(returns, 20, 0.95)
	require.NoError(t, err)
	want, err := Score(returns, series, 0.95)
	require.NoError(t, err)
	assert.Equal(t, want, rep.Result)

	assert.Equal(t, 80, rep.TotalDays)
	assert.Equal(t, 100, rep.Observations)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rep.Start)
	assert.Equal(t, time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC), rep.End)
	assert.Equal(t, 1, rep.HoldingPeriod)
	assert.Equal(t, fixedNow(), rep.Created)
	assert.Len(t, rep.RunID, 26)
	assert.Zero(t, rep.SmallSample)
	assert.Empty(t, rep.Notes)

	require.Len(t, j.runs, 1)
	run := j.runs[0]
	assert.Equal(t, rep.RunID, run.RunID)
	assert.Equal(t, "historical", run.Method)
	assert.Equal(t, rep.Status.String(), run.Status)
	assert.Equal(t, 20, run.Window)
}

func TestRunner_Run_SmallWindowNote(t *testing.T) {
	t.Parallel()

	r := &Runner{
		Feed:    newMockReturnFeed(patterned(40)),
		Options: RunnerOptions{Window: 10, Confidence: 0.99, Method: risk.MethodParametric},
		Now:     fixedNow,
	}

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, rep.SmallSample)
	require.Len(t, rep.Notes, 1)
	assert.Contains(t, rep.Notes[0], "below the 100 observations")
}

func TestRunner_Run_MonteCarloDeterministic(t *testing.T) {
	t.Parallel()

	run := func() Report {
		r := &Runner{
			Feed: newMockReturnFeed(patterned(60)),
			Options: RunnerOptions{
				Window:     20,
				Confidence: 0.95,
				Method:     risk.MethodMonteCarlo,
				NSims:      2000,
			},
			Rand: random.New(11),
			Now:  fixedNow,
		}
		rep, err := r.Run(context.Background())
		require.NoError(t, err)
		return rep
	}

	a, b := run(), run()
	assert.Equal(t, a.Result, b.Result)
	assert.Equal(t, a.Series, b.Series)
}

func TestRunner_Run_SQLiteJournal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, err := journal.NewSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	defer j.Close()

	r := &Runner{
		Feed:    newMockReturnFeed(patterned(50)),
		Options: RunnerOptions{Window: 20, Confidence: 0.95, Dataset: "pattern"},
		Journal: j,
		Now:     fixedNow,
	}
	rep, err := r.Run(ctx)
	require.NoError(t, err)

	got, err := j.GetBacktestRun(ctx, rep.RunID)
	require.NoError(t, err)
	assert.Equal(t, rep.Exceptions, got.Exceptions)
	assert.Equal(t, rep.TotalDays, got.TotalDays)
	assert.Equal(t, "pattern", got.Dataset)
}

func TestPrintReport(t *testing.T) {
	t.Parallel()

	rep := Report{
		Result: Result{
			Exceptions:    3,
			TotalDays:     250,
			ExceptionRate: 0.012,
			ExpectedRate:  0.01,
			Status:        Green,
		},
		RunID:      "01HXPRINT",
		Created:    fixedNow(),
		Dataset:    "spx.csv",
		Method:     risk.MethodParametric,
		Confidence: 0.99,
		Window:     250,
		Notes:      []string{"quiet year"},
	}

	var buf bytes.Buffer
	PrintReport(&buf, rep)
	out := buf.String()

	assert.Contains(t, out, "Run ID:        01HXPRINT")
	assert.Contains(t, out, "Dataset:       spx.csv")
	assert.Contains(t, out, "Method:        parametric")
	assert.Contains(t, out, "Confidence:    99.00%")
	assert.Contains(t, out, "Observed Rate: 1.20%")
	assert.Contains(t, out, "Status:        GREEN")
	assert.Contains(t, out, "- quiet year")
}

func TestRunner_Run_OrgReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j := &recordingJournal{}
	r := &Runner{
		Feed:    newMockReturnFeed(patterned(40)),
		Options: RunnerOptions{Window: 20, Confidence: 0.95, Dataset: "pattern", OrgDir: dir},
		Journal: j,
		Now:     fixedNow,
	}

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, rep.RunID+".org"), rep.OrgPath)

	data, err := os.ReadFile(rep.OrgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), ":RUN_ID:         "+rep.RunID)

	require.Len(t, j.runs, 1)
	assert.Equal(t, rep.OrgPath, j.runs[0].OrgPath)
}
