package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestEngine_SameSeedSameSequence(t *testing.T) {
	t.Parallel()

	a := New(42)
	b := New(42)

	assert.Equal(t, a.Normal(), b.Normal())

	va, err := a.Normals(16)
	require.NoError(t, err)
	vb, err := b.Normals(16)
	require.NoError(t, err)
	assert.Equal(t, va, vb)
}

func TestEngine_DifferentSeeds(t *testing.T) {
	t.Parallel()

	va, err := New(1).Normals(8)
	require.NoError(t, err)
	vb, err := New(2).Normals(8)
	require.NoError(t, err)
	assert.NotEqual(t, va, vb)
}

func TestEngine_Normals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		k       int
		wantLen int
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"one", 1, 1, false},
		{"many", 100, 100, false},
		{"negative", -1, 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := New(7).Normals(tt.k)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNegativeCount)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestEngine_Moments(t *testing.T) {
	t.Parallel()

	xs, err := New(2024).Normals(200000)
	require.NoError(t, err)

	mean, std := stat.MeanStdDev(xs, nil)
	assert.InDelta(t, 0.0, mean, 0.01)
	assert.InDelta(t, 1.0, std, 0.01)
}

func TestEngine_FillMatchesNormals(t *testing.T) {
	t.Parallel()

	want, err := New(9).Normals(10)
	require.NoError(t, err)

	got := make([]float64, 10)
	New(9).Fill(got)
	assert.Equal(t, want, got)
}

func TestEngine_StreamIgnoresConsumption(t *testing.T) {
	t.Parallel()

	fresh := New(5)
	used := New(5)
	used.Fill(make([]float64, 1000))

	assert.Equal(t, fresh.Stream(3).Normal(), used.Stream(3).Normal())
	assert.NotEqual(t, fresh.Stream(3).Normal(), fresh.Stream(4).Normal())
}

func TestEngine_SplitAdvancesParent(t *testing.T) {
	t.Parallel()

	a := New(11)
	b := New(11)

	ca := a.Split()
	cb := b.Split()
	assert.Equal(t, ca.Seed(), cb.Seed())
	assert.Equal(t, ca.Normal(), cb.Normal())

	// a second split yields a different child
	assert.NotEqual(t, ca.Seed(), a.Split().Seed())
}
