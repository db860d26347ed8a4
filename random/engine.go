// Package random provides the seeded normal-deviate source shared by the
// stochastic estimators. An Engine is owned by the caller and passed
// explicitly; nothing in this module seeds or reads a process-wide generator.
package random

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNegativeCount is returned when a negative number of deviates is requested.
var ErrNegativeCount = errors.New("random: negative deviate count")

// streamMix decorrelates the main stream from the numbered substreams.
const streamMix = 0x9e3779b97f4a7c15

// Engine produces a deterministic sequence of standard-normal deviates.
// An Engine is not safe for concurrent use; use Stream to hand each
// goroutine its own generator.
type Engine struct {
	seed uint64
	src  *rand.PCG
	norm distuv.Normal
}

// New returns an Engine seeded with seed. Two engines built from the same
// seed produce identical sequences for the same sequence of requests.
func New(seed uint64) *Engine {
	return newEngine(seed, seed^streamMix)
}

func newEngine(seed, stream uint64) *Engine {
	src := rand.NewPCG(seed, stream)
	return &Engine{
		seed: seed,
		src:  src,
		norm: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// Seed returns the seed the engine was built from.
func (e *Engine) Seed() uint64 { return e.seed }

// Source exposes the underlying source so gonum distributions can draw from
// the same stream.
func (e *Engine) Source() rand.Source { return e.src }

// Normal returns one standard-normal deviate.
func (e *Engine) Normal() float64 {
	return e.norm.Rand()
}

// Normals returns k independent standard-normal deviates.
func (e *Engine) Normals(k int) ([]float64, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeCount, k)
	}
	out := make([]float64, k)
	e.Fill(out)
	return out, nil
}

// Fill overwrites dst with standard-normal deviates.
func (e *Engine) Fill(dst []float64) {
	for i := range dst {
		dst[i] = e.norm.Rand()
	}
}

// Split draws a fresh seed from e and returns a new Engine built from it.
// The parent advances by exactly one draw.
func (e *Engine) Split() *Engine {
	return New(e.src.Uint64())
}

// Stream returns the i-th substream of e. Substreams depend only on the
// engine's seed and i, never on how much of e has been consumed, so work
// split across goroutines stays reproducible regardless of scheduling.
func (e *Engine) Stream(i uint64) *Engine {
	return newEngine(e.seed, i)
}
