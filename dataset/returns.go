// Package dataset loads return series and exposure sets from CSV files.
// It is the thin boundary between on-disk data and the in-memory slices
// the estimators consume; it does no cleaning or resampling.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrPrice           = errors.New("dataset: prices must be positive")
	ErrReturnKind      = errors.New("dataset: unknown return kind")
	ErrNoReturnColumn  = errors.New("dataset: no returns or close column")
	ErrNoExposureField = errors.New("dataset: missing exposure column")
)

// Observation is one dated period return.
type Observation struct {
	Time   time.Time
	Return float64
}

// Values returns the return column of obs.
func Values(obs []Observation) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.Return
	}
	return out
}

// ReturnKind selects how prices are turned into returns.
type ReturnKind int

const (
	Simple ReturnKind = iota
	Log
)

func (k ReturnKind) String() string {
	switch k {
	case Simple:
		return "simple"
	case Log:
		return "log"
	}
	return fmt.Sprintf("ReturnKind(%d)", int(k))
}

// ParseReturnKind accepts "simple" or "log".
func ParseReturnKind(s string) (ReturnKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple", "":
		return Simple, nil
	case "log":
		return Log, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrReturnKind, s)
}

// Returns converts n prices into n-1 period returns.
func Returns(prices []float64, kind ReturnKind) ([]float64, error) {
	for i, p := range prices {
		if !(p > 0) || math.IsInf(p, 1) {
			return nil, fmt.Errorf("%w: price %d is %v", ErrPrice, i, p)
		}
	}
	if len(prices) < 2 {
		return nil, nil
	}

	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		switch kind {
		case Simple:
			out[i-1] = prices[i]/prices[i-1] - 1
		case Log:
			out[i-1] = math.Log(prices[i] / prices[i-1])
		default:
			return nil, fmt.Errorf("%w: %v", ErrReturnKind, kind)
		}
	}
	return out, nil
}

// SimpleReturns is Returns(prices, Simple).
func SimpleReturns(prices []float64) ([]float64, error) { return Returns(prices, Simple) }

// LogReturns is Returns(prices, Log).
func LogReturns(prices []float64) ([]float64, error) { return Returns(prices, Log) }
