// Package backtest scores a VaR series against realized returns with the
// regulatory traffic-light test and drives rolling backtests over a
// return feed.
package backtest

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/tailrisk/risk"
)

// ErrLengthMismatch is returned when returns and VaR series are not aligned.
var ErrLengthMismatch = fmt.Errorf("%w: returns and VaR series differ in length", risk.ErrDomain)

// Traffic-light multipliers of the expected exception rate. Fixed by the
// test definition; not configurable.
const (
	GreenMultiplier  = 1.5
	YellowMultiplier = 2.0
)

// Status is the traffic-light classification of a VaR model.
type Status int

const (
	Green Status = iota
	Yellow
	Red
)

func (s Status) String() string {
	switch s {
	case Green:
		return "GREEN"
	case Yellow:
		return "YELLOW"
	case Red:
		return "RED"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText renders the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var errStatus = errors.New("backtest: unknown status")

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "GREEN":
		return Green, nil
	case "YELLOW":
		return Yellow, nil
	case "RED":
		return Red, nil
	}
	return 0, fmt.Errorf("%w: %q", errStatus, s)
}

// boundaryTolerance absorbs the rounding in 1-confidence, so that e.g.
// 10/100 at 0.95 compares equal to 2x expected.
const boundaryTolerance = 1e-9

// Classify maps an observed exception rate to a traffic light. A rate of
// exactly 1.5x expected is still GREEN; exactly 2x expected is RED.
func Classify(rate, expected float64) Status {
	switch {
	case rate <= GreenMultiplier*expected*(1+boundaryTolerance):
		return Green
	case rate < YellowMultiplier*expected*(1-boundaryTolerance):
		return Yellow
	default:
		return Red
	}
}

// Result is the outcome of one backtest.
type Result struct {
	Exceptions    int
	TotalDays     int
	ExceptionRate float64
	ExpectedRate  float64
	Status        Status
}

// Score counts exceptions over the positions where series is defined. An
// exception is a day whose realized return is below -VaR, i.e. the loss
// exceeded the predicted magnitude. Neither input is modified, and equal
// inputs always produce equal results.
func Score(returns []float64, series risk.Series, confidence float64) (Result, error) {
	if err := risk.CheckConfidence(confidence); err != nil {
		return Result{}, err
	}
	if len(returns) != len(series) {
		return Result{}, fmt.Errorf("%w (returns=%d var=%d)", ErrLengthMismatch, len(returns), len(series))
	}

	var res Result
	for i, e := range series {
		if !e.Defined {
			continue
		}
		res.TotalDays++
		if returns[i] < -e.Value {
			res.Exceptions++
		}
	}
	if res.TotalDays == 0 {
		return Result{}, fmt.Errorf("backtest: no defined VaR positions: %w", risk.ErrInsufficientData)
	}

	res.ExceptionRate = float64(res.Exceptions) / float64(res.TotalDays)
	res.ExpectedRate = 1 - confidence
	res.Status = Classify(res.ExceptionRate, res.ExpectedRate)
	return res, nil
}
