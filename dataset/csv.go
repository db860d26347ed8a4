package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CSVReturnsFeed reads dated returns from a CSV file. Accepted shapes:
//
//	date,returns[,...]        header with a "returns" (or "return") column
//	date,...,close[,...]      header with a "close" column; simple returns are derived
//	time,return               no header; first column time, second return
//
// Dates are RFC3339, RFC3339Nano, "2006-01-02 15:04:05" or "2006-01-02".
// Rows with an empty return (the first row of a close-derived series) are
// skipped. Observations are optionally restricted to [from, to).
type CSVReturnsFeed struct {
	// Kind selects how close-derived returns are computed.
	Kind ReturnKind

	f    *os.File
	r    *csv.Reader
	from time.Time
	to   time.Time

	sawFirst  bool
	col       int
	fromClose bool
	prevClose float64
	havePrev  bool
}

func NewCSVReturnsFeed(path string, from, to time.Time) (*CSVReturnsFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	return &CSVReturnsFeed{f: f, r: r, from: from, to: to, col: 1}, nil
}

func (f *CSVReturnsFeed) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

func (f *CSVReturnsFeed) Next() (Observation, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return Observation{}, false, nil
		}
		if err != nil {
			return Observation{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		if !f.sawFirst {
			f.sawFirst = true
			if isHeader(row) {
				if err := f.readHeader(row); err != nil {
					return Observation{}, false, err
				}
				continue
			}
		}

		o, ok, err := f.parseRow(row)
		if err != nil {
			return Observation{}, false, err
		}
		if !ok {
			continue
		}
		if !inRange(o.Time, f.from, f.to) {
			continue
		}
		return o, true, nil
	}
}

func isHeader(row []string) bool {
	_, err := parseTime(row[0])
	return err != nil
}

func (f *CSVReturnsFeed) readHeader(row []string) error {
	closeCol := -1
	for i, h := range row {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "returns", "return":
			f.col = i
			return nil
		case "close", "adj close", "adj_close":
			if closeCol < 0 {
				closeCol = i
			}
		}
	}
	if closeCol < 0 {
		return fmt.Errorf("%w: header %v", ErrNoReturnColumn, row)
	}
	f.col = closeCol
	f.fromClose = true
	return nil
}

func (f *CSVReturnsFeed) parseRow(row []string) (Observation, bool, error) {
	if len(row) <= f.col {
		return Observation{}, false, nil
	}
	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return Observation{}, false, nil
	}
	t, err := parseTime(ts)
	if err != nil {
		return Observation{}, false, err
	}

	field := strings.TrimSpace(row[f.col])
	if field == "" || strings.EqualFold(field, "nan") {
		return Observation{}, false, nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return Observation{}, false, fmt.Errorf("bad value %q at %s: %w", field, ts, err)
	}

	if !f.fromClose {
		return Observation{Time: t, Return: v}, true, nil
	}

	if !(v > 0) {
		return Observation{}, false, fmt.Errorf("%w: close %v at %s", ErrPrice, v, ts)
	}
	prev, had := f.prevClose, f.havePrev
	f.prevClose, f.havePrev = v, true
	if !had {
		return Observation{}, false, nil
	}
	if f.Kind == Log {
		return Observation{Time: t, Return: math.Log(v / prev)}, true, nil
	}
	return Observation{Time: t, Return: v/prev - 1}, true, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q: %w", s, firstErr)
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

// LoadReturns reads every observation from a returns CSV.
func LoadReturns(path string) ([]Observation, error) {
	return LoadReturnsKind(path, Simple)
}

// LoadReturnsKind is LoadReturns with close-derived returns computed as kind.
func LoadReturnsKind(path string, kind ReturnKind) ([]Observation, error) {
	feed, err := NewCSVReturnsFeed(path, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	defer feed.Close()
	feed.Kind = kind

	var out []Observation
	for {
		o, ok, err := feed.Next()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if !ok {
			return out, nil
		}
		out = append(out, o)
	}
}
