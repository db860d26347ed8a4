package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var ErrMatrixShape = errors.New("dataset: matrix must be square")

// LoadMatrix reads a square numeric matrix, one row per line, such as a
// covariance matrix. A first row that does not parse as numbers is taken
// as asset labels and returned separately.
func LoadMatrix(path string) (labels []string, m [][]float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	for i, row := range rows {
		vals, perr := parseRow(row)
		if perr != nil {
			if i == 0 && labels == nil {
				for _, h := range row {
					labels = append(labels, strings.TrimSpace(h))
				}
				continue
			}
			return nil, nil, fmt.Errorf("%s line %d: %w", path, i+1, perr)
		}
		m = append(m, vals)
	}

	for i, row := range m {
		if len(row) != len(m) {
			return nil, nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMatrixShape, i, len(row), len(m))
		}
	}
	if labels != nil && len(labels) != len(m) {
		return nil, nil, fmt.Errorf("%w: %d labels for %d rows", ErrMatrixShape, len(labels), len(m))
	}
	return labels, m, nil
}

func parseRow(row []string) ([]float64, error) {
	out := make([]float64, len(row))
	for i, s := range row {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
