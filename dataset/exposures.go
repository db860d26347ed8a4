package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rustyeddy/tailrisk/credit"
)

// LoadExposures reads a counterparty CSV. The header must name the
// exposure, pd and lgd columns; a name column is optional:
//
//	name,ead,pd,lgd
//	ACME,1000000,0.02,0.45
//
// Long-form headers (exposure_at_default, probability_of_default,
// loss_given_default) are accepted too. The result is validated with
// credit.Validate.
func LoadExposures(path string) ([]credit.Exposure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	cols, err := exposureColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var out []credit.Exposure
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		line++

		e, err := parseExposure(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		out = append(out, e)
	}

	if err := credit.Validate(out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

type exposureCols struct {
	name, ead, pd, lgd int
}

func exposureColumns(header []string) (exposureCols, error) {
	c := exposureCols{name: -1, ead: -1, pd: -1, lgd: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "counterparty":
			c.name = i
		case "ead", "exposure", "exposure_at_default":
			c.ead = i
		case "pd", "probability_of_default":
			c.pd = i
		case "lgd", "loss_given_default":
			c.lgd = i
		}
	}
	switch {
	case c.ead < 0:
		return c, fmt.Errorf("%w: ead", ErrNoExposureField)
	case c.pd < 0:
		return c, fmt.Errorf("%w: pd", ErrNoExposureField)
	case c.lgd < 0:
		return c, fmt.Errorf("%w: lgd", ErrNoExposureField)
	}
	return c, nil
}

func parseExposure(row []string, c exposureCols) (credit.Exposure, error) {
	field := func(i int, name string) (float64, error) {
		if i >= len(row) {
			return 0, fmt.Errorf("missing %s", name)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return 0, fmt.Errorf("bad %s %q: %w", name, row[i], err)
		}
		return v, nil
	}

	var e credit.Exposure
	var err error
	if c.name >= 0 && c.name < len(row) {
		e.Name = strings.TrimSpace(row[c.name])
	}
	if e.EAD, err = field(c.ead, "ead"); err != nil {
		return e, err
	}
	if e.PD, err = field(c.pd, "pd"); err != nil {
		return e, err
	}
	if e.LGD, err = field(c.lgd, "lgd"); err != nil {
		return e, err
	}
	return e, nil
}
