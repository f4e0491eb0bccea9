package source

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// NotCoveredAmount stands in for a service the plan does not cover.
const NotCoveredAmount = 9999

var errBlank = errors.New("blank cell")

// ParseAmount parses a money or percentage cell as published in OPM
// workbooks and plan brochures: "$1,200", "20%", "No charge",
// "Not covered". A blank cell returns ok=false with no error.
func ParseAmount(raw string) (value float64, ok bool, err error) {
	d, err := parseDecimal(raw)
	if errors.Is(err, errBlank) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return d.InexactFloat64(), true, nil
}

// ParseRate parses a coinsurance-style rate. Whole numbers above 1 are
// read as percentages, so "20", "20%" and "0.2" all mean 0.2.
func ParseRate(raw string) (value float64, ok bool, err error) {
	d, err := parseDecimal(raw)
	if errors.Is(err, errBlank) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	s := strings.TrimSpace(raw)
	if !strings.HasSuffix(s, "%") && d.GreaterThan(decimal.NewFromInt(1)) && d.LessThanOrEqual(decimal.NewFromInt(100)) {
		d = d.Div(decimal.NewFromInt(100))
	}
	return d.InexactFloat64(), true, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") {
		return decimal.Zero, errBlank
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "not covered"):
		return decimal.NewFromInt(NotCoveredAmount), nil
	case strings.HasPrefix(lower, "no"):
		return decimal.Zero, nil
	}

	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if strings.HasSuffix(s, "%") {
		d, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
		if err != nil {
			return decimal.Zero, eris.Wrapf(err, "cell: invalid percentage %q", raw)
		}
		return d.Div(decimal.NewFromInt(100)), nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, eris.Wrapf(err, "cell: invalid amount %q", raw)
	}
	return d, nil
}

// ParseBool accepts yes/no, y/n, true/false, 1/0 and x (checked).
// Blank is false.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "t", "1", "x":
		return true, nil
	case "", "no", "n", "false", "f", "0":
		return false, nil
	}
	return false, eris.Errorf("cell: invalid boolean %q", raw)
}

// ParseList splits a ";" or "," separated cell into upper-cased entries.
func ParseList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToUpper(strings.TrimSpace(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
