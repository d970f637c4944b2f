// Package money converts between major-unit amounts (40.00) and the integer
// minor units (4000) that every stored or transmitted monetary field uses.
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

var (
	// minor units per major unit
	hundred = decimal.NewFromInt(100)
	// amounts are int64 minor units end to end, columns are BIGINT
	maxMinor = decimal.NewFromInt(math.MaxInt64)
)

// ToMinorUnits converts a major-unit decimal to minor units.
// More than two fractional digits is rejected instead of rounded.
func ToMinorUnits(v decimal.Decimal) (int64, error) {
	if v.IsNegative() {
		return 0, fmt.Errorf("%w: negative", ErrInvalidAmount)
	}
	m := v.Mul(hundred)
	if !m.Equal(m.Truncate(0)) {
		return 0, fmt.Errorf("%w: more than two decimal places", ErrInvalidAmount)
	}
	if m.GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}
	return m.IntPart(), nil
}

// ParseMajor parses "40", "40.5" or "40.00" into minor units.
func ParseMajor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	// Thousands separators and currency symbols are ambiguous, reject them.
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '-' {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidAmount, s)
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidAmount, s)
	}
	return ToMinorUnits(d)
}

// ToMajorUnits returns minor as a decimal fixed to two places.
func ToMajorUnits(minor int64) (decimal.Decimal, error) {
	if minor < 0 {
		return decimal.Zero, fmt.Errorf("%w: negative", ErrInvalidAmount)
	}
	return decimal.New(minor, -2), nil
}

// Format renders minor units for humans, e.g. "$110.00 MXN".
func Format(minor int64, currency string) string {
	d := decimal.New(minor, -2)
	s := "$" + d.StringFixed(2)
	if currency != "" {
		s += " " + strings.ToUpper(currency)
	}
	return s
}

// Minor is an amount in minor units at the API boundary.
//
// It decodes from a bare JSON integer (minor units by contract) or from a
// tagged object {"amount": ..., "unit": "minor"|"major"}. Floats and bare
// strings are rejected: the unit of such values cannot be known.
type Minor int64

type tagged struct {
	Amount json.RawMessage `json:"amount"`
	Unit   string          `json:"unit"`
}

func (m *Minor) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	switch b[0] {
	case '{':
		var t tagged
		if err := json.Unmarshal(b, &t); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
		}
		v, err := decodeTagged(t)
		if err != nil {
			return err
		}
		*m = Minor(v)
		return nil
	case '"':
		return fmt.Errorf("%w: amount must state its unit", ErrInvalidAmount)
	default:
		v, err := parseInteger(b)
		if err != nil {
			return err
		}
		*m = Minor(v)
		return nil
	}
}

func decodeTagged(t tagged) (int64, error) {
	raw := bytes.TrimSpace(t.Amount)
	if len(raw) == 0 {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	switch t.Unit {
	case "minor":
		return parseInteger(raw)
	case "major":
		s := string(raw)
		if raw[0] == '"' {
			if err := json.Unmarshal(raw, &s); err != nil {
				return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
			}
		}
		return ParseMajor(s)
	default:
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidAmount, t.Unit)
	}
}

func parseInteger(b []byte) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, b)
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidAmount, b)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative", ErrInvalidAmount)
	}
	return v, nil
}

func (m Minor) Int64() int64 { return int64(m) }
