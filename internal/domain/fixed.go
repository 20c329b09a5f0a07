package domain

import (
	"bytes"

	"github.com/shopspring/decimal"
)

// Fixed is a decimal that serialises as a bare JSON number with two
// fractional digits (35000 -> 35000.00). It scans from and writes to
// NUMERIC columns through the embedded decimal.Decimal.
type Fixed struct {
	decimal.Decimal
}

// NewFixed wraps d.
func NewFixed(d decimal.Decimal) Fixed {
	return Fixed{Decimal: d}
}

// RequireFixed parses s and panics on failure. Intended for literals.
func RequireFixed(s string) Fixed {
	return Fixed{Decimal: decimal.RequireFromString(s)}
}

func (f Fixed) MarshalJSON() ([]byte, error) {
	return []byte(f.StringFixed(2)), nil
}

func (f *Fixed) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		f.Decimal = decimal.Zero
		return nil
	}
	return f.Decimal.UnmarshalJSON(b)
}

// Equal compares numeric value, ignoring scale.
func (f Fixed) Equal(other Fixed) bool {
	return f.Decimal.Equal(other.Decimal)
}
