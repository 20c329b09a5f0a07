package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bounds on client supplied numbers. Arithmetic on a decimal costs time in
// proportion to its digits and exponent, so anything past these is refused
// before it is parsed or compared.
const (
	MaxNumericLength = 32
	MaxNumericScale  = 20
)

var (
	ErrNumberTooLong   = errors.New("number exceeds supported precision")
	ErrIntegerOverflow = errors.New("integer out of range")
)

// DecimalPlaces returns the number of fractional digits d carries,
// ignoring trailing zeros (10.50 has 1, 10 has 0).
func DecimalPlaces(d decimal.Decimal) int {
	exp := d.Exponent()
	if exp >= 0 || d.IsZero() {
		return 0
	}
	digits := d.Coefficient().Text(10)
	trailing := len(digits) - len(strings.TrimRight(digits, "0"))
	places := int(-exp) - trailing
	if places < 0 {
		return 0
	}
	return places
}

// DecimalFromJSON converts a value decoded with json.Decoder.UseNumber into a
// decimal. Numbers and numeric strings are accepted; values longer than
// MaxNumericLength or scaled beyond MaxNumericScale return ErrNumberTooLong.
func DecimalFromJSON(v any) (decimal.Decimal, error) {
	var d decimal.Decimal
	var err error
	switch n := v.(type) {
	case json.Number:
		d, err = parseBounded(n.String())
	case string:
		d, err = parseBounded(strings.TrimSpace(n))
	case float64:
		d = decimal.NewFromFloat(n)
	case int:
		d = decimal.NewFromInt(int64(n))
	case int64:
		d = decimal.NewFromInt(n)
	case decimal.Decimal:
		d = n
	default:
		return decimal.Zero, fmt.Errorf("not a number: %T", v)
	}
	if err != nil {
		return decimal.Zero, err
	}
	if exp := d.Exponent(); exp < -MaxNumericScale || exp > MaxNumericScale {
		return decimal.Zero, ErrNumberTooLong
	}
	return d, nil
}

func parseBounded(s string) (decimal.Decimal, error) {
	if len(s) > MaxNumericLength {
		return decimal.Zero, ErrNumberTooLong
	}
	return decimal.NewFromString(s)
}

// IntFromJSON converts a value decoded with json.Decoder.UseNumber into an
// integer. Fractional numbers and strings are rejected; integers outside the
// int64 range return ErrIntegerOverflow.
func IntFromJSON(v any) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrIntegerOverflow
		}
		if err != nil {
			return 0, fmt.Errorf("not an integer: %s", n)
		}
		return int(i), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, ErrIntegerOverflow
		}
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}

// NowUTC returns the current time in UTC truncated to the precision
// postgres keeps for timestamptz.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
