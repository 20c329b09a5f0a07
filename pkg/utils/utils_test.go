package utils

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalPlaces(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{name: "integer", value: "35000", expected: 0},
		{name: "trailing zeros ignored", value: "35000.00", expected: 0},
		{name: "one place", value: "10.50", expected: 1},
		{name: "two places", value: "25.55", expected: 2},
		{name: "three places", value: "0.001", expected: 3},
		{name: "zero with scale", value: "0.000", expected: 0},
		{name: "negative", value: "-12.345", expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DecimalPlaces(decimal.RequireFromString(tt.value))
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDecimalPlaces_LongCoefficient(t *testing.T) {
	const digits = 200000
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(digits), nil)

	start := time.Now()
	assert.Equal(t, 0, DecimalPlaces(decimal.NewFromBigInt(one, -digits)))
	assert.Equal(t, digits, DecimalPlaces(decimal.NewFromBigInt(big.NewInt(1), -digits)))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDecimalFromJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
		wantErr  bool
	}{
		{name: "json number", input: json.Number("35000.00"), expected: "35000"},
		{name: "numeric string", input: "25.50", expected: "25.5"},
		{name: "padded numeric string", input: " 12 ", expected: "12"},
		{name: "float", input: 0.5, expected: "0.5"},
		{name: "int", input: 7, expected: "7"},
		{name: "word", input: "abc", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "bool", input: true, wantErr: true},
		{name: "object", input: map[string]any{}, wantErr: true},
		{name: "tiny exponent", input: json.Number("1e-1000000000"), wantErr: true},
		{name: "huge exponent", input: json.Number("1e1000000000"), wantErr: true},
		{name: "too many digits", input: json.Number("1" + strings.Repeat("0", 100000) + "e-100000"), wantErr: true},
		{name: "at scale bound", input: json.Number("1e-20"), expected: "0.00000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DecimalFromJSON(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, result.Equal(decimal.RequireFromString(tt.expected)),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestDecimalFromJSON_Bounds(t *testing.T) {
	for _, input := range []any{
		json.Number(strings.Repeat("9", MaxNumericLength+1)),
		" " + strings.Repeat("1", MaxNumericLength+1) + " ",
		json.Number("1e-21"),
		json.Number("1e21"),
		1e-300,
	} {
		_, err := DecimalFromJSON(input)
		assert.ErrorIs(t, err, ErrNumberTooLong, "input %v", input)
	}
}

func TestIntFromJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int
		wantErr  bool
	}{
		{name: "json integer", input: json.Number("9"), expected: 9},
		{name: "negative", input: json.Number("-3"), expected: -3},
		{name: "whole float", input: 12.0, expected: 12},
		{name: "fraction", input: json.Number("9.5"), wantErr: true},
		{name: "fractional float", input: 1.5, wantErr: true},
		{name: "string", input: "9", wantErr: true},
		{name: "bool", input: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := IntFromJSON(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIntFromJSON_Overflow(t *testing.T) {
	_, err := IntFromJSON(json.Number("99999999999999999999"))
	assert.ErrorIs(t, err, ErrIntegerOverflow)

	_, err = IntFromJSON(1e30)
	assert.ErrorIs(t, err, ErrIntegerOverflow)
}

func TestNowUTC(t *testing.T) {
	now := NowUTC()

	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond()%1000, "expected microsecond precision")
}
