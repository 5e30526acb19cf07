// Package money provides functionality for handling monetary values.
//
// It is a value object that represents a monetary value in the ledger currency.
// Invariants:
//   - Amount is always stored in the smallest currency unit (centavos for BRL).
//   - Parsing and formatting go through shopspring/decimal, never float64.
//   - Values with more fractional digits than the currency allows are rejected,
//     not rounded.
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when an amount cannot be parsed.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrTooManyDecimals is returned when an amount has more fractional digits
	// than the currency supports.
	ErrTooManyDecimals = errors.New("amount has too many decimal places")

	// ErrAmountExceedsMaxSafeInt is returned when an amount does not fit into
	// the smallest-unit representation.
	ErrAmountExceedsMaxSafeInt = errors.New("amount exceeds maximum safe integer value")
)

// Code represents a currency code (e.g., "BRL").
type Code string

// BRL is the only currency the ledger operates in.
const BRL Code = "BRL"

// String returns the string representation of the currency code.
func (c Code) String() string {
	return string(c)
}

// Currency represents a monetary unit with its standard decimal places.
type Currency struct {
	Code     Code
	Decimals int32
}

// DefaultCurrency is the ledger currency.
var DefaultCurrency = Currency{Code: BRL, Decimals: 2}

// Amount represents a monetary amount as an integer in the smallest currency
// unit.
type Amount = int64

// Money represents a monetary value in the ledger currency.
type Money struct {
	amount Amount
}

// Zero returns a zero value.
func Zero() Money {
	return Money{}
}

const (
	// maxExponent bounds the decimal exponent accepted before any scaling.
	maxExponent = 18
	// maxInputLength bounds the textual form accepted by Parse.
	maxInputLength = 64
)

// New creates Money from a decimal value in the main currency unit.
func New(d decimal.Decimal) (Money, error) {
	if d.IsZero() {
		return Money{}, nil
	}
	if d.Exponent() > maxExponent {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	if d.Exponent() < -maxExponent {
		return Money{}, fmt.Errorf("%w: %s", ErrTooManyDecimals, d.String())
	}
	exp := DefaultCurrency.Decimals
	if !d.Equal(d.Round(exp)) {
		return Money{}, fmt.Errorf("%w: %s", ErrTooManyDecimals, d.String())
	}
	shifted := d.Shift(exp)
	if shifted.GreaterThan(decimal.NewFromInt(math.MaxInt64)) ||
		shifted.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	return Money{amount: shifted.IntPart()}, nil
}

// Parse creates Money from its string representation, e.g. "100.50".
func Parse(s string) (Money, error) {
	if len(s) > maxInputLength {
		return Money{}, fmt.Errorf("%w: too long", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return New(d)
}

// Must is like Parse but panics on error. Intended for constants and tests.
func Must(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("money.Must(%q): %v", s, err))
	}
	return m
}

// NewFromSmallestUnit creates Money from centavos (used for DB hydration).
func NewFromSmallestUnit(amount int64) Money {
	return Money{amount: amount}
}

// Amount returns the amount in the smallest currency unit.
func (m Money) Amount() Amount {
	return m.amount
}

// Decimal returns the amount in the main currency unit.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amount, -DefaultCurrency.Decimals)
}

// Currency returns the currency of the value.
func (m Money) Currency() Currency {
	return DefaultCurrency
}

// Add returns the sum of m and other.
func (m Money) Add(other Money) (Money, error) {
	if (other.amount > 0 && m.amount > math.MaxInt64-other.amount) ||
		(other.amount < 0 && m.amount < math.MinInt64-other.amount) {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	return Money{amount: m.amount + other.amount}, nil
}

// Subtract returns m minus other. The result can be negative.
func (m Money) Subtract(other Money) (Money, error) {
	return m.Add(other.Negate())
}

// Negate returns -m.
func (m Money) Negate() Money {
	return Money{amount: -m.amount}
}

// Equals reports whether both values hold the same amount.
func (m Money) Equals(other Money) bool {
	return m.amount == other.amount
}

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.amount > other.amount
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) bool {
	return m.amount < other.amount
}

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsNegative reports whether the amount is less than zero.
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount == 0
}

// String returns the amount with the currency's fixed number of decimals,
// e.g. "70.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(DefaultCurrency.Decimals)
}

// MarshalJSON encodes the value as a JSON number with fixed decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
