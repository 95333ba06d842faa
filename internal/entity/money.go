package entity

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Money is a decimal amount with its currency code. Amounts cross the wire
// as decimal strings ("29.95") and are rendered with exactly two decimals.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode,omitempty"`
}

// NewMoney parses a decimal-string amount.
func NewMoney(amount, currencyCode string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, errors.Wrapf(err, "invalid amount %q", amount)
	}
	return Money{Amount: d, CurrencyCode: currencyCode}, nil
}

// MustMoney is NewMoney for statically known amounts. Panics on a bad amount.
func MustMoney(amount, currencyCode string) Money {
	m, err := NewMoney(amount, currencyCode)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns "0.00" in the given currency.
func ZeroMoney(currencyCode string) Money {
	return Money{Amount: decimal.Zero, CurrencyCode: currencyCode}
}

func (m Money) Add(o Money) Money {
	cur := m.CurrencyCode
	if cur == "" {
		cur = o.CurrencyCode
	}
	return Money{Amount: m.Amount.Add(o.Amount), CurrencyCode: cur}
}

func (m Money) Sub(o Money) Money {
	return Money{Amount: m.Amount.Sub(o.Amount), CurrencyCode: m.CurrencyCode}
}

// Mul multiplies by an integer quantity.
func (m Money) Mul(qty int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(qty))), CurrencyCode: m.CurrencyCode}
}

// Div divides by an integer quantity. The caller guarantees qty != 0.
func (m Money) Div(qty int) Money {
	return Money{Amount: m.Amount.Div(decimal.NewFromInt(int64(qty))), CurrencyCode: m.CurrencyCode}
}

// Round2 rounds to two decimal places, half away from zero.
func (m Money) Round2() Money {
	return Money{Amount: m.Amount.Round(2), CurrencyCode: m.CurrencyCode}
}

func (m Money) IsZero() bool { return m.Amount.IsZero() }

// Sign reports -1, 0, or 1.
func (m Money) Sign() int { return m.Amount.Sign() }

func (m Money) GreaterThan(o Money) bool { return m.Amount.GreaterThan(o.Amount) }

// String renders the amount with exactly two decimals, e.g. "10.00".
func (m Money) String() string { return m.Amount.StringFixed(2) }
