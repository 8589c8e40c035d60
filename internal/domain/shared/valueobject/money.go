package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency used when none is specified
const DefaultCurrency = "MAD"

// Money represents a monetary amount with a currency
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney creates a new money value
func NewMoney(amount decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount, Currency: currency}
}

// NewMoneyFromFloat creates a money value from a float amount
func NewMoneyFromFloat(amount float64, currency string) Money {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// ZeroMoney returns a zero amount in the given currency
func ZeroMoney(currency string) Money {
	return NewMoney(decimal.Zero, currency)
}

// Add adds another money value of the same currency
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub subtracts another money value of the same currency
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// MulRatio multiplies the amount by a decimal ratio
func (m Money) MulRatio(ratio decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(ratio).Round(2), Currency: m.Currency}
}

// IsZero reports whether the amount is zero
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// IsNegative reports whether the amount is negative
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// String returns a human-readable representation
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}
