// Package money keeps batch totals in integer minor units so that summing many
// imported values never drifts, and formats them for display.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// BRL is the currency of the statements this module imports by default.
const BRL = "BRL"

// Money is an amount in a single currency.
type Money struct {
	m *money.Money
}

// New creates Money from minor units (cents).
func New(minor int64, currencyCode string) *Money {
	return &Money{m: money.New(minor, currencyCode)}
}

// NewFromDecimal rounds amount to the currency's minor unit.
// Unknown currency codes are treated as two-decimal currencies.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	return New(amount.Mul(decimal.New(1, fraction(currencyCode))).Round(0).IntPart(), currencyCode)
}

// Zero returns an empty amount in the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Sum adds decimal amounts in one currency.
func Sum(amounts []decimal.Decimal, currencyCode string) *Money {
	total := Zero(currencyCode)
	for _, a := range amounts {
		total = total.MustAdd(NewFromDecimal(a, currencyCode))
	}
	return total
}

// Amount returns the value in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero reports whether the amount is zero.
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// Add returns m + other. Currencies must match.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}
	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// MustAdd is Add for callers that already hold a single currency.
func (m *Money) MustAdd(other *Money) *Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Display formats the amount with its currency symbol, e.g. "R$1.234,56".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "0.00"
	}
	return m.m.Display()
}

// String returns the plain decimal amount, e.g. "1234.56".
func (m *Money) String() string {
	return m.ToDecimal().StringFixed(fraction(m.Currency()))
}

// ToDecimal converts minor units back to a decimal amount.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.New(m.m.Amount(), -fraction(m.Currency()))
}

func fraction(code string) int32 {
	if c := money.GetCurrency(code); c != nil {
		return int32(c.Fraction)
	}
	return 2
}
