// Package transaction defines the canonical transaction record produced by the import
// pipeline and the synthetic generator.
package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type classifies a transaction as money in or money out.
type Type string

const (
	TypeIncome  Type = "INCOME"
	TypeExpense Type = "EXPENSE"
)

// Valid reports whether t is one of the known transaction types.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is the canonical record. Zero values mean the field is absent:
// an invalid Value, an empty Type, a zero Date or an empty string.
// Type decides income versus expense; the sign of Value carries no meaning.
type Transaction struct {
	Value        decimal.NullDecimal
	Description  string
	Type         Type
	Date         time.Time
	Category     string
	SubCategory  string
	Account      string
	Bank         string
	Counterparty string
	OwnerID      uuid.UUID
	IsSynthetic  bool
}

// HasValue reports whether the record carries a parsed value.
func (t Transaction) HasValue() bool {
	return t.Value.Valid
}

// Magnitude returns the absolute value, or zero when absent.
func (t Transaction) Magnitude() decimal.Decimal {
	if !t.Value.Valid {
		return decimal.Zero
	}
	return t.Value.Decimal.Abs()
}
