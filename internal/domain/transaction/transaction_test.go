package transaction

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		{Value: value("-100.10"), Type: TypeExpense},
		{Value: value("50.05"), Type: TypeExpense},
		{Value: value("2000"), Type: TypeIncome},
		{Type: TypeIncome},
	}

	s := Summarize(txs, "BRL")

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.ExpenseCount)
	assert.Equal(t, 2, s.IncomeCount)
	assert.Equal(t, "150.15", s.ExpenseTotal.StringFixed(2))
	assert.Equal(t, "2000.00", s.IncomeTotal.StringFixed(2))
	assert.Equal(t, "2150.15", s.TotalValue.StringFixed(2))
	assert.Contains(t, s.Display, "2.150,15")
}

func TestCSVRoundTrip(t *testing.T) {
	owner := uuid.New()
	txs := []Transaction{
		{
			Value:       value("1234.5"),
			Description: "Aluguel Residencial",
			Type:        TypeExpense,
			Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Category:    "Moradia",
			Account:     "Conta Digital - Nubank",
			Bank:        "Nubank",
			OwnerID:     owner,
			IsSynthetic: true,
		},
		{Description: "sem valor", Type: TypeIncome},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txs))
	assert.True(t, strings.HasPrefix(buf.String(), "date,type,value,description,"))
	assert.Contains(t, buf.String(), "1234.50")

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.True(t, txs[0].Value.Decimal.Equal(got[0].Value.Decimal))
	got[0].Value = txs[0].Value
	assert.Equal(t, txs[0], got[0])
	assert.False(t, got[1].Value.Valid)
	assert.True(t, got[1].Date.IsZero())
}

func TestReadCSV_RejectsUnknownType(t *testing.T) {
	in := "date,type,value,description\n2024-01-01,TRANSFER,1.00,x\n"
	_, err := ReadCSV(strings.NewReader(in))
	assert.ErrorContains(t, err, "row 2")
}
