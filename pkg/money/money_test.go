package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     int64
	}{
		{"precise decimal", "123.45", BRL, 12345},
		{"rounds half up", "99.995", BRL, 10000},
		{"whole number", "500", "EUR", 50000},
		{"negative", "-25.50", "USD", -2550},
		{"unknown currency keeps cents", "1.25", "XYZ", 125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFromDecimal(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestAdd(t *testing.T) {
	t.Run("same currency", func(t *testing.T) {
		sum, err := New(1050, BRL).Add(New(250, BRL))
		require.NoError(t, err)
		assert.Equal(t, int64(1300), sum.Amount())
	})

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := New(1050, BRL).Add(New(250, "EUR"))
		assert.Error(t, err)
	})

	t.Run("nil receiver", func(t *testing.T) {
		var m *Money
		sum, err := m.Add(New(10, BRL))
		require.NoError(t, err)
		assert.Equal(t, int64(10), sum.Amount())
	})
}

func TestSum(t *testing.T) {
	total := Sum([]decimal.Decimal{
		decimal.RequireFromString("0.10"),
		decimal.RequireFromString("0.20"),
		decimal.RequireFromString("1234.26"),
	}, BRL)

	assert.Equal(t, int64(123456), total.Amount())
	assert.True(t, decimal.RequireFromString("1234.56").Equal(total.ToDecimal()))
	assert.Equal(t, "1234.56", total.String())
	assert.Contains(t, total.Display(), "1.234,56")
}

func TestZero(t *testing.T) {
	z := Zero("EUR")
	assert.True(t, z.IsZero())
	assert.Equal(t, "EUR", z.Currency())
}
