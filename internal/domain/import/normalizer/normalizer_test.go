package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"comma decimal with period thousands", "1.234,56", "1234.56"},
		{"period decimal with comma thousands", "1,234.56", "1234.56"},
		{"lone comma is decimal", "45,9", "45.9"},
		{"plain integer", "1200", "1200"},
		{"repeated periods are thousands", "1.234.567", "1234567"},
		{"currency symbol", "R$ 1.234,56", "1234.56"},
		{"euro suffix", "12,50 €", "12.5"},
		{"negative", "-4,50", "-4.5"},
		{"negative with symbol", "-R$ 10,00", "-10"},
		{"accounting parentheses", "(300.00)", "-300"},
		{"trailing minus", "75,00-", "-75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseValue_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "12abc", "1-2", "--"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseValue(input)
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestDetectNumberFormat(t *testing.T) {
	tests := []struct {
		name    string
		samples []string
		want    NumberFormat
	}{
		{"comma decimals", []string{"1.234,56", "45,9", "1.000"}, CommaDecimal},
		{"point decimals", []string{"1,234.56", "12.5", "1,000"}, PointDecimal},
		{"real marker", []string{"R$ 1.000", "R$ 3.200"}, CommaDecimal},
		{"dollar marker", []string{"$1.000"}, PointDecimal},
		{"repeated periods group thousands", []string{"1.234.567"}, CommaDecimal},
		{"no evidence", []string{"1.000", "3.200", "150"}, NumberFormat{}},
		{"tie", []string{"1,5", "1.5"}, NumberFormat{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectNumberFormat(tt.samples))
		})
	}
}

func TestParseValueAs(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format NumberFormat
		want   string
		err    error
	}{
		{"comma grouping", "1.000", CommaDecimal, "1000", nil},
		{"comma full", "-R$ 2.500,00", CommaDecimal, "-2500", nil},
		{"comma plain", "3500", CommaDecimal, "3500", nil},
		{"point decimal in comma column", "12.5", CommaDecimal, "", ErrSeparatorMismatch},
		{"point layout in comma column", "1,234.56", CommaDecimal, "", ErrSeparatorMismatch},
		{"short group", "1.00,50", CommaDecimal, "", ErrSeparatorMismatch},
		{"point grouping", "1,000", PointDecimal, "1000", nil},
		{"point full", "(1,234.56)", PointDecimal, "-1234.56", nil},
		{"point reads lone period as decimal", "1.000", PointDecimal, "1", nil},
		{"comma layout in point column", "2.500,00", PointDecimal, "", ErrSeparatorMismatch},
		{"unknown format ambiguous", "3.200", NumberFormat{}, "", ErrAmbiguousValue},
		{"unknown format leading zero", "0.500", NumberFormat{}, "0.5", nil},
		{"unknown format unambiguous", "1.234,56", NumberFormat{}, "1234.56", nil},
		{"not a number", "abc", CommaDecimal, "", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValueAs(tt.input, tt.format)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDetectDateLayout(t *testing.T) {
	t.Run("day first wins when unambiguous sample present", func(t *testing.T) {
		layout := DetectDateLayout([]string{"01/02/2024", "25/02/2024"})
		assert.Equal(t, "02/01/2006", layout)
	})

	t.Run("month first when days exceed twelve", func(t *testing.T) {
		layout := DetectDateLayout([]string{"02/25/2024", "03/31/2024"})
		assert.Equal(t, "01/02/2006", layout)
	})

	t.Run("iso", func(t *testing.T) {
		assert.Equal(t, "2006-01-02", DetectDateLayout([]string{"2024-01-15"}))
	})

	t.Run("nothing parses", func(t *testing.T) {
		assert.Empty(t, DetectDateLayout([]string{"hello"}))
	})
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("15/01/2024", "02/01/2006")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2024-03-05 10:30:00", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("31/31/2024", "02/01/2006")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestTypeInferrer_Infer(t *testing.T) {
	ti := NewDefaultTypeInferrer()

	tests := []struct {
		input    string
		want     transaction.Type
		explicit bool
	}{
		{"Saída", transaction.TypeExpense, true},
		{"DESPESA FIXA", transaction.TypeExpense, true},
		{"debit card", transaction.TypeExpense, true},
		{"Entrada", transaction.TypeIncome, true},
		{"Receita", transaction.TypeIncome, true},
		// Anything without an outbound keyword is income, even when it is clearly not.
		{"transferência", transaction.TypeIncome, false},
		{"", transaction.TypeIncome, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, explicit := ti.Infer(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.explicit, explicit)
		})
	}
}
