package synthetic

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/normalizer"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func tx(v string, t transaction.Type, category string) transaction.Transaction {
	return transaction.Transaction{
		Value:    decimal.NewNullDecimal(decimal.RequireFromString(v)),
		Type:     t,
		Category: category,
	}
}

func newTemplates(t *testing.T) *TemplateIndex {
	t.Helper()
	ti, err := NewTemplateIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ti.Close() })
	return ti
}

func TestExtractor_Empty(t *testing.T) {
	got := NewExtractor(0).Extract(nil)

	assert.Equal(t, DefaultProfile(), got)
	assert.Equal(t, 0.75, got.TypeRatio.Expense)
	assert.Equal(t, 0.25, got.TypeRatio.Income)
}

func TestExtractor_Extract(t *testing.T) {
	history := []transaction.Transaction{
		tx("-100", transaction.TypeExpense, "Mercado"),
		tx("200", transaction.TypeExpense, "Mercado"),
		tx("300", transaction.TypeExpense, "Farmácia"),
		tx("5000", transaction.TypeIncome, "Salário"),
	}

	got := NewExtractor(10).Extract(history)

	assert.Equal(t, TypeRatio{Expense: 0.75, Income: 0.25}, got.TypeRatio)
	assert.Equal(t, 4, got.SampleSize)

	stats := got.ValueStats
	assert.Equal(t, 3, stats.Observed)
	assert.InDelta(t, 200, stats.Mean, 1e-9)
	assert.InDelta(t, 81.6497, stats.StdDev, 1e-4)
	assert.Equal(t, 100.0, stats.Min)
	assert.Equal(t, 300.0, stats.Max)
	assert.InDelta(t, 150, stats.P25, 1e-9)
	assert.InDelta(t, 200, stats.P50, 1e-9)
	assert.InDelta(t, 250, stats.P75, 1e-9)

	assert.Equal(t, []CategoryCount{
		{Category: "Mercado", Count: 2},
		{Category: "Farmácia", Count: 1},
		{Category: "Salário", Count: 1},
	}, got.Categories)
}

func TestExtractor_IncomeOnlyUsesAllValues(t *testing.T) {
	got := NewExtractor(10).Extract([]transaction.Transaction{
		tx("1000", transaction.TypeIncome, ""),
		tx("3000", transaction.TypeIncome, ""),
	})

	assert.Equal(t, TypeRatio{Expense: 0, Income: 1}, got.TypeRatio)
	assert.InDelta(t, 2000, got.ValueStats.Mean, 1e-9)
	assert.Empty(t, got.Categories)
}

func TestExtractor_UntypedHistoryKeepsDefaultRatio(t *testing.T) {
	got := NewExtractor(10).Extract([]transaction.Transaction{{Description: "x"}})

	assert.Equal(t, DefaultTypeRatio(), got.TypeRatio)
	assert.Equal(t, DefaultValueStats(), got.ValueStats)
}

func TestExtractor_TruncatesCategories(t *testing.T) {
	var history []transaction.Transaction
	for i := 0; i < 12; i++ {
		history = append(history, tx("10", transaction.TypeExpense, fmt.Sprintf("cat-%02d", i)))
	}
	history = append(history, tx("10", transaction.TypeExpense, "cat-11"))

	got := NewExtractor(10).Extract(history)

	require.Len(t, got.Categories, 10)
	assert.Equal(t, "cat-11", got.Categories[0].Category)
	assert.Equal(t, "cat-00", got.Categories[1].Category)
}

func TestGenerator_Generate(t *testing.T) {
	owner := uuid.New()
	g := NewGenerator(42, newTemplates(t), WithClock(clock))

	got, err := g.Generate(nil, Request{Count: 100, OwnerID: owner})
	require.NoError(t, err)
	require.Len(t, got, 100)

	limit := decimal.NewFromInt(10000)
	// A payday snap can move the oldest draws back within their month.
	oldest := fixedNow.AddDate(0, 0, -366-31)
	for _, r := range got {
		assert.True(t, r.IsSynthetic)
		assert.True(t, r.Type.Valid())
		assert.True(t, r.Value.Valid)
		assert.True(t, r.Value.Decimal.LessThanOrEqual(limit))
		assert.True(t, r.Value.Decimal.GreaterThanOrEqual(decimal.NewFromInt(10)))
		assert.True(t, r.Value.Decimal.Equal(r.Value.Decimal.Round(2)))
		assert.Equal(t, owner, r.OwnerID)
		assert.NotEmpty(t, r.Description)
		assert.NotEmpty(t, r.Category)
		assert.Contains(t, r.Account, " - "+r.Bank)
		assert.False(t, r.Date.After(fixedNow))
		assert.True(t, r.Date.After(oldest))
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	templates := newTemplates(t)
	a, err := NewGenerator(7, templates, WithClock(clock)).Generate(nil, Request{Count: 50})
	require.NoError(t, err)
	b, err := NewGenerator(7, templates, WithClock(clock)).Generate(nil, Request{Count: 50})
	require.NoError(t, err)
	c, err := NewGenerator(8, templates, WithClock(clock)).Generate(nil, Request{Count: 50})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerator_Count(t *testing.T) {
	g := NewGenerator(1, nil, WithClock(clock), WithMaxCount(10))

	got, err := g.Generate(nil, Request{Count: 0})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = g.Generate(nil, Request{Count: -1})
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = g.Generate(nil, Request{Count: 11})
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func skewedProfile() *Profile {
	return &Profile{
		TypeRatio:  TypeRatio{Expense: 0, Income: 1},
		ValueStats: ValueStats{Mean: 9000, StdDev: 10, Observed: 50},
		Categories: []CategoryCount{{Category: "Criptomoedas", Count: 50}},
	}
}

func TestGenerator_IgnoresProfileWithoutPatterns(t *testing.T) {
	const n = 5000
	templates := newTemplates(t)

	withProfile, err := NewGenerator(99, templates, WithClock(clock)).
		Generate(skewedProfile(), Request{Count: n, IgnorePatterns: true})
	require.NoError(t, err)
	defaults, err := NewGenerator(99, templates, WithClock(clock)).
		Generate(nil, Request{Count: n})
	require.NoError(t, err)

	assert.Equal(t, defaults, withProfile)

	var expenses int
	var expenseSum float64
	for _, r := range withProfile {
		assert.NotEqual(t, "Criptomoedas", r.Category)
		if r.Type == transaction.TypeExpense {
			expenses++
			expenseSum += r.Value.Decimal.InexactFloat64()
		}
	}
	assert.InDelta(t, 0.75, float64(expenses)/n, 0.03)
	// 0.8 * E[max(N(200,150),10)] + 0.2 * E[max(N(1200,400),500)] is about 407.
	assert.InDelta(t, 407, expenseSum/float64(expenses), 30)
}

func TestGenerator_UsesProfile(t *testing.T) {
	const n = 2000
	got, err := NewGenerator(5, nil, WithClock(clock)).
		Generate(skewedProfile(), Request{Count: n})
	require.NoError(t, err)

	fromProfile := 0
	for _, r := range got {
		assert.Equal(t, transaction.TypeIncome, r.Type)
		if r.Category == "Criptomoedas" {
			fromProfile++
		}
	}
	assert.InDelta(t, 0.6, float64(fromProfile)/n, 0.05)
}

func TestExpenseRegimes(t *testing.T) {
	small, large := expenseRegimes(DefaultValueStats())
	assert.Equal(t, expenseSmall, small, "unobserved stats keep defaults")
	assert.Equal(t, expenseLarge, large)

	small, large = expenseRegimes(ValueStats{Mean: 90, StdDev: 30, Observed: 10})
	assert.Equal(t, regime{mean: 90, stddev: 30, floor: 10}, small)
	assert.Equal(t, expenseLarge, large)

	small, large = expenseRegimes(ValueStats{Mean: 2500, StdDev: 0, Observed: 1})
	assert.Equal(t, expenseSmall, small)
	assert.Equal(t, regime{mean: 2500, stddev: 400, floor: 500}, large)

	small, large = expenseRegimes(ValueStats{Mean: 40, StdDev: 1})
	assert.Equal(t, regime{mean: 40, stddev: 1, floor: 10}, small, "stats without an observation count still apply")
	assert.Equal(t, expenseLarge, large)

	small, large = expenseRegimes(ValueStats{})
	assert.Equal(t, expenseSmall, small)
	assert.Equal(t, expenseLarge, large)
}

func TestGenerator_UsesSuppliedValueStats(t *testing.T) {
	const n = 2000
	profile := &Profile{
		TypeRatio:  TypeRatio{Expense: 1, Income: 0},
		ValueStats: ValueStats{Mean: 40, StdDev: 1},
	}

	got, err := NewGenerator(21, nil, WithClock(clock)).Generate(profile, Request{Count: n})
	require.NoError(t, err)

	var small int
	for _, r := range got {
		require.Equal(t, transaction.TypeExpense, r.Type)
		v := r.Value.Decimal.InexactFloat64()
		if v < 500 {
			assert.InDelta(t, 40, v, 10)
			small++
		}
	}
	assert.InDelta(t, smallRegimeShare, float64(small)/n, 0.05)
}

func TestDescribe(t *testing.T) {
	f := gofakeit.New(3)
	templates := newTemplates(t)

	assert.Equal(t, "Transação Lazer - Alto Valor", describe(f, nil, "Lazer", 1500))
	assert.Equal(t, "Transação Lazer - Pequena Compra", describe(f, nil, "Lazer", 20))
	assert.Equal(t, "Transação Lazer", describe(f, templates, "Lazer", 200))

	got := describe(f, templates, "Alimentação", 200)
	assert.NotContains(t, got, "{")
	assert.NotContains(t, got, "Transação")
}

func TestTemplateIndex_Lookup(t *testing.T) {
	ti := newTemplates(t)

	tests := []struct {
		category string
		want     string
		found    bool
	}{
		{"Alimentação", "Feira Livre", true},
		{"alimentacao", "Feira Livre", true},
		{"Supermercados", "Feira Livre", true},
		{"salario", "13º Salário", true},
		{"Lazer", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got, ok := ti.Lookup(tt.category)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Contains(t, got, tt.want)
			}
		})
	}
}

func TestGenerator_GenerateSIOG(t *testing.T) {
	ds, err := NewGenerator(11, nil, WithClock(clock)).GenerateSIOG(25)
	require.NoError(t, err)

	assert.Equal(t, SIOGHeader, ds.Names())
	assert.Equal(t, 25, ds.RowCount())

	values := ds.Column(ds.ColumnIndex("vl_original"))
	descs := ds.Column(ds.ColumnIndex("complemento"))
	for i := range values {
		assert.Contains(t, values[i].Value, ",")
		v, err := normalizer.ParseValue(values[i].Value)
		require.NoError(t, err)
		assert.True(t, v.GreaterThanOrEqual(decimal.NewFromInt(50)))
		assert.True(t, v.LessThanOrEqual(decimal.NewFromInt(8000)))
		assert.True(t, strings.Contains(descs[i].Value, " REF "))
	}
}
