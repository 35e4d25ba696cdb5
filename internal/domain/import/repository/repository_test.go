package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/mapping"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
)

func sampleTransactions(owner uuid.UUID) []transaction.Transaction {
	return []transaction.Transaction{
		{
			Value:       decimal.NewNullDecimal(decimal.RequireFromString("1500.00")),
			Description: "Salário",
			Type:        transaction.TypeIncome,
			Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			OwnerID:     owner,
		},
		{
			Value:       decimal.NewNullDecimal(decimal.RequireFromString("-42.50")),
			Description: "Mercado",
			Type:        transaction.TypeExpense,
			Category:    "Alimentação",
		},
	}
}

func TestSaveTransactions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	owner := uuid.New()
	mock.ExpectCopyFrom(pgx.Identifier{"transactions"}, transactionColumns).WillReturnResult(2)

	repo := NewPostgresRepository(mock, "BRL")
	summary, err := repo.SaveTransactions(context.Background(), owner, sampleTransactions(owner))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.IncomeCount)
	assert.Equal(t, 1, summary.ExpenseCount)
	assert.True(t, summary.TotalValue.Equal(decimal.RequireFromString("1542.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveTransactions_CopyFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"transactions"}, transactionColumns).WillReturnError(errors.New("disk full"))

	repo := NewPostgresRepository(mock, "BRL")
	_, err = repo.SaveTransactions(context.Background(), uuid.New(), sampleTransactions(uuid.New()))
	assert.ErrorContains(t, err, "disk full")
}

func TestListTransactions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	owner := uuid.New()
	value := "-42.50"
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM transactions`).
		WithArgs(owner, 10).
		WillReturnRows(pgxmock.NewRows([]string{
			"value", "description", "type", "date", "category",
			"sub_category", "account", "bank", "counterparty", "is_synthetic",
		}).AddRow(
			&value, "Mercado", "EXPENSE", &day, "Alimentação",
			"", "", "", "", false,
		).AddRow(
			nil, "Sem valor", "", nil, "",
			"", "", "", "", true,
		))

	repo := NewPostgresRepository(mock, "BRL")
	txs, err := repo.ListTransactions(context.Background(), owner, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.True(t, txs[0].Value.Decimal.Equal(decimal.RequireFromString("-42.50")))
	assert.Equal(t, transaction.TypeExpense, txs[0].Type)
	assert.Equal(t, day, txs[0].Date)
	assert.Equal(t, owner, txs[0].OwnerID)

	assert.False(t, txs[1].HasValue())
	assert.True(t, txs[1].Date.IsZero())
	assert.True(t, txs[1].IsSynthetic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMapping(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	owner := uuid.New()
	m := mapping.FieldMapping{
		Columns:    map[mapping.Field]string{mapping.FieldValue: "Valor"},
		Confidence: 1.0,
	}

	mock.ExpectExec(`INSERT INTO field_mappings`).
		WithArgs(owner, "abc", []byte(`{"value":"Valor"}`), 1.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewPostgresRepository(mock, "BRL")
	require.NoError(t, repo.SaveMapping(context.Background(), owner, "abc", m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMapping(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	owner := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM field_mappings`).
		WithArgs(owner, "abc").
		WillReturnRows(pgxmock.NewRows([]string{"columns", "confidence", "use_count", "updated_at"}).
			AddRow([]byte(`{"value":"Valor","date":"Data"}`), 0.5, 3, now))

	repo := NewPostgresRepository(mock, "BRL")
	saved, err := repo.GetMapping(context.Background(), owner, "abc")
	require.NoError(t, err)
	require.NotNil(t, saved)

	col, ok := saved.Mapping.Column(mapping.FieldDate)
	assert.True(t, ok)
	assert.Equal(t, "Data", col)
	assert.Equal(t, 3, saved.UseCount)
	assert.Equal(t, 0.5, saved.Mapping.Confidence)
}

func TestGetMapping_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM field_mappings`).
		WithArgs(pgxmock.AnyArg(), "missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock, "BRL")
	saved, err := repo.GetMapping(context.Background(), uuid.New(), "missing")
	require.NoError(t, err)
	assert.Nil(t, saved)
}
