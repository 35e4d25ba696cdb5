package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
)

func TestParseOwner(t *testing.T) {
	id, err := parseOwner("")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	want := uuid.New()
	id, err = parseOwner(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, id)

	_, err = parseOwner("not-a-uuid")
	assert.ErrorContains(t, err, "invalid -owner")
}

func TestParseMapping(t *testing.T) {
	m, err := parseMapping(`{"value":"Valor","date":"Data"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"value": "Valor", "date": "Data"}, m)

	m, err = parseMapping("")
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = parseMapping("{")
	assert.ErrorContains(t, err, "invalid -mapping")
}

func TestNewLogger(t *testing.T) {
	assert.True(t, newLogger("debug").Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, newLogger("warn").Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, newLogger("bogus").Enabled(context.Background(), slog.LevelInfo))
}

func TestReadHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	var buf bytes.Buffer
	require.NoError(t, transaction.WriteCSV(&buf, []transaction.Transaction{
		{Description: "Mercado", Type: transaction.TypeExpense, Category: "Alimentação"},
	}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	txs, err := readHistory(path)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Alimentação", txs[0].Category)

	_, err = readHistory(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
