// Package repository persists imported transactions and saved field mappings.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/mapping"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
)

// DBTX is the subset of pgxpool.Pool the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

var transactionColumns = []string{
	"owner_id", "value", "description", "type", "date", "category",
	"sub_category", "account", "bank", "counterparty", "is_synthetic",
}

// SavedMapping is a field mapping remembered for a file layout.
type SavedMapping struct {
	OwnerID           uuid.UUID
	LayoutFingerprint string
	Mapping           mapping.FieldMapping
	UseCount          int
	UpdatedAt         time.Time
}

// PostgresRepository implements transaction and mapping persistence on pgx.
type PostgresRepository struct {
	db       DBTX
	currency string
}

// NewPostgresRepository creates a repository. Summaries are reported in currency.
func NewPostgresRepository(db DBTX, currency string) *PostgresRepository {
	return &PostgresRepository{db: db, currency: currency}
}

// SaveTransactions bulk inserts a validated batch and returns its summary.
func (r *PostgresRepository) SaveTransactions(ctx context.Context, ownerID uuid.UUID, txs []transaction.Transaction) (*transaction.Summary, error) {
	rows := make([][]any, 0, len(txs))
	for _, tx := range txs {
		value, err := toNumeric(tx.Value)
		if err != nil {
			return nil, err
		}
		owner := tx.OwnerID
		if owner == uuid.Nil {
			owner = ownerID
		}
		rows = append(rows, []any{
			owner,
			value,
			nullText(tx.Description),
			nullText(string(tx.Type)),
			pgtype.Date{Time: tx.Date, Valid: !tx.Date.IsZero()},
			nullText(tx.Category),
			nullText(tx.SubCategory),
			nullText(tx.Account),
			nullText(tx.Bank),
			nullText(tx.Counterparty),
			tx.IsSynthetic,
		})
	}

	copied, err := r.db.CopyFrom(ctx, pgx.Identifier{"transactions"}, transactionColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return nil, fmt.Errorf("failed to copy transactions: %w", err)
	}
	if copied != int64(len(txs)) {
		return nil, fmt.Errorf("copied %d of %d transactions", copied, len(txs))
	}

	summary := transaction.Summarize(txs, r.currency)
	return &summary, nil
}

// ListTransactions returns the owner's most recent transactions, newest first.
func (r *PostgresRepository) ListTransactions(ctx context.Context, ownerID uuid.UUID, limit int) ([]transaction.Transaction, error) {
	query := `
		SELECT value::text, COALESCE(description, ''), COALESCE(type, ''), date,
			COALESCE(category, ''), COALESCE(sub_category, ''), COALESCE(account, ''),
			COALESCE(bank, ''), COALESCE(counterparty, ''), is_synthetic
		FROM transactions
		WHERE owner_id = $1
		ORDER BY date DESC NULLS LAST, created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []transaction.Transaction
	for rows.Next() {
		var (
			tx      transaction.Transaction
			value   *string
			txType  string
			txnDate *time.Time
		)
		if err := rows.Scan(
			&value, &tx.Description, &txType, &txnDate,
			&tx.Category, &tx.SubCategory, &tx.Account,
			&tx.Bank, &tx.Counterparty, &tx.IsSynthetic,
		); err != nil {
			return nil, err
		}

		if value != nil {
			d, err := decimal.NewFromString(*value)
			if err != nil {
				return nil, fmt.Errorf("stored value %q: %w", *value, err)
			}
			tx.Value = decimal.NewNullDecimal(d)
		}
		if txnDate != nil {
			tx.Date = *txnDate
		}
		tx.Type = transaction.Type(txType)
		tx.OwnerID = ownerID
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// SaveMapping remembers the mapping used for a file layout.
func (r *PostgresRepository) SaveMapping(ctx context.Context, ownerID uuid.UUID, fingerprint string, m mapping.FieldMapping) error {
	columns, err := json.Marshal(m.Columns)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO field_mappings (owner_id, layout_fingerprint, columns, confidence)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, layout_fingerprint) DO UPDATE SET
			columns = EXCLUDED.columns,
			confidence = EXCLUDED.confidence,
			use_count = field_mappings.use_count + 1,
			updated_at = now()
	`
	if _, err := r.db.Exec(ctx, query, ownerID, fingerprint, columns, m.Confidence); err != nil {
		return fmt.Errorf("failed to save mapping: %w", err)
	}
	return nil
}

// GetMapping returns the saved mapping for a layout, or nil when none exists.
func (r *PostgresRepository) GetMapping(ctx context.Context, ownerID uuid.UUID, fingerprint string) (*SavedMapping, error) {
	query := `
		SELECT columns, confidence, use_count, updated_at
		FROM field_mappings
		WHERE owner_id = $1 AND layout_fingerprint = $2
	`

	saved := SavedMapping{OwnerID: ownerID, LayoutFingerprint: fingerprint}
	var columns []byte
	err := r.db.QueryRow(ctx, query, ownerID, fingerprint).Scan(
		&columns, &saved.Mapping.Confidence, &saved.UseCount, &saved.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mapping: %w", err)
	}

	if err := json.Unmarshal(columns, &saved.Mapping.Columns); err != nil {
		return nil, fmt.Errorf("stored mapping: %w", err)
	}
	return &saved, nil
}

func toNumeric(v decimal.NullDecimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if !v.Valid {
		return n, nil
	}
	if err := n.Scan(v.Decimal.String()); err != nil {
		return n, fmt.Errorf("value %s: %w", v.Decimal, err)
	}
	return n, nil
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
