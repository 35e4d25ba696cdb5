package transaction

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format of the canonical CSV.
const DateLayout = "2006-01-02"

// csvRecord is one row of the canonical CSV export.
type csvRecord struct {
	Date         string `csv:"date"`
	Type         string `csv:"type"`
	Value        string `csv:"value"`
	Description  string `csv:"description"`
	Category     string `csv:"category"`
	SubCategory  string `csv:"sub_category"`
	Account      string `csv:"account"`
	Bank         string `csv:"bank"`
	Counterparty string `csv:"counterparty"`
	OwnerID      string `csv:"owner_id"`
	IsSynthetic  bool   `csv:"is_synthetic"`
}

// WriteCSV writes txs with a header row. Values use a period decimal separator.
func WriteCSV(w io.Writer, txs []Transaction) error {
	records := make([]*csvRecord, 0, len(txs))
	for _, tx := range txs {
		rec := &csvRecord{
			Type:         string(tx.Type),
			Description:  tx.Description,
			Category:     tx.Category,
			SubCategory:  tx.SubCategory,
			Account:      tx.Account,
			Bank:         tx.Bank,
			Counterparty: tx.Counterparty,
			IsSynthetic:  tx.IsSynthetic,
		}
		if tx.Value.Valid {
			rec.Value = tx.Value.Decimal.StringFixed(2)
		}
		if !tx.Date.IsZero() {
			rec.Date = tx.Date.Format(DateLayout)
		}
		if tx.OwnerID != uuid.Nil {
			rec.OwnerID = tx.OwnerID.String()
		}
		records = append(records, rec)
	}

	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("failed to write transactions csv: %w", err)
	}
	return nil
}

// ReadCSV parses a canonical CSV, as written by WriteCSV, into transactions.
func ReadCSV(r io.Reader) ([]Transaction, error) {
	var records []*csvRecord
	if err := gocsv.UnmarshalCSV(gocsv.LazyCSVReader(r), &records); err != nil {
		return nil, fmt.Errorf("failed to read transactions csv: %w", err)
	}

	out := make([]Transaction, 0, len(records))
	for i, rec := range records {
		tx, err := rec.transaction()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func (rec *csvRecord) transaction() (Transaction, error) {
	tx := Transaction{
		Type:         Type(strings.ToUpper(strings.TrimSpace(rec.Type))),
		Description:  strings.TrimSpace(rec.Description),
		Category:     strings.TrimSpace(rec.Category),
		SubCategory:  strings.TrimSpace(rec.SubCategory),
		Account:      strings.TrimSpace(rec.Account),
		Bank:         strings.TrimSpace(rec.Bank),
		Counterparty: strings.TrimSpace(rec.Counterparty),
		IsSynthetic:  rec.IsSynthetic,
	}
	if tx.Type != "" && !tx.Type.Valid() {
		return Transaction{}, fmt.Errorf("unknown transaction type %q", rec.Type)
	}
	if v := strings.TrimSpace(rec.Value); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return Transaction{}, fmt.Errorf("invalid value %q: %w", v, err)
		}
		tx.Value = decimal.NewNullDecimal(d)
	}
	if d := strings.TrimSpace(rec.Date); d != "" {
		parsed, err := time.Parse(DateLayout, d)
		if err != nil {
			return Transaction{}, fmt.Errorf("invalid date %q: %w", d, err)
		}
		tx.Date = parsed
	}
	if o := strings.TrimSpace(rec.OwnerID); o != "" {
		id, err := uuid.Parse(o)
		if err != nil {
			return Transaction{}, fmt.Errorf("invalid owner id %q: %w", o, err)
		}
		tx.OwnerID = id
	}
	return tx, nil
}
