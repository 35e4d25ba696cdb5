// Package converter turns cleaned rows into canonical transactions and validates
// the resulting batch.
package converter

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/mapping"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/normalizer"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
)

// dateSampleSize bounds how many values are inspected to pick a date layout.
const dateSampleSize = 50

// FieldError is a value in a row that could not be coerced.
type FieldError struct {
	Row   int
	Field mapping.Field
	Raw   string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("row %d, field %s: %v", e.Row, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Candidate is a converted row awaiting validation.
type Candidate struct {
	// Row is the 1-based position in the cleaned dataset.
	Row         int
	Transaction transaction.Transaction
	// RawValue keeps the source text of a value that failed to parse.
	RawValue string
	Errors   []*FieldError
}

// Converter applies a field mapping to dataset rows.
type Converter struct {
	types *normalizer.TypeInferrer
	// fallback is the number format for value columns that carry no evidence.
	fallback normalizer.NumberFormat
}

// NewConverter uses types to read the type column; nil selects the default vocabulary.
func NewConverter(types *normalizer.TypeInferrer) *Converter {
	if types == nil {
		types = normalizer.NewDefaultTypeInferrer()
	}
	return &Converter{types: types}
}

// WithCurrency reads value columns without separator evidence in the customary
// format of currency, so "1.000" is a thousand reais under BRL.
func (c *Converter) WithCurrency(code string) *Converter {
	c.fallback = normalizer.FormatForCurrency(code)
	return c
}

// columnFormats are detected once per dataset and applied to every row.
type columnFormats struct {
	date   string
	number normalizer.NumberFormat
}

type columnIndex map[mapping.Field]int

// Convert produces one candidate per row. Unmapped fields stay absent and coercion
// failures are recorded on the candidate instead of being defaulted.
func (c *Converter) Convert(ds *dataset.Dataset, m mapping.FieldMapping, ownerID uuid.UUID) []Candidate {
	idx := make(columnIndex)
	for _, f := range mapping.Fields {
		if col, ok := m.Column(f); ok {
			if i := ds.ColumnIndex(col); i >= 0 {
				idx[f] = i
			}
		}
	}

	var formats columnFormats
	if i, ok := idx[mapping.FieldDate]; ok {
		formats.date = normalizer.DetectDateLayout(columnSamples(ds.Column(i), dateSampleSize))
	}
	if i, ok := idx[mapping.FieldValue]; ok {
		formats.number = normalizer.DetectNumberFormat(columnSamples(ds.Column(i), ds.RowCount()))
	}
	if formats.number.IsZero() {
		formats.number = c.fallback
	}

	out := make([]Candidate, 0, ds.RowCount())
	for r := 0; r < ds.RowCount(); r++ {
		out = append(out, c.convertRow(ds.Row(r), r+1, idx, formats, ownerID))
	}
	return out
}

func (c *Converter) convertRow(row []dataset.Cell, rowNum int, idx columnIndex, formats columnFormats, ownerID uuid.UUID) Candidate {
	cand := Candidate{Row: rowNum, Transaction: transaction.Transaction{OwnerID: ownerID}}
	tx := &cand.Transaction

	cell := func(f mapping.Field) (string, bool) {
		i, ok := idx[f]
		if !ok || row[i].IsNull() {
			return "", false
		}
		return row[i].Value, true
	}
	text := func(f mapping.Field) string {
		v, _ := cell(f)
		return strings.TrimSpace(v)
	}

	if raw, ok := cell(mapping.FieldValue); ok {
		v, err := normalizer.ParseValueAs(raw, formats.number)
		if err != nil {
			cand.RawValue = raw
			cand.Errors = append(cand.Errors, &FieldError{Row: rowNum, Field: mapping.FieldValue, Raw: raw, Err: err})
		} else {
			tx.Value = decimal.NewNullDecimal(v)
		}
	}

	if raw, ok := cell(mapping.FieldDate); ok {
		d, err := normalizer.ParseDate(raw, formats.date)
		if err != nil {
			cand.Errors = append(cand.Errors, &FieldError{Row: rowNum, Field: mapping.FieldDate, Raw: raw, Err: err})
		} else {
			tx.Date = d
		}
	}

	if raw, ok := cell(mapping.FieldType); ok {
		tx.Type, _ = c.types.Infer(raw)
	}

	tx.Description = text(mapping.FieldDescription)
	tx.Category = text(mapping.FieldCategory)
	tx.SubCategory = text(mapping.FieldSubCategory)
	tx.Account = text(mapping.FieldAccount)
	tx.Bank = text(mapping.FieldBank)
	tx.Counterparty = text(mapping.FieldCounterparty)

	return cand
}

// Transactions extracts the records from candidates.
func Transactions(cands []Candidate) []transaction.Transaction {
	out := make([]transaction.Transaction, len(cands))
	for i, c := range cands {
		out[i] = c.Transaction
	}
	return out
}

func columnSamples(cells []dataset.Cell, n int) []string {
	out := make([]string, 0, n)
	for _, c := range cells {
		if c.IsNull() {
			continue
		}
		out = append(out, c.Value)
		if len(out) == n {
			break
		}
	}
	return out
}
