// Package mapping proposes and checks the assignment of source columns to canonical
// transaction fields.
package mapping

import (
	"math"
	"strings"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/analyzer"
)

// Field is a canonical transaction attribute.
type Field string

const (
	FieldValue        Field = "value"
	FieldDescription  Field = "description"
	FieldDate         Field = "date"
	FieldType         Field = "type"
	FieldCategory     Field = "category"
	FieldSubCategory  Field = "sub_category"
	FieldAccount      Field = "account"
	FieldBank         Field = "bank"
	FieldCounterparty Field = "counterparty"
)

// Fields lists every canonical field in a stable order.
var Fields = []Field{
	FieldValue, FieldDescription, FieldDate, FieldType, FieldCategory,
	FieldSubCategory, FieldAccount, FieldBank, FieldCounterparty,
}

// Valid reports whether f is a canonical field.
func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// FieldMapping assigns source columns to canonical fields. Fields missing from
// Columns are unavailable.
type FieldMapping struct {
	Columns    map[Field]string `json:"columns"`
	Confidence float64          `json:"confidence"`
}

// Column returns the source column for f.
func (m FieldMapping) Column(f Field) (string, bool) {
	col, ok := m.Columns[f]
	return col, ok && col != ""
}

// Len returns the number of populated fields.
func (m FieldMapping) Len() int {
	n := 0
	for _, col := range m.Columns {
		if col != "" {
			n++
		}
	}
	return n
}

// Confidence is populated fields over source columns, capped at 1.
// A dataset without columns has zero confidence.
func Confidence(populated, columns int) float64 {
	if columns <= 0 {
		return 0
	}
	return math.Min(1, float64(populated)/float64(columns))
}

// SIOGColumns is the fixed layout of SIOG exports.
var SIOGColumns = map[Field]string{
	FieldValue:        "vl_original",
	FieldDescription:  "complemento",
	FieldDate:         "dt_emissao",
	FieldType:         "tipo_lancamento",
	FieldCategory:     "nm_natureza",
	FieldSubCategory:  "sub_natureza",
	FieldAccount:      "conta",
	FieldBank:         "banco",
	FieldCounterparty: "cliente_fornecedor",
}

type fieldKeywords struct {
	field    Field
	keywords []string
}

// keywordPriority is the order in which fields claim a column. A column matching
// several fields goes to the earliest one still unmapped.
var keywordPriority = []fieldKeywords{
	{FieldValue, []string{"valor", "vl_", "preco", "preço", "custo", "value", "price", "cost", "amount", "montante", "importe"}},
	{FieldDescription, []string{"descricao", "descrição", "complemento", "historico", "histórico", "description", "narrative", "memo", "details"}},
	{FieldDate, []string{"data", "dt_", "date", "fecha"}},
	{FieldType, []string{"tipo", "natureza", "type", "nature"}},
	{FieldCategory, []string{"categoria", "classe", "category", "class"}},
	{FieldAccount, []string{"conta", "banco", "account", "bank"}},
}

// Mapper proposes a FieldMapping for a classified dataset.
type Mapper struct{}

// NewMapper returns a Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Propose maps columns for the given label. SIOG datasets use the fixed layout,
// restricted to the columns present; everything else is matched by keywords.
func (m *Mapper) Propose(label analyzer.Label, ds *dataset.Dataset) FieldMapping {
	names := ds.Names()
	var cols map[Field]string
	if label == analyzer.LabelSIOG {
		cols = mapSIOG(names)
	} else {
		cols = mapByKeywords(names)
	}
	out := FieldMapping{Columns: cols}
	out.Confidence = Confidence(out.Len(), len(names))
	return out
}

func mapSIOG(names []string) map[Field]string {
	present := make(map[string]string, len(names))
	for _, n := range names {
		present[strings.ToLower(strings.TrimSpace(n))] = n
	}

	cols := make(map[Field]string)
	for field, want := range SIOGColumns {
		if actual, ok := present[want]; ok {
			cols[field] = actual
		}
	}
	return cols
}

func mapByKeywords(names []string) map[Field]string {
	cols := make(map[Field]string)
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, fk := range keywordPriority {
			if _, taken := cols[fk.field]; taken {
				continue
			}
			if containsAny(lower, fk.keywords) {
				cols[fk.field] = name
				break
			}
		}
	}
	return cols
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
