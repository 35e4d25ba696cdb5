package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
)

func TestStructuralAnalyzer_Analyze(t *testing.T) {
	ds, err := dataset.FromStrings(
		[]string{"data", "valor", "descricao", "vazio"},
		[][]string{
			{"15/01/2024", "1.234,56", "Mercado", ""},
			{"16/01/2024", "12,00", "Mercado", ""},
			{"", "abc", "Farmácia", ""},
			{"17/01/2024", "9,90", "Padaria", ""},
		},
	)
	require.NoError(t, err)

	s := NewStructuralAnalyzer(3).Analyze(ds)

	assert.Equal(t, 4, s.RowCount)
	assert.Equal(t, 4, s.ColumnCount)
	require.Len(t, s.Columns, 4)

	date := s.Columns[0]
	assert.Equal(t, TypeDate, date.Type)
	assert.Equal(t, 1, date.NullCount)
	assert.Equal(t, 3, date.DistinctCount)
	assert.Equal(t, []string{"15/01/2024", "16/01/2024", "17/01/2024"}, date.Samples)

	value := s.Columns[1]
	assert.Equal(t, TypeNumeric, value.Type)
	assert.Equal(t, 1, value.Malformed)

	desc := s.Columns[2]
	assert.Equal(t, TypeText, desc.Type)
	assert.Equal(t, 3, desc.DistinctCount)
	assert.Equal(t, []string{"Mercado", "Mercado", "Farmácia"}, desc.Samples)

	empty := s.Columns[3]
	assert.Equal(t, TypeText, empty.Type)
	assert.Equal(t, 4, empty.NullCount)
	assert.Empty(t, empty.Samples)
}

func TestStructuralAnalyzer_EmptyDataset(t *testing.T) {
	ds, err := dataset.New(nil, nil)
	require.NoError(t, err)

	s := NewStructuralAnalyzer(0).Analyze(ds)
	assert.Zero(t, s.ColumnCount)
	assert.Empty(t, s.Columns)
}

func TestMajority(t *testing.T) {
	assert.Equal(t, TypeText, majority(map[PrimitiveType]int{}))
	assert.Equal(t, TypeNumeric, majority(map[PrimitiveType]int{TypeNumeric: 3, TypeText: 1}))
	assert.Equal(t, TypeText, majority(map[PrimitiveType]int{TypeNumeric: 2, TypeText: 2}))
	assert.Equal(t, TypeDate, majority(map[PrimitiveType]int{TypeNumeric: 1, TypeText: 1, TypeDate: 2}))
}

func profilesFor(names ...string) []ColumnProfile {
	out := make([]ColumnProfile, len(names))
	for i, n := range names {
		out[i] = ColumnProfile{Name: n}
	}
	return out
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name    string
		columns []string
		want    Label
	}{
		{"siog export", []string{"vl_original", "dt_emissao", "nm_natureza", "complemento"}, LabelSIOG},
		{"siog wins over financial keywords", []string{"ID_LAN", "valor"}, LabelSIOG},
		{"portuguese statement", []string{"Data", "Descrição", "Valor"}, LabelFinancialGeneric},
		{"english statement", []string{"date", "memo", "Amount"}, LabelFinancialGeneric},
		{"no financial keywords", []string{"random_col_1", "random_col_2"}, LabelGeneric},
		{"no columns", nil, LabelGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(profilesFor(tt.columns...)))
		})
	}
}
