// Package analyzer profiles the columns of an uploaded dataset and classifies which
// kind of financial source it came from.
package analyzer

import (
	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/normalizer"
)

// DefaultSampleSize is the number of non-null values kept per column for display.
const DefaultSampleSize = 3

// PrimitiveType is the inferred type of a column.
type PrimitiveType string

const (
	TypeNumeric PrimitiveType = "numeric"
	TypeText    PrimitiveType = "text"
	TypeDate    PrimitiveType = "date"
)

// ColumnProfile summarises one column.
type ColumnProfile struct {
	Name          string        `json:"name"`
	Type          PrimitiveType `json:"type"`
	NullCount     int           `json:"null_count"`
	DistinctCount int           `json:"distinct_count"`
	Samples       []string      `json:"samples"`
	// Malformed counts non-null values that failed to parse as the inferred type.
	Malformed int `json:"malformed"`
}

// Structure is the Structural Analyzer output.
type Structure struct {
	RowCount    int             `json:"row_count"`
	ColumnCount int             `json:"column_count"`
	Columns     []ColumnProfile `json:"columns"`
}

// StructuralAnalyzer builds column profiles.
type StructuralAnalyzer struct {
	sampleSize int
}

// NewStructuralAnalyzer keeps up to sampleSize values per column; values below 1
// fall back to DefaultSampleSize.
func NewStructuralAnalyzer(sampleSize int) *StructuralAnalyzer {
	if sampleSize < 1 {
		sampleSize = DefaultSampleSize
	}
	return &StructuralAnalyzer{sampleSize: sampleSize}
}

// Analyze profiles every column of ds. An empty dataset yields no profiles.
func (a *StructuralAnalyzer) Analyze(ds *dataset.Dataset) Structure {
	if ds == nil {
		return Structure{Columns: []ColumnProfile{}}
	}

	out := Structure{
		RowCount:    ds.RowCount(),
		ColumnCount: ds.ColumnCount(),
		Columns:     make([]ColumnProfile, 0, ds.ColumnCount()),
	}
	for i, name := range ds.Names() {
		out.Columns = append(out.Columns, a.profileColumn(name, ds.Column(i)))
	}
	return out
}

func (a *StructuralAnalyzer) profileColumn(name string, cells []dataset.Cell) ColumnProfile {
	p := ColumnProfile{Name: name, Samples: make([]string, 0, a.sampleSize)}
	distinct := make(map[string]struct{})
	votes := map[PrimitiveType]int{}

	for _, c := range cells {
		if c.IsNull() {
			p.NullCount++
			continue
		}
		distinct[c.Value] = struct{}{}
		if len(p.Samples) < a.sampleSize {
			p.Samples = append(p.Samples, c.Value)
		}
		votes[classifyValue(c.Value)]++
	}

	p.DistinctCount = len(distinct)
	p.Type = majority(votes)
	if p.Type != TypeText {
		p.Malformed = len(cells) - p.NullCount - votes[p.Type]
	}
	return p
}

// classifyValue checks dates before numbers so that "15.01.2024" is not read as
// a grouped integer.
func classifyValue(v string) PrimitiveType {
	switch {
	case normalizer.IsDate(v):
		return TypeDate
	case normalizer.IsNumeric(v):
		return TypeNumeric
	default:
		return TypeText
	}
}

// majority picks the most voted type. Ties, and columns without values, are text.
func majority(votes map[PrimitiveType]int) PrimitiveType {
	best, bestVotes, tie := TypeText, votes[TypeText], false
	for _, t := range []PrimitiveType{TypeNumeric, TypeDate} {
		switch n := votes[t]; {
		case n > bestVotes:
			best, bestVotes, tie = t, n, false
		case n == bestVotes && n > 0:
			tie = true
		}
	}
	if tie || bestVotes == 0 {
		return TypeText
	}
	return best
}
