// Package cleaning suggests and applies data-cleaning steps before conversion.
package cleaning

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/analyzer"
)

// SuggestionType identifies the kind of data issue.
type SuggestionType string

const (
	SuggestNullValues       SuggestionType = "null_values"
	SuggestDuplicates       SuggestionType = "duplicates"
	SuggestDateFormat       SuggestionType = "date_format"
	SuggestMalformedNumbers SuggestionType = "malformed_numbers"
)

// Suggestion is an actionable note for the caller.
type Suggestion struct {
	Type            SuggestionType `json:"type"`
	Column          string         `json:"column,omitempty"`
	Count           int            `json:"count,omitempty"`
	Message         string         `json:"message"`
	SuggestedAction string         `json:"suggested_action"`
}

// dateNameKeywords mark columns whose format should be verified by a human.
var dateNameKeywords = []string{"data", "dt_", "date"}

// Advise inspects profiles and raw rows. It never modifies the dataset.
func Advise(ds *dataset.Dataset, columns []analyzer.ColumnProfile) []Suggestion {
	out := make([]Suggestion, 0)

	for _, col := range columns {
		if col.NullCount > 0 {
			out = append(out, Suggestion{
				Type:            SuggestNullValues,
				Column:          col.Name,
				Count:           col.NullCount,
				Message:         fmt.Sprintf("column %q has %d empty values", col.Name, col.NullCount),
				SuggestedAction: "drop rows with empty values or fill them with a default",
			})
		}
	}

	if dups := CountDuplicates(ds); dups > 0 {
		out = append(out, Suggestion{
			Type:            SuggestDuplicates,
			Count:           dups,
			Message:         fmt.Sprintf("%d rows are exact duplicates of an earlier row", dups),
			SuggestedAction: "remove duplicate rows",
		})
	}

	for _, col := range columns {
		if col.Type == analyzer.TypeNumeric && col.Malformed > 0 {
			out = append(out, Suggestion{
				Type:            SuggestMalformedNumbers,
				Column:          col.Name,
				Count:           col.Malformed,
				Message:         fmt.Sprintf("column %q has %d values that are not numbers", col.Name, col.Malformed),
				SuggestedAction: "correct the values or exclude the rows before importing",
			})
		}
	}

	for _, col := range columns {
		if looksLikeDate(col.Name) {
			out = append(out, Suggestion{
				Type:            SuggestDateFormat,
				Column:          col.Name,
				Message:         fmt.Sprintf("column %q looks like a date", col.Name),
				SuggestedAction: "verify the date format (day/month order) before importing",
			})
		}
	}

	return out
}

// CountDuplicates returns how many rows repeat an earlier row exactly.
func CountDuplicates(ds *dataset.Dataset) int {
	if ds == nil {
		return 0
	}
	seen := make(map[string]struct{}, ds.RowCount())
	dups := 0
	for r := 0; r < ds.RowCount(); r++ {
		key := rowKey(ds.Row(r), nil)
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func looksLikeDate(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range dateNameKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
