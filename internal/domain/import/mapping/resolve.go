package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
)

var (
	ErrUnknownField  = errors.New("unknown canonical field")
	ErrUnknownColumn = errors.New("column not found in dataset")
	ErrColumnReused  = errors.New("column mapped to more than one field")
)

const maxSuggestions = 3

// Problem describes one defect in a caller supplied mapping.
type Problem struct {
	Field       string   `json:"field"`
	Column      string   `json:"column"`
	Err         error    `json:"-"`
	Reason      string   `json:"reason"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ResolveError collects every problem found while resolving a mapping.
type ResolveError struct {
	Problems []Problem
}

func (e *ResolveError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msg := fmt.Sprintf("%s -> %q: %s", p.Field, p.Column, p.Reason)
		if len(p.Suggestions) > 0 {
			msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(p.Suggestions, ", "))
		}
		parts[i] = msg
	}
	return "invalid field mapping: " + strings.Join(parts, "; ")
}

// Unwrap exposes the sentinel of every problem to errors.Is.
func (e *ResolveError) Unwrap() []error {
	errs := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		errs[i] = p.Err
	}
	return errs
}

// Resolve checks a mapping supplied by the caller, keyed by canonical field name,
// against the dataset. Empty column names leave the field unmapped.
func Resolve(raw map[string]string, ds *dataset.Dataset) (FieldMapping, error) {
	names := ds.Names()
	exists := make(map[string]bool, len(names))
	for _, n := range names {
		exists[n] = true
	}

	// Iterate in a fixed order so problems are reported deterministically.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make(map[Field]string)
	usedBy := make(map[string]string)
	var problems []Problem

	for _, key := range keys {
		column := strings.TrimSpace(raw[key])
		if column == "" {
			continue
		}
		field := Field(strings.ToLower(strings.TrimSpace(key)))
		switch {
		case !field.Valid():
			problems = append(problems, Problem{Field: key, Column: column, Err: ErrUnknownField, Reason: ErrUnknownField.Error()})
		case !exists[column]:
			problems = append(problems, Problem{
				Field: key, Column: column, Err: ErrUnknownColumn, Reason: ErrUnknownColumn.Error(),
				Suggestions: suggestColumns(column, names),
			})
		case usedBy[column] != "":
			problems = append(problems, Problem{
				Field: key, Column: column, Err: ErrColumnReused,
				Reason: fmt.Sprintf("%s: already mapped to %s", ErrColumnReused, usedBy[column]),
			})
		default:
			usedBy[column] = string(field)
			cols[field] = column
		}
	}

	if len(problems) > 0 {
		return FieldMapping{}, &ResolveError{Problems: problems}
	}
	out := FieldMapping{Columns: cols}
	out.Confidence = Confidence(out.Len(), len(names))
	return out, nil
}

// suggestColumns ranks dataset columns close to an unknown name, trying both the
// name as a subsequence of a column and a column as a subsequence of the name.
func suggestColumns(column string, names []string) []string {
	ranks := fuzzy.RankFindNormalizedFold(column, names)
	for _, n := range names {
		if fuzzy.MatchNormalizedFold(n, column) {
			ranks = append(ranks, fuzzy.Rank{Source: n, Target: n, Distance: fuzzy.LevenshteinDistance(n, column)})
		}
	}
	sort.Stable(ranks)

	seen := make(map[string]bool)
	out := make([]string, 0, maxSuggestions)
	for _, r := range ranks {
		if seen[r.Target] {
			continue
		}
		seen[r.Target] = true
		out = append(out, r.Target)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
