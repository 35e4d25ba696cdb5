package converter

import (
	"errors"
	"fmt"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/mapping"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/normalizer"
)

// Validation is the batch verdict. Valid is false when any row has a problem,
// even though ValidCount tracks rows that passed on their own.
type Validation struct {
	Valid      bool     `json:"valid"`
	Errors     []string `json:"errors"`
	ValidCount int      `json:"valid_count"`
	TotalCount int      `json:"total_count"`
}

// Validate checks required fields (value, description, type), value parsing and
// any other coercion error recorded during conversion.
func Validate(cands []Candidate) Validation {
	res := Validation{Errors: make([]string, 0), TotalCount: len(cands)}

	for _, c := range cands {
		problems := rowProblems(c)
		for _, p := range problems {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %s", c.Row, p))
		}
		if len(problems) == 0 {
			res.ValidCount++
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func rowProblems(c Candidate) []string {
	var problems []string
	tx := c.Transaction

	switch {
	case tx.Value.Valid:
	case c.RawValue != "":
		problems = append(problems, valueProblem(c))
	default:
		problems = append(problems, "required field value is missing")
	}
	if tx.Description == "" {
		problems = append(problems, "required field description is missing")
	}
	if !tx.Type.Valid() {
		problems = append(problems, "required field type is missing")
	}

	for _, fe := range c.Errors {
		if fe.Field == mapping.FieldValue {
			continue
		}
		problems = append(problems, fmt.Sprintf("field %s: %v", fe.Field, fe.Err))
	}
	return problems
}

// valueProblem describes an unparsed value. Values that are numbers in another
// format than their column keep the conversion error, which names the cause.
func valueProblem(c Candidate) string {
	for _, fe := range c.Errors {
		if fe.Field == mapping.FieldValue && !errors.Is(fe.Err, normalizer.ErrInvalidValue) {
			return fmt.Sprintf("field value: %v", fe.Err)
		}
	}
	return fmt.Sprintf("value %q is not numeric", c.RawValue)
}
