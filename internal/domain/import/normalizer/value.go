// Package normalizer coerces raw statement text into values, dates and transaction types.
package normalizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidValue = errors.New("invalid numeric value")
	ErrInvalidDate  = errors.New("invalid date")
	// ErrSeparatorMismatch marks a value written in a different number format
	// than the rest of its column.
	ErrSeparatorMismatch = errors.New("separators contradict the column number format")
	// ErrAmbiguousValue marks a value whose separator could be decimal or grouping.
	ErrAmbiguousValue = errors.New("ambiguous decimal separator")
)

// ParseValue parses a monetary value written with either comma or period decimals.
// When both separators appear the last one is the decimal point, so "1.234,56" and
// "1,234.56" both give 1234.56. A lone comma is a decimal comma; repeated separators
// of one kind are thousands grouping. Currency symbols, spaces, accounting
// parentheses and trailing minus signs are accepted.
func ParseValue(raw string) (decimal.Decimal, error) {
	s, negative, err := stripValue(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return finishValue(raw, normalizeSeparators(s), negative)
}

// ParseValueAs parses raw in the column format f. A separator that cannot belong
// to f fails with ErrSeparatorMismatch. With the zero format, a value whose only
// separator is followed by exactly three digits fails with ErrAmbiguousValue,
// because "1.000" reads as one or as a thousand; other values parse as in
// ParseValue.
func ParseValueAs(raw string, f NumberFormat) (decimal.Decimal, error) {
	s, negative, err := stripValue(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if f.IsZero() {
		if isAmbiguous(s) {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrAmbiguousValue, raw)
		}
		return finishValue(raw, normalizeSeparators(s), negative)
	}
	plain, ok := applyFormat(s, f)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrSeparatorMismatch, raw)
	}
	return finishValue(raw, plain, negative)
}

// stripValue removes signs, currency symbols and spaces, leaving digits and separators.
func stripValue(raw string) (string, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false, ErrInvalidValue
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.ReplaceAll(s, "R$", "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, s)

	if strings.HasSuffix(s, "-") && len(s) > 1 {
		negative = !negative
		s = strings.TrimSuffix(s, "-")
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	return s, negative, nil
}

func finishValue(raw, s string, negative bool) (decimal.Decimal, error) {
	if s == "" || strings.ContainsAny(s, "+-") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidValue, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidValue, raw)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// IsNumeric reports whether raw parses as a value.
func IsNumeric(raw string) bool {
	_, err := ParseValue(raw)
	return err == nil
}

func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}
