package normalizer

import (
	"strings"
)

// NumberFormat is the pair of separators a value column is written with.
// The zero NumberFormat means the format is unknown.
type NumberFormat struct {
	Decimal   rune
	Thousands rune
}

var (
	// CommaDecimal is the Brazilian and continental format, 1.234,56.
	CommaDecimal = NumberFormat{Decimal: ',', Thousands: '.'}
	// PointDecimal is the US and UK format, 1,234.56.
	PointDecimal = NumberFormat{Decimal: '.', Thousands: ','}
)

// IsZero reports whether the format is unknown.
func (f NumberFormat) IsZero() bool {
	return f.Decimal == 0
}

// FormatForCurrency returns the customary number format of an ISO-4217 code,
// or the zero format for codes it does not know.
func FormatForCurrency(code string) NumberFormat {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "BRL", "EUR", "ARS", "CLP", "COP":
		return CommaDecimal
	case "USD", "GBP", "CAD", "AUD", "MXN":
		return PointDecimal
	}
	return NumberFormat{}
}

// DetectNumberFormat votes over the samples of a value column. A sample votes for
// the separator arrangement it can only have in one format ("2.500,00", "45,9",
// "1,234.56", "12.5"); currency markers vote too, R$, BRL, € and EUR for comma
// decimals and a bare $ or USD for point decimals. Ties, and columns without any
// evidence, give the zero format.
func DetectNumberFormat(samples []string) NumberFormat {
	var comma, point int
	for _, s := range samples {
		switch separatorHint(s) {
		case 1:
			comma++
		case -1:
			point++
		}

		switch {
		case strings.Contains(s, "R$"), strings.Contains(s, "BRL"),
			strings.Contains(s, "€"), strings.Contains(s, "EUR"):
			comma++
		case strings.Contains(s, "$"), strings.Contains(s, "USD"):
			point++
		}
	}

	switch {
	case comma > point:
		return CommaDecimal
	case point > comma:
		return PointDecimal
	default:
		return NumberFormat{}
	}
}

// separatorHint returns 1 for comma decimals, -1 for point decimals and 0 when
// the value fits both.
func separatorHint(raw string) int {
	s := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '.' {
			return r
		}
		return -1
	}, raw)

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			return 1
		}
		return -1
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return -1
		}
		if n := len(s) - lastComma - 1; n >= 1 && n <= 2 {
			return 1
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			return 1
		}
		if n := len(s) - lastDot - 1; n >= 1 && n <= 2 {
			return -1
		}
	}
	return 0
}

// applyFormat rewrites s, already stripped of signs and symbols, to a plain
// decimal. It fails when s holds a separator in a place f does not allow:
// a second decimal separator, grouping after the decimal separator, or groups
// that are not three digits long.
func applyFormat(s string, f NumberFormat) (string, bool) {
	intPart, frac := s, ""
	if i := strings.IndexRune(s, f.Decimal); i >= 0 {
		intPart, frac = s[:i], s[i+1:]
		if strings.ContainsRune(frac, f.Decimal) || strings.ContainsRune(frac, f.Thousands) {
			return "", false
		}
	}

	if strings.ContainsRune(intPart, f.Thousands) {
		groups := strings.Split(intPart, string(f.Thousands))
		if groups[0] == "" || len(groups[0]) > 3 {
			return "", false
		}
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return "", false
			}
		}
		intPart = strings.Join(groups, "")
	}

	if frac == "" {
		return intPart, true
	}
	return intPart + "." + frac, true
}

// isAmbiguous reports whether s has a single separator followed by exactly three
// digits and a non-zero integer part.
func isAmbiguous(s string) bool {
	if strings.Count(s, ",")+strings.Count(s, ".") != 1 {
		return false
	}
	i := strings.IndexAny(s, ",.")
	intPart := strings.TrimLeft(s[:i], "0")
	return intPart != "" && len(s)-i-1 == 3
}
