// Package synthetic learns distribution parameters from transaction history and
// samples realistic synthetic transactions from them.
package synthetic

import (
	"math"
	"sort"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
)

// DefaultTopCategories bounds the category frequency table.
const DefaultTopCategories = 10

// TypeRatio is the share of expense and income records.
type TypeRatio struct {
	Expense float64 `json:"expense"`
	Income  float64 `json:"income"`
}

// ValueStats summarises value magnitudes. Observed is the number of values they
// were computed from; it is zero for the built-in defaults and for stats supplied
// by a caller.
type ValueStats struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"stddev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	P25      float64 `json:"p25"`
	P50      float64 `json:"p50"`
	P75      float64 `json:"p75"`
	Observed int     `json:"observed"`
}

// CategoryCount is one entry of the frequency table.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Profile is the statistical summary of an owner's history.
type Profile struct {
	TypeRatio  TypeRatio       `json:"type_ratio"`
	ValueStats ValueStats      `json:"value_stats"`
	Categories []CategoryCount `json:"category_frequencies"`
	// SampleSize is the number of records the profile was built from.
	SampleSize int `json:"sample_size"`
}

// CategoryNames returns the profiled categories, most frequent first.
func (p *Profile) CategoryNames() []string {
	out := make([]string, len(p.Categories))
	for i, c := range p.Categories {
		out[i] = c.Category
	}
	return out
}

// DefaultTypeRatio applies when there is no typed history.
func DefaultTypeRatio() TypeRatio {
	return TypeRatio{Expense: 0.75, Income: 0.25}
}

// DefaultValueStats applies when there are no usable values.
func DefaultValueStats() ValueStats {
	return ValueStats{Mean: 350, StdDev: 200, Min: 10, Max: 2000, P25: 100, P50: 250, P75: 500}
}

// DefaultProfile is used for owners without history.
func DefaultProfile() *Profile {
	return &Profile{
		TypeRatio:  DefaultTypeRatio(),
		ValueStats: DefaultValueStats(),
		Categories: []CategoryCount{},
	}
}

// Extractor builds profiles.
type Extractor struct {
	topCategories int
}

// NewExtractor keeps the topCategories most frequent categories; values below 1
// fall back to DefaultTopCategories.
func NewExtractor(topCategories int) *Extractor {
	if topCategories < 1 {
		topCategories = DefaultTopCategories
	}
	return &Extractor{topCategories: topCategories}
}

// Extract computes a profile from txs. Value statistics use expense magnitudes, or
// every magnitude when the history holds no expenses.
func (e *Extractor) Extract(txs []transaction.Transaction) *Profile {
	p := DefaultProfile()
	p.SampleSize = len(txs)
	if len(txs) == 0 {
		return p
	}

	var expenses, income int
	var expenseValues, allValues []float64
	counts := make(map[string]int)

	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeExpense:
			expenses++
		case transaction.TypeIncome:
			income++
		}
		if tx.HasValue() {
			v := tx.Magnitude().InexactFloat64()
			allValues = append(allValues, v)
			if tx.Type == transaction.TypeExpense {
				expenseValues = append(expenseValues, v)
			}
		}
		if tx.Category != "" {
			counts[tx.Category]++
		}
	}

	if typed := expenses + income; typed > 0 {
		p.TypeRatio = TypeRatio{
			Expense: float64(expenses) / float64(typed),
			Income:  float64(income) / float64(typed),
		}
	}

	values := expenseValues
	if len(values) == 0 {
		values = allValues
	}
	if len(values) > 0 {
		p.ValueStats = computeStats(values)
	}

	p.Categories = topCategories(counts, e.topCategories)
	return p
}

func computeStats(values []float64) ValueStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var sq float64
	for _, v := range sorted {
		sq += (v - mean) * (v - mean)
	}

	return ValueStats{
		Mean:     mean,
		StdDev:   math.Sqrt(sq / float64(len(sorted))),
		Min:      sorted[0],
		Max:      sorted[len(sorted)-1],
		P25:      percentile(sorted, 0.25),
		P50:      percentile(sorted, 0.50),
		P75:      percentile(sorted, 0.75),
		Observed: len(sorted),
	}
}

// percentile interpolates linearly between the closest ranks of sorted values.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := q * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// topCategories orders by count, then name, and keeps the first n.
func topCategories(counts map[string]int, n int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for c, k := range counts {
		out = append(out, CategoryCount{Category: c, Count: k})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
