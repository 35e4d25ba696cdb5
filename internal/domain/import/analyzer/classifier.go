package analyzer

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Label identifies the source schema of a dataset.
type Label string

const (
	LabelSIOG             Label = "siog"
	LabelFinancialGeneric Label = "financial_generic"
	LabelGeneric          Label = "generic"
)

// SIOGKeywords are column names exported by the SIOG ERP.
var SIOGKeywords = []string{"id_lan", "nm_natureza", "dt_emissao", "vl_original"}

// FinancialKeywords are stems that suggest monetary columns.
var FinancialKeywords = []string{
	"valor", "vl_", "preco", "preço", "custo", "receita", "despesa",
	"value", "price", "cost", "amount", "revenue", "expense",
}

type rule struct {
	label   Label
	matcher *ahocorasick.Matcher
}

// Classifier labels datasets by their column names. Rules are evaluated in order
// and the first match wins; datasets matching no rule are generic.
type Classifier struct {
	rules []rule
}

// NewClassifier builds the default rule list: siog, then financial_generic.
func NewClassifier() *Classifier {
	return &Classifier{rules: []rule{
		{label: LabelSIOG, matcher: keywordMatcher(SIOGKeywords)},
		{label: LabelFinancialGeneric, matcher: keywordMatcher(FinancialKeywords)},
	}}
}

// Classify returns the label of the first rule whose keywords occur in the
// lowercased, space-joined column names.
func (c *Classifier) Classify(columns []ColumnProfile) Label {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = strings.ToLower(col.Name)
	}
	joined := []byte(strings.Join(names, " "))

	for _, r := range c.rules {
		if len(r.matcher.MatchThreadSafe(joined)) > 0 {
			return r.label
		}
	}
	return LabelGeneric
}

func keywordMatcher(keywords []string) *ahocorasick.Matcher {
	dict := make([][]byte, len(keywords))
	for i, k := range keywords {
		dict[i] = []byte(k)
	}
	return ahocorasick.NewMatcher(dict)
}
