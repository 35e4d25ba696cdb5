package synthetic

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/char/asciifolding"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/brianvoe/gofakeit/v6"
)

const foldedAnalyzer = "folded"

// templateSet holds description templates for one category. Placeholders
// {company} and {first_name} are filled by the faker.
type templateSet struct {
	Category  string
	Aliases   []string
	Templates []string
}

var builtinTemplates = []templateSet{
	{
		Category: "Alimentação",
		Aliases:  []string{"comida", "mercado", "supermercado", "restaurante", "padaria", "food", "groceries"},
		Templates: []string{
			"Supermercado {company}", "Restaurante {first_name}", "iFood - Delivery",
			"Padaria do Bairro", "Feira Livre",
		},
	},
	{
		Category: "Transporte",
		Aliases:  []string{"combustivel", "uber", "taxi", "onibus", "transport", "fuel"},
		Templates: []string{
			"Posto de Combustível", "Uber", "99Taxi", "Passagem Ônibus", "Estacionamento Shopping",
		},
	},
	{
		Category: "Moradia",
		Aliases:  []string{"aluguel", "condominio", "casa", "luz", "agua", "housing", "rent"},
		Templates: []string{
			"Aluguel Residencial", "Taxa Condomínio", "Conta de Luz - CPFL",
			"Conta de Água - SABESP", "Internet - Vivo Fibra",
		},
	},
	{
		Category: "Salário",
		Aliases:  []string{"salario", "pagamento", "bonificacao", "salary", "payroll"},
		Templates: []string{
			"Salário {company}", "Pagamento Freelance", "Bonificação Mensal", "13º Salário",
		},
	},
}

type templateDoc struct {
	Category string `json:"category"`
	Terms    string `json:"terms"`
}

// TemplateIndex finds description templates for a category. Exact names match
// first; otherwise an in-memory full-text index tolerates accents, plurals and
// small typos, so history categories such as "alimentacao" or "Supermercados"
// still get contextual descriptions.
type TemplateIndex struct {
	sets  map[string]templateSet
	index bleve.Index
}

// NewTemplateIndex indexes the built-in template sets.
func NewTemplateIndex() (*TemplateIndex, error) {
	idx, err := bleve.NewMemOnly(buildTemplateMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create template index: %w", err)
	}

	ti := &TemplateIndex{sets: make(map[string]templateSet, len(builtinTemplates)), index: idx}
	batch := idx.NewBatch()
	for _, set := range builtinTemplates {
		key := strings.ToLower(set.Category)
		ti.sets[key] = set
		doc := templateDoc{Category: set.Category, Terms: set.Category + " " + strings.Join(set.Aliases, " ")}
		if err := batch.Index(key, doc); err != nil {
			return nil, fmt.Errorf("failed to index templates for %s: %w", set.Category, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to execute template batch: %w", err)
	}
	return ti, nil
}

func buildTemplateMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	// Registration only fails for duplicate names, which cannot happen on a fresh mapping.
	_ = im.AddCustomAnalyzer(foldedAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"char_filters":  []string{asciifolding.Name},
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})

	terms := bleve.NewTextFieldMapping()
	terms.Analyzer = foldedAnalyzer

	stored := bleve.NewTextFieldMapping()
	stored.Index = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("terms", terms)
	doc.AddFieldMappingsAt("category", stored)

	im.DefaultMapping = doc
	im.DefaultAnalyzer = foldedAnalyzer
	return im
}

// Lookup returns the templates for category, or false when nothing is close.
func (ti *TemplateIndex) Lookup(category string) ([]string, bool) {
	if ti == nil {
		return nil, false
	}
	key := strings.ToLower(strings.TrimSpace(category))
	if set, ok := ti.sets[key]; ok {
		return set.Templates, true
	}
	if key == "" || ti.index == nil {
		return nil, false
	}

	q := bleve.NewMatchQuery(key)
	q.SetField("terms")
	q.SetFuzziness(1)
	req := bleve.NewSearchRequest(q)
	req.Size = 1

	res, err := ti.index.Search(req)
	if err != nil || len(res.Hits) == 0 {
		return nil, false
	}
	set, ok := ti.sets[res.Hits[0].ID]
	return set.Templates, ok
}

// Close releases the index.
func (ti *TemplateIndex) Close() error {
	if ti == nil || ti.index == nil {
		return nil
	}
	return ti.index.Close()
}

// describe renders a description for category. Values above 1000 and below 50 get
// a qualifier suffix.
func describe(f *gofakeit.Faker, ti *TemplateIndex, category string, value float64) string {
	base := "Transação " + category
	if templates, ok := ti.Lookup(category); ok && len(templates) > 0 {
		base = templates[f.Rand.Intn(len(templates))]
	}
	if strings.Contains(base, "{") {
		base = strings.NewReplacer(
			"{company}", f.Company(),
			"{first_name}", f.FirstName(),
		).Replace(base)
	}

	switch {
	case value > 1000:
		return base + " - Alto Valor"
	case value < 50:
		return base + " - Pequena Compra"
	default:
		return base
	}
}
