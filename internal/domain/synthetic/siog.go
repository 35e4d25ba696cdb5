package synthetic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
)

// SIOGHeader is the column layout of a SIOG payables export.
var SIOGHeader = []string{
	"id_lan", "filial", "conta", "banco", "cliente_fornecedor", "tipo_lancamento",
	"vl_original", "complemento", "dt_emissao", "nm_natureza", "sub_natureza", "status_lan",
}

var (
	siogNatures = []string{
		"DESPESAS FIXAS", "DESPESAS VARIÁVEIS", "GASTOS COM PESSOAL",
		"MANUTENÇÃO CASA", "INVESTIMENTOS", "EQUIPAMENTOS", "SERVIÇOS",
	}
	siogSubNatures = map[string][]string{
		"DESPESAS FIXAS":     {"AGUA", "ENERGIA", "CONDOMÍNIO", "INTERNET", "TELEFONE"},
		"GASTOS COM PESSOAL": {"SALÁRIOS", "FGTS", "BENEFÍCIOS", "TERCEIRIZADOS"},
		"MANUTENÇÃO CASA":    {"REFORMA", "JARDIM", "LIMPEZA", "SEGURANÇA"},
		"DESPESAS VARIÁVEIS": {"ALIMENTAÇÃO", "COMBUSTÍVEL", "MEDICAMENTOS"},
	}
	siogBranches     = []string{"MATRIZ", "SALÁRIOS", "ADMINISTRATIVO", "OPERACIONAL"}
	siogDescriptions = map[string]string{
		"AGUA":     "Conta de água",
		"ENERGIA":  "Conta de energia elétrica",
		"SALÁRIOS": "Pagamento salários",
		"FGTS":     "Depósito FGTS",
		"REFORMA":  "Serviços de reforma",
		"JARDIM":   "Manutenção jardim",
	}
)

// GenerateSIOG builds a dataset in the SIOG export layout, with comma decimals and
// ISO dates, so that it can be fed back through the import pipeline.
func (g *Generator) GenerateSIOG(count int) (*dataset.Dataset, error) {
	if count < 0 || count > g.maxCount {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrInvalidCount, count, g.maxCount)
	}

	rnd := g.faker.Rand
	today := g.now().UTC()
	rows := make([][]string, 0, count)

	for i := 0; i < count; i++ {
		nature := siogNatures[rnd.Intn(len(siogNatures))]
		sub := "GERAL"
		if subs, ok := siogSubNatures[nature]; ok {
			sub = subs[rnd.Intn(len(subs))]
		}

		lo, hi := 50.0, 2000.0
		switch nature {
		case "GASTOS COM PESSOAL":
			lo, hi = 1000, 8000
		case "DESPESAS FIXAS":
			lo, hi = 200, 1500
		}
		value := decimal.NewFromFloat(lo + rnd.Float64()*(hi-lo)).Round(2)

		issued := today.AddDate(0, 0, -rnd.Intn(maxDaysBack+1))
		ref := today.AddDate(0, 0, -rnd.Intn(maxDaysBack+1))

		base, ok := siogDescriptions[sub]
		if !ok {
			base = strings.ToLower(sub)
		}

		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			siogBranches[rnd.Intn(len(siogBranches))],
			strings.ToUpper(banks[rnd.Intn(len(banks))]),
			strings.ToUpper(banks[rnd.Intn(len(banks))]),
			strings.ToUpper(g.faker.Company()),
			"Saída",
			strings.Replace(value.StringFixed(2), ".", ",", 1),
			fmt.Sprintf("%s REF %s", strings.ToUpper(base), ref.Format("01/2006")),
			issued.Format("2006-01-02"),
			nature,
			sub,
			"Baixado",
		})
	}

	return dataset.FromStrings(SIOGHeader, rows)
}
