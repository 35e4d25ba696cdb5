package normalizer

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
)

// DefaultOutboundKeywords mark money leaving the account.
var DefaultOutboundKeywords = []string{
	"saída", "saida", "despesa", "débito", "debito", "pagamento",
	"expense", "debit", "withdrawal", "outflow", "payment",
}

// DefaultInboundKeywords mark money entering the account.
var DefaultInboundKeywords = []string{
	"entrada", "receita", "crédito", "credito", "depósito", "deposito",
	"income", "credit", "deposit", "inflow", "salary", "salário",
}

// TypeInferrer maps free text in a type column to INCOME or EXPENSE.
type TypeInferrer struct {
	outbound *ahocorasick.Matcher
	inbound  *ahocorasick.Matcher
}

// NewTypeInferrer builds matchers for the given vocabularies. Keywords are matched
// case-insensitively as substrings.
func NewTypeInferrer(outbound, inbound []string) *TypeInferrer {
	return &TypeInferrer{
		outbound: newMatcher(outbound),
		inbound:  newMatcher(inbound),
	}
}

// NewDefaultTypeInferrer uses DefaultOutboundKeywords and DefaultInboundKeywords.
func NewDefaultTypeInferrer() *TypeInferrer {
	return NewTypeInferrer(DefaultOutboundKeywords, DefaultInboundKeywords)
}

// Infer returns EXPENSE when raw contains an outbound keyword and INCOME otherwise.
// explicit is false when neither vocabulary matched and INCOME is only the default.
func (ti *TypeInferrer) Infer(raw string) (t transaction.Type, explicit bool) {
	text := []byte(strings.ToLower(strings.TrimSpace(raw)))
	if len(ti.outbound.MatchThreadSafe(text)) > 0 {
		return transaction.TypeExpense, true
	}
	return transaction.TypeIncome, len(ti.inbound.MatchThreadSafe(text)) > 0
}

func newMatcher(keywords []string) *ahocorasick.Matcher {
	dict := make([][]byte, 0, len(keywords))
	for _, k := range keywords {
		dict = append(dict, []byte(strings.ToLower(k)))
	}
	return ahocorasick.NewMatcher(dict)
}
