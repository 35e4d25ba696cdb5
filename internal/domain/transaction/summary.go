package transaction

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/finance-intelligence/pkg/money"
)

// Summary aggregates a batch of transactions by type.
type Summary struct {
	Total        int             `json:"total"`
	IncomeCount  int             `json:"income_count"`
	ExpenseCount int             `json:"expense_count"`
	IncomeTotal  decimal.Decimal `json:"income_total"`
	ExpenseTotal decimal.Decimal `json:"expense_total"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Currency     string          `json:"currency"`
	Display      string          `json:"display"`
}

// Summarize counts records by type and sums their magnitudes.
// TotalValue is the sum of every magnitude regardless of type.
func Summarize(txs []Transaction, currency string) Summary {
	s := Summary{Total: len(txs), Currency: currency}
	var incomes, expenses []decimal.Decimal

	for _, tx := range txs {
		switch tx.Type {
		case TypeExpense:
			expenses = append(expenses, tx.Magnitude())
		case TypeIncome:
			incomes = append(incomes, tx.Magnitude())
		}
	}
	s.IncomeCount = len(incomes)
	s.ExpenseCount = len(expenses)

	income := money.Sum(incomes, currency)
	expense := money.Sum(expenses, currency)
	total := income.MustAdd(expense)
	s.IncomeTotal = income.ToDecimal()
	s.ExpenseTotal = expense.ToDecimal()
	s.TotalValue = total.ToDecimal()
	s.Display = total.Display()
	return s
}
