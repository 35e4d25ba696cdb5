package synthetic

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
)

// ErrInvalidCount is returned for negative or oversized requests.
var ErrInvalidCount = errors.New("invalid synthetic record count")

// DefaultMaxCount bounds a single generation request.
const DefaultMaxCount = 10000

const (
	maxValue          = 10000.0
	smallRegimeShare  = 0.8
	patternCategoryP  = 0.6
	paydayP           = 0.3
	maxDaysBack       = 365
	regimeSwitchPoint = 700.0
)

// regime is a floored normal distribution.
type regime struct {
	mean, stddev, floor float64
}

var (
	expenseSmall = regime{mean: 200, stddev: 150, floor: 10}
	expenseLarge = regime{mean: 1200, stddev: 400, floor: 500}
	incomeRegime = regime{mean: 2000, stddev: 800, floor: 100}
)

var (
	expenseCategories = []string{
		"Alimentação", "Transporte", "Moradia", "Saúde", "Educação", "Lazer", "Vestuário",
		"Utilidades", "Seguros", "Impostos", "Farmácia", "Combustível", "Internet", "Celular", "Academia",
	}
	incomeCategories = []string{
		"Salário", "Freelance", "Investimentos", "Vendas", "Aluguel", "Pensão",
		"Aposentadoria", "Bonificação", "13º Salário",
	}
	banks = []string{
		"Banco do Brasil", "Bradesco", "Itaú Unibanco", "Santander", "Caixa Econômica Federal",
		"Nubank", "Inter", "BTG Pactual", "Banco Original", "C6 Bank",
	}
	digitalBanks   = map[string]bool{"Nubank": true, "Inter": true, "C6 Bank": true}
	accountKinds   = []string{"Conta Corrente", "Conta Poupança", "Conta Salário"}
	paydays        = []int{5, 15, 30}
	digitalAccount = "Conta Digital"
)

// Request describes one generation call.
type Request struct {
	Count   int
	OwnerID uuid.UUID
	// IgnorePatterns discards the profile and samples from the built-in
	// distributions. By default the profile steers type ratio, value regime and
	// categories.
	IgnorePatterns bool
}

// Generator samples synthetic transactions. It owns its random source, so two
// generators with the same seed and clock produce the same records. A Generator
// is not safe for concurrent use; create one per request.
type Generator struct {
	faker     *gofakeit.Faker
	templates *TemplateIndex
	now       func() time.Time
	maxCount  int
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock fixes the reference date used for date offsets.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithMaxCount overrides DefaultMaxCount.
func WithMaxCount(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxCount = n
		}
	}
}

// NewGenerator seeds a generator. Seed 0 picks a random seed. templates may be
// nil, in which case every description uses the generic template.
func NewGenerator(seed int64, templates *TemplateIndex, opts ...Option) *Generator {
	g := &Generator{
		faker:     gofakeit.New(seed),
		templates: templates,
		now:       time.Now,
		maxCount:  DefaultMaxCount,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns req.Count independent synthetic records.
func (g *Generator) Generate(profile *Profile, req Request) ([]transaction.Transaction, error) {
	if req.Count < 0 || req.Count > g.maxCount {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrInvalidCount, req.Count, g.maxCount)
	}
	if req.IgnorePatterns || profile == nil {
		profile = DefaultProfile()
	}

	small, large := expenseRegimes(profile.ValueStats)
	today := g.now().UTC()
	out := make([]transaction.Transaction, 0, req.Count)

	for i := 0; i < req.Count; i++ {
		out = append(out, g.record(profile, small, large, today, req.OwnerID))
	}
	return out, nil
}

// expenseRegimes substitutes profile statistics into the regime whose default
// mean is closest to the profile mean. The built-in stats, and stats without a
// positive mean, keep both default regimes.
func expenseRegimes(stats ValueStats) (small, large regime) {
	small, large = expenseSmall, expenseLarge
	if stats.Mean <= 0 || stats == DefaultValueStats() {
		return small, large
	}
	r := regime{mean: stats.Mean, stddev: stats.StdDev}
	if stats.Mean < regimeSwitchPoint {
		r.floor = expenseSmall.floor
		if r.stddev <= 0 {
			r.stddev = expenseSmall.stddev
		}
		return r, large
	}
	r.floor = expenseLarge.floor
	if r.stddev <= 0 {
		r.stddev = expenseLarge.stddev
	}
	return small, r
}

func (g *Generator) record(p *Profile, small, large regime, today time.Time, owner uuid.UUID) transaction.Transaction {
	rnd := g.faker.Rand

	txType := transaction.TypeIncome
	if rnd.Float64() < p.TypeRatio.Expense {
		txType = transaction.TypeExpense
	}

	var value float64
	switch {
	case txType == transaction.TypeIncome:
		value = g.draw(incomeRegime)
	case rnd.Float64() < smallRegimeShare:
		value = g.draw(small)
	default:
		value = g.draw(large)
	}
	amount := decimal.NewFromFloat(value).Round(2)

	category := g.category(p, txType)
	bank := banks[rnd.Intn(len(banks))]
	kind := digitalAccount
	if !digitalBanks[bank] {
		kind = accountKinds[rnd.Intn(len(accountKinds))]
	}

	return transaction.Transaction{
		Value:       decimal.NewNullDecimal(amount),
		Description: describe(g.faker, g.templates, category, amount.InexactFloat64()),
		Type:        txType,
		Date:        g.date(today),
		Category:    category,
		Account:     kind + " - " + bank,
		Bank:        bank,
		OwnerID:     owner,
		IsSynthetic: true,
	}
}

func (g *Generator) draw(r regime) float64 {
	v := r.mean + r.stddev*g.faker.Rand.NormFloat64()
	return math.Min(math.Max(v, r.floor), maxValue)
}

func (g *Generator) category(p *Profile, t transaction.Type) string {
	rnd := g.faker.Rand
	if names := p.CategoryNames(); len(names) > 0 && rnd.Float64() < patternCategoryP {
		return names[rnd.Intn(len(names))]
	}
	if t == transaction.TypeExpense {
		return expenseCategories[rnd.Intn(len(expenseCategories))]
	}
	return incomeCategories[rnd.Intn(len(incomeCategories))]
}

// date picks a day up to a year back; some dates snap to paydays, clamped to the
// 28th so every month has them. A snap never moves a date past today.
func (g *Generator) date(today time.Time) time.Time {
	rnd := g.faker.Rand
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := today.AddDate(0, 0, -rnd.Intn(maxDaysBack+1))
	if rnd.Float64() < paydayP {
		day := min(paydays[rnd.Intn(len(paydays))], 28)
		if snapped := time.Date(d.Year(), d.Month(), day, 0, 0, 0, 0, time.UTC); !snapped.After(today) {
			d = snapped
		}
	}
	return d
}
