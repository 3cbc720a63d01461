package transaction

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/pkg/money"
)

// FakeGenerator produces realistic statement data for tests using gofakeit.
type FakeGenerator struct {
	faker *gofakeit.Faker
}

// NewFakeGenerator creates a generator with a fixed seed for reproducible runs.
func NewFakeGenerator(seed int64) *FakeGenerator {
	return &FakeGenerator{faker: gofakeit.New(seed)}
}

var fakeMerchants = map[categorization.Category][]string{
	categorization.Comida:        {"SUPERMERCADO DIA", "PADARIA REAL", "IFOOD *PEDIDO", "PIZZA HUT"},
	categorization.Transporte:    {"UBER *TRIP", "POSTO IPIRANGA", "ESTACIONAMENTO CENTRO"},
	categorization.Moradia:       {"ALUGUEL APTO", "SABESP", "ENERGIA ENEL", "INTERNET VIVO"},
	categorization.Lazer:         {"NETFLIX.COM", "SPOTIFY", "CINEMARK"},
	categorization.Saude:         {"DROGARIA RAIA", "DENTISTA DR SILVA", "ACADEMIA SMART"},
	categorization.Educacao:      {"FACULDADE XPTO", "LIVRARIA CULTURA", "CURSO ONLINE"},
	categorization.Investimentos: {"APLICACAO CDB", "TESOURO DIRETO", "DIVIDENDO ITSA4"},
	categorization.Receita:       {"SALÁRIO EMPRESA", "DEPÓSITO EM CONTA"},
	categorization.NeedsReview:   {"PIX QRS CEN", "TED JOAO", "DOC 123 XYZ"},
}

// Amount returns a random amount in [min, max) with two fractional digits.
func (g *FakeGenerator) Amount(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(g.faker.Float64Range(min, max)).Round(2)
}

// Date returns a random day within the last year relative to now.
func (g *FakeGenerator) Date(now time.Time) Date {
	return DateOf(g.faker.DateRange(now.AddDate(-1, 0, 0), now))
}

// Category returns a random category from the vocabulary.
func (g *FakeGenerator) Category() categorization.Category {
	all := categorization.All()
	return all[g.faker.Number(0, len(all)-1)]
}

// Description returns a merchant-like description the default rules assign to c.
func (g *FakeGenerator) Description(c categorization.Category) string {
	options := fakeMerchants[c]
	return options[g.faker.Number(0, len(options)-1)]
}

// Transaction returns a random transaction. Income categories get positive amounts;
// investments get either sign.
func (g *FakeGenerator) Transaction(now time.Time) Transaction {
	c := g.Category()
	amount := g.Amount(1, 5000)
	switch {
	case c == categorization.Receita:
	case c == categorization.Investimentos || c == categorization.NeedsReview:
		if g.faker.Bool() {
			amount = amount.Neg()
		}
	default:
		amount = amount.Neg()
	}
	return New(g.Date(now), g.Description(c), amount, c, SourceCSV)
}

// Transactions returns n random transactions.
func (g *FakeGenerator) Transactions(now time.Time, n int) []Transaction {
	txs := make([]Transaction, n)
	for i := range txs {
		txs[i] = g.Transaction(now)
	}
	return txs
}

// StatementLine renders a transaction the way it appears in a PDF statement text layer,
// e.g. "11/12/2025 PIX QRS CEN -49,13".
func (g *FakeGenerator) StatementLine(t Transaction) string {
	return fmt.Sprintf("%s %s %s", t.Date.String(), t.Description, money.FormatLocale(t.Amount))
}
