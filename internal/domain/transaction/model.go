// Package transaction defines the statement transaction record shared by the import
// pipeline, the ledger store and the insights aggregator.
package transaction

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/pkg/money"
)

// Kind is the direction of a transaction, derived from the amount sign.
type Kind string

const (
	KindIncome  Kind = "Receita"
	KindExpense Kind = "Despesa"
)

// KindOf returns KindIncome for positive amounts and KindExpense otherwise.
// A zero amount is an expense.
func KindOf(amount decimal.Decimal) Kind {
	if amount.IsPositive() {
		return KindIncome
	}
	return KindExpense
}

// Source is the provenance of a transaction.
type Source string

const (
	SourcePDF    Source = "PDF"
	SourceCSV    Source = "CSV"
	SourceManual Source = "Manual"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourcePDF, SourceCSV, SourceManual:
		return true
	}
	return false
}

// Transaction is one financial movement recovered from a statement or entered by hand.
// Values are immutable; corrections go through WithCategory.
type Transaction struct {
	ID          uuid.UUID
	Date        Date
	Description string
	Amount      decimal.Decimal
	Category    categorization.Category
	Kind        Kind
	Source      Source
	DueDate     *Date
}

// New builds a transaction with a fresh ID and a kind derived from amount.
func New(date Date, description string, amount decimal.Decimal, category categorization.Category, source Source) Transaction {
	return Transaction{
		ID:          uuid.New(),
		Date:        date,
		Description: description,
		Amount:      amount,
		Category:    category,
		Kind:        KindOf(amount),
		Source:      source,
	}
}

// WithCategory returns a copy of t with its category replaced.
func (t Transaction) WithCategory(c categorization.Category) Transaction {
	t.Category = c
	return t
}

// WithDueDate returns a copy of t with its due date set.
func (t Transaction) WithDueDate(d *Date) Transaction {
	if d == nil {
		t.DueDate = nil
		return t
	}
	due := *d
	t.DueDate = &due
	return t
}

// NeedsReview reports whether no keyword rule matched the transaction.
func (t Transaction) NeedsReview() bool {
	return t.Category == categorization.NeedsReview
}

// IsInvestment reports whether the transaction belongs to the investment category.
func (t Transaction) IsInvestment() bool {
	return t.Category.IsInvestment()
}

// wireTransaction is the JSON shape exchanged with clients.
type wireTransaction struct {
	ID          uuid.UUID               `json:"id"`
	Date        Date                    `json:"data"`
	Description string                  `json:"descricao"`
	Amount      json.Number             `json:"valor"`
	Category    categorization.Category `json:"categoria"`
	Kind        Kind                    `json:"tipo"`
	Source      Source                  `json:"fonte"`
	DueDate     *Date                   `json:"data_vencimento,omitempty"`
}

// MarshalJSON encodes the amount rounded to cents.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireTransaction{
		ID:          t.ID,
		Date:        t.Date,
		Description: t.Description,
		Amount:      json.Number(money.Round(t.Amount).StringFixed(2)),
		Category:    t.Category,
		Kind:        t.Kind,
		Source:      t.Source,
		DueDate:     t.DueDate,
	})
}

// UnmarshalJSON decodes the wire shape and re-derives the kind from the amount.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var w wireTransaction
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(w.Amount.String())
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", w.Amount, err)
	}
	*t = Transaction{
		ID:          w.ID,
		Date:        w.Date,
		Description: w.Description,
		Amount:      amount,
		Category:    w.Category,
		Kind:        KindOf(amount),
		Source:      w.Source,
		DueDate:     w.DueDate,
	}
	return nil
}
