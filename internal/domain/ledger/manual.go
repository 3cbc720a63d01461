package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

// Flow marks a manual entry as an investment movement.
type Flow string

const (
	FlowNone         Flow = ""
	FlowContribution Flow = "Aporte"
	FlowWithdrawal   Flow = "Resgate"
)

// ManualEntry is a transaction typed in by the user rather than read from a statement.
type ManualEntry struct {
	Date        transaction.Date
	Description string
	Amount      decimal.Decimal
	// Category is optional; when nil the description goes through the categorizer.
	Category *categorization.Category
	// Kind optionally signs Amount: Despesa stores -|Amount|, Receita +|Amount|.
	Kind    transaction.Kind
	Flow    Flow
	DueDate *transaction.Date
}

// Build validates e and produces the transaction to store. Investment flows take
// precedence over Kind and Category: a contribution leaves the account (negative) and a
// withdrawal returns to it (positive), both in Investimentos.
func (e ManualEntry) Build(categorizer Categorizer) (transaction.Transaction, error) {
	description := strings.TrimSpace(e.Description)
	if description == "" {
		return transaction.Transaction{}, fmt.Errorf("%w: description is required", ErrInvalidEntry)
	}
	if e.Date.IsZero() {
		return transaction.Transaction{}, fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}
	if e.Amount.IsZero() {
		return transaction.Transaction{}, fmt.Errorf("%w: amount must not be zero", ErrInvalidEntry)
	}

	amount := e.Amount
	var category categorization.Category

	switch e.Flow {
	case FlowContribution:
		amount = amount.Abs().Neg()
		category = categorization.Investimentos
	case FlowWithdrawal:
		amount = amount.Abs()
		category = categorization.Investimentos
	case FlowNone:
		switch e.Kind {
		case transaction.KindExpense:
			amount = amount.Abs().Neg()
		case transaction.KindIncome:
			amount = amount.Abs()
		case "":
		default:
			return transaction.Transaction{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, e.Kind)
		}

		switch {
		case e.Category != nil:
			if !e.Category.Valid() {
				return transaction.Transaction{}, fmt.Errorf("%w: unknown category", ErrInvalidEntry)
			}
			category = *e.Category
		case categorizer != nil:
			category = categorizer.Categorize(description, amount)
		default:
			category = categorization.NeedsReview
		}
	default:
		return transaction.Transaction{}, fmt.Errorf("%w: unknown investment flow %q", ErrInvalidEntry, e.Flow)
	}

	tx := transaction.New(e.Date, description, amount, category, transaction.SourceManual)
	return tx.WithDueDate(e.DueDate), nil
}
