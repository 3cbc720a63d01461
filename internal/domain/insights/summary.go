// Package insights computes aggregate metrics and dashboard series from transactions.
package insights

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
	"github.com/FACorreiaa/extrato-ledger/pkg/money"
)

var hundred = decimal.NewFromInt(100)

// MetricsSummary holds the aggregate figures of a transaction set. Values keep full
// precision; they are rounded to cents only when rendered.
type MetricsSummary struct {
	IncomeTotal             decimal.Decimal // operational income
	ExpenseTotal            decimal.Decimal // operational expenses, absolute
	Balance                 decimal.Decimal // sum of every amount, investments included
	InvestmentContributions decimal.Decimal // absolute
	InvestmentWithdrawals   decimal.Decimal
	SavingsRate             decimal.Decimal // percent of operational income
	TransactionCount        int
}

// Aggregate computes the summary of txs. It returns nil for an empty input.
//
// Investimentos transactions are kept out of income and expenses: contributions
// (expenses) and withdrawals (income) are reported separately, and the savings rate is
// the operational surplus over operational income.
func Aggregate(txs []transaction.Transaction) *MetricsSummary {
	if len(txs) == 0 {
		return nil
	}

	var income, expenses, contributions, withdrawals, balance decimal.Decimal
	for _, tx := range txs {
		balance = balance.Add(tx.Amount)

		investment := tx.Category == categorization.Investimentos
		switch {
		case investment && tx.Kind == transaction.KindIncome:
			withdrawals = withdrawals.Add(tx.Amount)
		case investment:
			contributions = contributions.Add(tx.Amount)
		case tx.Kind == transaction.KindIncome:
			income = income.Add(tx.Amount)
		default:
			expenses = expenses.Add(tx.Amount)
		}
	}

	summary := &MetricsSummary{
		IncomeTotal:             income,
		ExpenseTotal:            expenses.Abs(),
		Balance:                 balance,
		InvestmentContributions: contributions.Abs(),
		InvestmentWithdrawals:   withdrawals,
		SavingsRate:             decimal.Zero,
		TransactionCount:        len(txs),
	}
	if income.IsPositive() {
		summary.SavingsRate = income.Sub(summary.ExpenseTotal).Div(income).Mul(hundred)
	}
	return summary
}

// OperationalSurplus is income minus expenses, excluding investment flows.
func (m *MetricsSummary) OperationalSurplus() decimal.Decimal {
	return m.IncomeTotal.Sub(m.ExpenseTotal)
}

type wireSummary struct {
	IncomeTotal             json.Number `json:"receitas_total"`
	ExpenseTotal            json.Number `json:"despesas_total"`
	Balance                 json.Number `json:"saldo"`
	InvestmentContributions json.Number `json:"investimentos_total"`
	InvestmentWithdrawals   json.Number `json:"investimentos_resgates"`
	SavingsRate             json.Number `json:"taxa_poupanca"`
	TransactionCount        int         `json:"total_transacoes"`
}

// MarshalJSON renders every amount as a number rounded to two fractional digits.
func (m MetricsSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSummary{
		IncomeTotal:             number(m.IncomeTotal),
		ExpenseTotal:            number(m.ExpenseTotal),
		Balance:                 number(m.Balance),
		InvestmentContributions: number(m.InvestmentContributions),
		InvestmentWithdrawals:   number(m.InvestmentWithdrawals),
		SavingsRate:             number(m.SavingsRate),
		TransactionCount:        m.TransactionCount,
	})
}

func number(d decimal.Decimal) json.Number {
	return json.Number(money.Round(d).StringFixed(2))
}
