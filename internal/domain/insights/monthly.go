package insights

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

// MonthlyTotals are the operational totals of one calendar month.
type MonthlyTotals struct {
	Month            string // YYYY-MM
	Income           decimal.Decimal
	Expenses         decimal.Decimal // absolute
	Invested         decimal.Decimal // net contributions minus withdrawals
	TransactionCount int
}

// Net is income minus expenses.
func (m MonthlyTotals) Net() decimal.Decimal {
	return m.Income.Sub(m.Expenses)
}

func (m MonthlyTotals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Month            string      `json:"mes"`
		Income           json.Number `json:"receitas"`
		Expenses         json.Number `json:"despesas"`
		Net              json.Number `json:"saldo"`
		Invested         json.Number `json:"investido"`
		TransactionCount int         `json:"total_transacoes"`
	}{m.Month, number(m.Income), number(m.Expenses), number(m.Net()), number(m.Invested), m.TransactionCount})
}

// ByMonth groups txs by calendar month, oldest first.
func ByMonth(txs []transaction.Transaction) []MonthlyTotals {
	byMonth := make(map[string]*MonthlyTotals)
	for _, tx := range txs {
		key := tx.Date.Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &MonthlyTotals{Month: key}
			byMonth[key] = m
		}
		m.TransactionCount++

		switch {
		case tx.IsInvestment():
			m.Invested = m.Invested.Sub(tx.Amount)
		case tx.Kind == transaction.KindIncome:
			m.Income = m.Income.Add(tx.Amount)
		default:
			m.Expenses = m.Expenses.Add(tx.Amount.Abs())
		}
	}

	months := make([]MonthlyTotals, 0, len(byMonth))
	for _, m := range byMonth {
		months = append(months, *m)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month < months[j].Month
	})
	return months
}
