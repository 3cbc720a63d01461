package insights

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

// CategorySlice is one slice of the expenses pie chart.
type CategorySlice struct {
	Category categorization.Category
	Value    decimal.Decimal // absolute
}

func (s CategorySlice) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string      `json:"name"`
		Value json.Number `json:"value"`
	}{s.Category.String(), number(s.Value)})
}

// EvolutionPoint is the invested total right after one investment transaction.
type EvolutionPoint struct {
	Date  transaction.Date
	Value decimal.Decimal
}

func (p EvolutionPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  transaction.Date `json:"data"`
		Value json.Number      `json:"valor"`
	}{p.Date, number(p.Value)})
}

// DashboardData feeds the dashboard charts.
type DashboardData struct {
	ExpensesByCategory   []CategorySlice  `json:"expenses_by_category"`
	InvestmentsEvolution []EvolutionPoint `json:"investments_evolution"`
	Monthly              []MonthlyTotals  `json:"monthly"`
	Metrics              *MetricsSummary  `json:"metrics"`
	Invested             decimal.Decimal  `json:"-"`
}

func (d DashboardData) MarshalJSON() ([]byte, error) {
	type plain DashboardData
	return json.Marshal(struct {
		plain
		Invested json.Number `json:"investido"`
	}{plain(d), number(d.Invested)})
}

// Dashboard builds the chart series for txs. An empty input yields empty series and no
// metrics.
func Dashboard(txs []transaction.Transaction) *DashboardData {
	evolution, invested := InvestmentsEvolution(txs)
	return &DashboardData{
		ExpensesByCategory:   ExpensesByCategory(txs),
		InvestmentsEvolution: evolution,
		Monthly:              ByMonth(txs),
		Metrics:              Aggregate(txs),
		Invested:             invested,
	}
}

// ExpensesByCategory sums expenses per category as absolute values, in canonical
// category order. Categories without expenses are omitted.
func ExpensesByCategory(txs []transaction.Transaction) []CategorySlice {
	totals := make(map[categorization.Category]decimal.Decimal)
	for _, tx := range txs {
		if tx.Kind != transaction.KindExpense {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}

	slices := make([]CategorySlice, 0, len(totals))
	for _, c := range categorization.All() {
		total, ok := totals[c]
		if !ok || total.IsZero() {
			continue
		}
		slices = append(slices, CategorySlice{Category: c, Value: total.Abs()})
	}
	return slices
}

// InvestmentsEvolution walks Investimentos transactions in ascending date order,
// adding contributions and subtracting withdrawals. It returns one point per
// transaction and the final invested total. Same-day transactions keep input order.
func InvestmentsEvolution(txs []transaction.Transaction) ([]EvolutionPoint, decimal.Decimal) {
	investments := make([]transaction.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.IsInvestment() {
			investments = append(investments, tx)
		}
	}
	sort.SliceStable(investments, func(i, j int) bool {
		return investments[i].Date.Before(investments[j].Date)
	})

	points := make([]EvolutionPoint, 0, len(investments))
	accumulated := decimal.Zero
	for _, tx := range investments {
		if tx.Kind == transaction.KindExpense {
			accumulated = accumulated.Add(tx.Amount.Abs())
		} else {
			accumulated = accumulated.Sub(tx.Amount)
		}
		points = append(points, EvolutionPoint{Date: tx.Date, Value: accumulated})
	}
	return points, accumulated
}
