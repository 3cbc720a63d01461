package insights

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

func newTx(day int, amount string, c categorization.Category) transaction.Transaction {
	return transaction.New(
		transaction.NewDate(2025, time.September, day),
		"lancamento",
		decimal.RequireFromString(amount),
		c,
		transaction.SourceCSV,
	)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Nil(t, Aggregate(nil))
	assert.Nil(t, Aggregate([]transaction.Transaction{}))
}

func TestAggregate_IncomeAndExpense(t *testing.T) {
	summary := Aggregate([]transaction.Transaction{
		newTx(5, "5000", categorization.Receita),
		newTx(6, "-2000", categorization.Moradia),
	})
	require.NotNil(t, summary)

	requireDecimal(t, "5000", summary.IncomeTotal)
	requireDecimal(t, "2000", summary.ExpenseTotal)
	requireDecimal(t, "3000", summary.Balance)
	requireDecimal(t, "60", summary.SavingsRate)
	requireDecimal(t, "0", summary.InvestmentContributions)
	requireDecimal(t, "0", summary.InvestmentWithdrawals)
	assert.Equal(t, 2, summary.TransactionCount)
	requireDecimal(t, "3000", summary.OperationalSurplus())
}

func TestAggregate_InvestmentFlows(t *testing.T) {
	summary := Aggregate([]transaction.Transaction{
		newTx(1, "4000", categorization.Receita),
		newTx(2, "-1000", categorization.Comida),
		newTx(3, "-1500", categorization.Investimentos),
		newTx(4, "-500", categorization.Investimentos),
		newTx(5, "300", categorization.Investimentos),
		newTx(6, "-49.13", categorization.NeedsReview),
	})
	require.NotNil(t, summary)

	requireDecimal(t, "4000", summary.IncomeTotal)
	requireDecimal(t, "1049.13", summary.ExpenseTotal)
	requireDecimal(t, "2000", summary.InvestmentContributions)
	requireDecimal(t, "300", summary.InvestmentWithdrawals)
	requireDecimal(t, "1250.87", summary.Balance)
	// (4000 - 1049.13) / 4000 * 100
	requireDecimal(t, "73.77175", summary.SavingsRate)
}

func TestAggregate_NoIncome(t *testing.T) {
	summary := Aggregate([]transaction.Transaction{
		newTx(1, "-10", categorization.Lazer),
		newTx(2, "0", categorization.NeedsReview),
		newTx(3, "800", categorization.Investimentos),
	})
	require.NotNil(t, summary)

	requireDecimal(t, "0", summary.IncomeTotal)
	requireDecimal(t, "10", summary.ExpenseTotal)
	requireDecimal(t, "0", summary.SavingsRate)
	requireDecimal(t, "790", summary.Balance)
}

func TestAggregate_NegativeSavingsRate(t *testing.T) {
	summary := Aggregate([]transaction.Transaction{
		newTx(1, "1000", categorization.Receita),
		newTx(2, "-1500", categorization.Lazer),
	})
	requireDecimal(t, "-50", summary.SavingsRate)
}

func TestAggregate_BalanceIsSumOfAmounts(t *testing.T) {
	now := time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC)

	for seed := int64(1); seed <= 20; seed++ {
		txs := transaction.NewFakeGenerator(seed).Transactions(now, 50+int(seed)*7)

		sum := decimal.Zero
		for _, tx := range txs {
			sum = sum.Add(tx.Amount)
		}

		summary := Aggregate(txs)
		require.NotNil(t, summary)
		assert.True(t, sum.Equal(summary.Balance), "seed %d: want %s, got %s", seed, sum, summary.Balance)
		assert.Equal(t, len(txs), summary.TransactionCount)

		// balance = income - expenses - contributions + withdrawals
		recomposed := summary.IncomeTotal.
			Sub(summary.ExpenseTotal).
			Sub(summary.InvestmentContributions).
			Add(summary.InvestmentWithdrawals)
		assert.True(t, recomposed.Equal(summary.Balance), "seed %d", seed)
	}
}

func TestAggregate_KeepsPrecision(t *testing.T) {
	txs := make([]transaction.Transaction, 0, 3)
	for i := 0; i < 3; i++ {
		txs = append(txs, newTx(1, "0.005", categorization.Receita))
	}
	summary := Aggregate(txs)
	requireDecimal(t, "0.015", summary.IncomeTotal)
}

func TestMetricsSummary_JSON(t *testing.T) {
	summary := Aggregate([]transaction.Transaction{
		newTx(1, "3000", categorization.Receita),
		newTx(2, "-1000.005", categorization.Comida),
	})

	raw, err := json.Marshal(summary)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"receitas_total": 3000.00,
		"despesas_total": 1000.01,
		"saldo": 2000.00,
		"investimentos_total": 0,
		"investimentos_resgates": 0,
		"taxa_poupanca": 66.67,
		"total_transacoes": 2
	}`, string(raw))
}
