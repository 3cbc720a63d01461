package insights

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

type stubLister struct {
	txs []transaction.Transaction
	err error
}

func (s *stubLister) List(context.Context) ([]transaction.Transaction, error) {
	return s.txs, s.err
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_Summary(t *testing.T) {
	store := &stubLister{txs: []transaction.Transaction{
		newTx(1, "5000", categorization.Receita),
		newTx(2, "-2000", categorization.Moradia),
	}}
	svc := NewService(store, nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	requireDecimal(t, "60", summary.SavingsRate)

	store.txs = nil
	summary, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestService_Dashboard(t *testing.T) {
	svc := NewService(&stubLister{txs: []transaction.Transaction{
		newTx(1, "-80", categorization.Saude),
		newTx(2, "-200", categorization.Investimentos),
	}}, nil)

	data, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, data.ExpensesByCategory, 2)
	requireDecimal(t, "200", data.Invested)
	require.NotNil(t, data.Metrics)
}

func TestService_StoreError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewService(&stubLister{err: boom}, nil)

	_, err := svc.Summary(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = svc.Dashboard(context.Background())
	assert.ErrorIs(t, err, boom)
}
