package insights

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

// TransactionLister is the read side of the ledger.
type TransactionLister interface {
	List(ctx context.Context) ([]transaction.Transaction, error)
}

// Service computes insights over the stored transactions on every call.
type Service struct {
	store  TransactionLister
	logger *slog.Logger
}

// NewService creates a new insights service
func NewService(store TransactionLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Summary aggregates every stored transaction. It returns nil when the ledger is empty.
func (s *Service) Summary(ctx context.Context) (*MetricsSummary, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return Aggregate(txs), nil
}

// Dashboard builds the dashboard charts from every stored transaction.
func (s *Service) Dashboard(ctx context.Context) (*DashboardData, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	data := Dashboard(txs)
	s.logger.DebugContext(ctx, "dashboard computed",
		slog.Int("transactions", len(txs)),
		slog.Int("categories", len(data.ExpensesByCategory)),
		slog.Int("investment_points", len(data.InvestmentsEvolution)),
	)
	return data, nil
}
