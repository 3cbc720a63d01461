package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
	"github.com/FACorreiaa/extrato-ledger/pkg/metrics"
)

var tracer = otel.Tracer("github.com/FACorreiaa/extrato-ledger/ledger")

// Categorizer assigns a category to a transaction description.
type Categorizer interface {
	Categorize(description string, amount decimal.Decimal) categorization.Category
}

// LedgerService is the application-level owner of the stored transaction set. Every
// mutation goes through it so the search index and the size gauge stay in step with the
// store.
type LedgerService struct {
	store       Store
	index       *SearchIndex
	categorizer Categorizer
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewLedgerService creates a ledger service. index, categorizer and m may be nil; without
// an index Search falls back to fuzzy description matching over the full list.
func NewLedgerService(store Store, index *SearchIndex, categorizer Categorizer, m *metrics.Metrics, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		store:       store,
		index:       index,
		categorizer: categorizer,
		metrics:     m,
		logger:      logger,
	}
}

// Import stores a parsed batch and indexes it for search.
func (s *LedgerService) Import(ctx context.Context, txs []transaction.Transaction) error {
	ctx, span := tracer.Start(ctx, "ledger.Import")
	defer span.End()
	span.SetAttributes(attribute.Int("ledger.batch_size", len(txs)))

	if err := s.store.Append(ctx, txs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return fmt.Errorf("failed to store transactions: %w", err)
	}
	s.indexAll(txs)

	s.logger.Info("transactions stored", slog.Int("transactions", len(txs)))
	s.refreshSize(ctx)
	return nil
}

// AddManual validates and stores a manually entered transaction.
func (s *LedgerService) AddManual(ctx context.Context, entry ManualEntry) (transaction.Transaction, error) {
	ctx, span := tracer.Start(ctx, "ledger.AddManual")
	defer span.End()

	tx, err := entry.Build(s.categorizer)
	if err != nil {
		return transaction.Transaction{}, err
	}
	if err := s.store.Append(ctx, tx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return transaction.Transaction{}, fmt.Errorf("failed to store manual transaction: %w", err)
	}
	s.indexAll([]transaction.Transaction{tx})

	s.logger.Info("manual transaction stored",
		slog.String("id", tx.ID.String()),
		slog.String("category", tx.Category.String()),
		slog.String("flow", string(entry.Flow)),
	)
	s.refreshSize(ctx)
	return tx, nil
}

// List returns every stored transaction, newest date first.
func (s *LedgerService) List(ctx context.Context) ([]transaction.Transaction, error) {
	return s.store.List(ctx)
}

// Get returns one transaction.
func (s *LedgerService) Get(ctx context.Context, id uuid.UUID) (transaction.Transaction, error) {
	return s.store.Get(ctx, id)
}

// PendingReview returns the transactions no keyword rule could categorize.
func (s *LedgerService) PendingReview(ctx context.Context) ([]transaction.Transaction, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]transaction.Transaction, 0)
	for _, tx := range txs {
		if tx.NeedsReview() {
			pending = append(pending, tx)
		}
	}
	return pending, nil
}

// ReplaceCategory applies a review correction.
func (s *LedgerService) ReplaceCategory(ctx context.Context, id uuid.UUID, c categorization.Category) (transaction.Transaction, error) {
	if !c.Valid() {
		return transaction.Transaction{}, fmt.Errorf("%w: unknown category", ErrInvalidEntry)
	}
	tx, err := s.store.ReplaceCategory(ctx, id, c)
	if err != nil {
		return transaction.Transaction{}, err
	}
	s.indexAll([]transaction.Transaction{tx})
	s.logger.Info("category replaced", slog.String("id", id.String()), slog.String("category", c.String()))
	return tx, nil
}

// Delete removes one transaction.
func (s *LedgerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.Remove(id); err != nil {
			s.logger.Warn("failed to remove transaction from search index", slog.String("id", id.String()), "error", err)
		}
	}
	s.refreshSize(ctx)
	return nil
}

// ClearAll removes every transaction and empties the search index.
func (s *LedgerService) ClearAll(ctx context.Context) (int, error) {
	n, err := s.store.ClearAll(ctx)
	if err != nil {
		return 0, err
	}
	if s.index != nil {
		if err := s.index.Rebuild(nil); err != nil {
			s.logger.Warn("failed to reset search index", "error", err)
		}
	}
	s.logger.Info("ledger cleared", slog.Int("transactions", n))
	s.metrics.SetLedgerSize(0)
	return n, nil
}

// Search returns the transactions matching q. An empty query lists everything.
func (s *LedgerService) Search(ctx context.Context, q string, limit int) ([]transaction.Transaction, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.store.List(ctx)
	}
	if s.index == nil {
		return s.scan(ctx, q, limit)
	}

	ids, err := s.index.Search(q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search transactions: %w", err)
	}

	txs := make([]transaction.Transaction, 0, len(ids))
	for _, id := range ids {
		tx, err := s.store.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// scan matches q against descriptions when no index is configured.
func (s *LedgerService) scan(ctx context.Context, q string, limit int) ([]transaction.Transaction, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	out := make([]transaction.Transaction, 0)
	for _, tx := range all {
		if len(out) == limit {
			break
		}
		if fuzzy.MatchNormalizedFold(q, tx.Description) || fuzzy.MatchNormalizedFold(q, tx.Category.String()) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Reindex rebuilds the search index from the store.
func (s *LedgerService) Reindex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	ctx, span := tracer.Start(ctx, "ledger.Reindex")
	defer span.End()

	txs, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to load transactions for reindex: %w", err)
	}
	if err := s.index.Rebuild(txs); err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int("ledger.indexed", len(txs)))
	s.logger.Debug("search index rebuilt", slog.Int("transactions", len(txs)))
	s.metrics.SetLedgerSize(len(txs))
	return nil
}

func (s *LedgerService) indexAll(txs []transaction.Transaction) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(txs...); err != nil {
		s.logger.Warn("failed to index transactions", slog.Int("transactions", len(txs)), "error", err)
	}
}

func (s *LedgerService) refreshSize(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	txs, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("failed to count stored transactions", "error", err)
		return
	}
	s.metrics.SetLedgerSize(len(txs))
}
