// Package ledger persists transactions and serves the read models built on them:
// listing, the review queue and full-text search.
package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

var (
	ErrNotFound     = errors.New("transaction not found")
	ErrDuplicateID  = errors.New("transaction id already stored")
	ErrInvalidEntry = errors.New("invalid transaction entry")
)

// Store is the persistence boundary for transactions.
//
// List returns transactions by date descending; transactions on the same day come
// most recently appended first.
type Store interface {
	Append(ctx context.Context, txs ...transaction.Transaction) error
	List(ctx context.Context) ([]transaction.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (transaction.Transaction, error)
	ReplaceCategory(ctx context.Context, id uuid.UUID, c categorization.Category) (transaction.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ClearAll(ctx context.Context) (int, error)
}
