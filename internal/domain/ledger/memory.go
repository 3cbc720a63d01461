package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

// MemoryStore keeps transactions in process memory. It backs single-session use and
// tests.
type MemoryStore struct {
	mu    sync.RWMutex
	txs   []transaction.Transaction // insertion order
	index map[uuid.UUID]int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[uuid.UUID]int)}
}

// Append stores txs. The batch is rejected as a whole if any ID is already stored.
func (s *MemoryStore) Append(_ context.Context, txs ...transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[uuid.UUID]struct{}, len(txs))
	for _, tx := range txs {
		_, stored := s.index[tx.ID]
		_, batched := seen[tx.ID]
		if stored || batched {
			return fmt.Errorf("failed to append %s: %w", tx.ID, ErrDuplicateID)
		}
		seen[tx.ID] = struct{}{}
	}

	for _, tx := range txs {
		s.index[tx.ID] = len(s.txs)
		s.txs = append(s.txs, tx)
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]transaction.Transaction, error) {
	s.mu.RLock()
	out := make([]transaction.Transaction, len(s.txs))
	for i, tx := range s.txs {
		out[len(s.txs)-1-i] = tx
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Date.Before(out[i].Date)
	})
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return transaction.Transaction{}, ErrNotFound
	}
	return s.txs[i], nil
}

func (s *MemoryStore) ReplaceCategory(_ context.Context, id uuid.UUID, c categorization.Category) (transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return transaction.Transaction{}, ErrNotFound
	}
	s.txs[i] = s.txs[i].WithCategory(c)
	return s.txs[i], nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	s.txs = append(s.txs[:i], s.txs[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.txs); j++ {
		s.index[s.txs[j].ID] = j
	}
	return nil
}

func (s *MemoryStore) ClearAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.txs)
	s.txs = nil
	s.index = make(map[uuid.UUID]int)
	return n, nil
}
