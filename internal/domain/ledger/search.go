package ledger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

const defaultSearchLimit = 50

// searchDocument is the indexed projection of a transaction.
type searchDocument struct {
	Description string `json:"description"`
	Category    string `json:"category"` // lowercased label
	Source      string `json:"source"`
}

// SearchIndex is an in-memory full-text index over transaction descriptions and
// category labels. It holds IDs only; the store stays the source of truth.
type SearchIndex struct {
	index   bleve.Index
	indexMu sync.RWMutex
}

// NewSearchIndex creates an empty in-memory index.
func NewSearchIndex() (*SearchIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &SearchIndex{index: index}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("source", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

func documentOf(tx transaction.Transaction) searchDocument {
	return searchDocument{
		Description: tx.Description,
		Category:    strings.ToLower(tx.Category.String()),
		Source:      string(tx.Source),
	}
}

// Index adds or replaces the documents for txs.
func (si *SearchIndex) Index(txs ...transaction.Transaction) error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	batch := si.index.NewBatch()
	for _, tx := range txs {
		if err := batch.Index(tx.ID.String(), documentOf(tx)); err != nil {
			return fmt.Errorf("failed to index transaction %s: %w", tx.ID, err)
		}
	}
	if err := si.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}
	return nil
}

// Remove drops the document for id. Removing an unknown id is a no-op.
func (si *SearchIndex) Remove(id uuid.UUID) error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	return si.index.Delete(id.String())
}

// Rebuild replaces the whole index content with txs.
func (si *SearchIndex) Rebuild(txs []transaction.Transaction) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	batch := fresh.NewBatch()
	for _, tx := range txs {
		if err := batch.Index(tx.ID.String(), documentOf(tx)); err != nil {
			_ = fresh.Close()
			return fmt.Errorf("failed to index transaction %s: %w", tx.ID, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		_ = fresh.Close()
		return fmt.Errorf("failed to execute batch index: %w", err)
	}

	si.indexMu.Lock()
	old := si.index
	si.index = fresh
	si.indexMu.Unlock()
	return old.Close()
}

// Search returns the IDs of transactions whose description matches every term of q
// (one edit of typo tolerance per term) or whose category label equals q, best
// match first.
func (si *SearchIndex) Search(q string, limit int) ([]uuid.UUID, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	matchQuery := bleve.NewMatchQuery(q)
	matchQuery.SetField("description")
	matchQuery.SetFuzziness(1)
	matchQuery.SetOperator(query.MatchQueryOperatorAnd)

	termQuery := bleve.NewTermQuery(strings.ToLower(q))
	termQuery.SetField("category")

	searchRequest := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(matchQuery, termQuery))
	searchRequest.Size = limit

	si.indexMu.RLock()
	searchResults, err := si.index.Search(searchRequest)
	si.indexMu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DocumentCount returns the number of documents in the index
func (si *SearchIndex) DocumentCount() (uint64, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	return si.index.DocCount()
}

// Close closes the index
func (si *SearchIndex) Close() error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	return si.index.Close()
}
