package api

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/ledger"
	"github.com/FACorreiaa/extrato-ledger/pkg/metrics"
)

// categorizationAdapter feeds manual entries through the keyword engine and counts the
// result in the same metric statement imports use.
type categorizationAdapter struct {
	engine  *categorization.Engine
	metrics *metrics.Metrics
}

// newCategorizationAdapter creates a new adapter
func newCategorizationAdapter(engine *categorization.Engine, m *metrics.Metrics) ledger.Categorizer {
	return &categorizationAdapter{engine: engine, metrics: m}
}

// Categorize implements ledger.Categorizer
func (a *categorizationAdapter) Categorize(description string, amount decimal.Decimal) categorization.Category {
	c := a.engine.Categorize(description, amount)
	a.metrics.IncCategorized(c.String())
	return c
}
