// Package metrics holds the Prometheus collectors exported by the ledger service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "extrato"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	importsTotal         *prometheus.CounterVec
	importedTransactions *prometheus.CounterVec
	skippedRows          *prometheus.CounterVec
	importDuration       *prometheus.HistogramVec
	categorized          *prometheus.CounterVec
	ledgerTransactions   prometheus.Gauge
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
}

// New creates the collectors and registers them on a private registry together with
// the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		importsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Statement ingestions by file kind and outcome.",
		}, []string{"kind", "outcome"}),
		importedTransactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_transactions_total",
			Help:      "Transactions recovered from statements.",
		}, []string{"kind"}),
		skippedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_rows_total",
			Help:      "Statement rows dropped during parsing.",
		}, []string{"kind", "reason"}),
		importDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time spent ingesting a statement.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		categorized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "categorized_transactions_total",
			Help:      "Transactions by assigned category.",
		}, []string{"category"}),
		ledgerTransactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_transactions",
			Help:      "Transactions currently held in the ledger.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.importsTotal,
		m.importedTransactions,
		m.skippedRows,
		m.importDuration,
		m.categorized,
		m.ledgerTransactions,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveImport records one ingestion attempt.
func (m *Metrics) ObserveImport(kind, outcome string, elapsed time.Duration, imported int) {
	if m == nil {
		return
	}
	m.importsTotal.WithLabelValues(kind, outcome).Inc()
	m.importDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if imported > 0 {
		m.importedTransactions.WithLabelValues(kind).Add(float64(imported))
	}
}

// AddSkippedRows counts rows dropped for reason ("invalid" or "balance").
func (m *Metrics) AddSkippedRows(kind, reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedRows.WithLabelValues(kind, reason).Add(float64(n))
}

// IncCategorized counts one transaction assigned to category.
func (m *Metrics) IncCategorized(category string) {
	if m == nil {
		return
	}
	m.categorized.WithLabelValues(category).Inc()
}

// SetLedgerSize reports the number of stored transactions.
func (m *Metrics) SetLedgerSize(n int) {
	if m == nil {
		return
	}
	m.ledgerTransactions.Set(float64(n))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
