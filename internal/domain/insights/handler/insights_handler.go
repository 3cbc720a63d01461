// Package handler serves the dashboard and summary endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/insights"
	"github.com/FACorreiaa/extrato-ledger/pkg/httpjson"
)

// Insights computes the read models over the ledger.
type Insights interface {
	Summary(ctx context.Context) (*insights.MetricsSummary, error)
	Dashboard(ctx context.Context) (*insights.DashboardData, error)
}

// InsightsHandler serves the insights endpoints.
type InsightsHandler struct {
	svc    Insights
	logger *slog.Logger
}

// NewInsightsHandler constructs a new handler.
func NewInsightsHandler(svc Insights, logger *slog.Logger) *InsightsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightsHandler{svc: svc, logger: logger}
}

// Routes mounts the insights endpoints on r.
func (h *InsightsHandler) Routes(r chi.Router) {
	r.Get("/api/dashboard-charts", h.GetDashboard)
	r.Get("/api/summary", h.GetSummary)
}

// GetDashboard returns the expense pie, the investment evolution, the monthly series and
// the overall metrics.
func (h *InsightsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard", slog.Any("error", err))
		httpjson.Error(w, http.StatusInternalServerError, "falha ao gerar o painel")
		return
	}
	httpjson.Write(w, http.StatusOK, data)
}

// GetSummary returns the metrics over the whole ledger. An empty ledger reports zeros.
func (h *InsightsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		h.logger.Error("failed to compute summary", slog.Any("error", err))
		httpjson.Error(w, http.StatusInternalServerError, "falha ao calcular as métricas")
		return
	}
	if summary == nil {
		summary = &insights.MetricsSummary{}
	}
	httpjson.Write(w, http.StatusOK, summary)
}
