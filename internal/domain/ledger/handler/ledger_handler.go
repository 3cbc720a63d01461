// Package handler exposes the stored transactions over HTTP.
package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/insights"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/ledger"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/report"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
	"github.com/FACorreiaa/extrato-ledger/pkg/httpjson"
)

const exportFilename = "extrato.xlsx"

// Ledger is the subset of the ledger service the handler drives.
type Ledger interface {
	List(ctx context.Context) ([]transaction.Transaction, error)
	Search(ctx context.Context, q string, limit int) ([]transaction.Transaction, error)
	AddManual(ctx context.Context, entry ledger.ManualEntry) (transaction.Transaction, error)
	PendingReview(ctx context.Context) ([]transaction.Transaction, error)
	ReplaceCategory(ctx context.Context, id uuid.UUID, c categorization.Category) (transaction.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ClearAll(ctx context.Context) (int, error)
}

// LedgerHandler serves the transaction endpoints
type LedgerHandler struct {
	ledger       Ledger
	defaultLimit int
	logger       *slog.Logger
}

// NewLedgerHandler creates a ledger handler. defaultLimit caps search results when the
// request has no limit parameter.
func NewLedgerHandler(l Ledger, defaultLimit int, logger *slog.Logger) *LedgerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerHandler{ledger: l, defaultLimit: defaultLimit, logger: logger}
}

// Routes mounts the ledger endpoints on r.
func (h *LedgerHandler) Routes(r chi.Router) {
	r.Get("/api/transactions", h.ListTransactions)
	r.Post("/api/transactions", h.CreateTransaction)
	r.Get("/api/transactions/review", h.PendingReview)
	r.Put("/api/transactions/{id}", h.UpdateCategory)
	r.Delete("/api/transactions/{id}", h.DeleteTransaction)
	r.Delete("/api/transactions-all", h.DeleteAll)
	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/export.xlsx", h.Export)
}

// ManualEntryRequest is the body of POST /api/transactions.
type ManualEntryRequest struct {
	Date        transaction.Date         `json:"data"`
	Description string                   `json:"descricao"`
	Amount      decimal.Decimal          `json:"valor"`
	Category    *categorization.Category `json:"categoria,omitempty"`
	Kind        transaction.Kind         `json:"tipo,omitempty"`
	Flow        ledger.Flow              `json:"tipo_investimento,omitempty"`
	DueDate     *transaction.Date        `json:"data_vencimento,omitempty"`
}

// CategoryRequest is the body of PUT /api/transactions/{id}.
type CategoryRequest struct {
	Category *categorization.Category `json:"categoria"`
}

// DeleteAllResponse reports how many transactions DELETE /api/transactions-all removed.
type DeleteAllResponse struct {
	Message string `json:"message"`
	Deleted int    `json:"removidas"`
}

// ListTransactions lists the ledger, or searches it when q is present.
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpjson.Error(w, http.StatusBadRequest, "limit deve ser um inteiro positivo")
			return
		}
		limit = n
	}

	txs, err := h.ledger.Search(r.Context(), q, limit)
	if err != nil {
		h.fail(w, "failed to list transactions", err)
		return
	}
	httpjson.Write(w, http.StatusOK, txs)
}

// CreateTransaction stores a manual entry.
func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req ManualEntryRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.ledger.AddManual(r.Context(), ledger.ManualEntry{
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Kind:        req.Kind,
		Flow:        req.Flow,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.fail(w, "failed to add manual transaction", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, tx)
}

// PendingReview lists the transactions waiting for a category.
func (h *LedgerHandler) PendingReview(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.PendingReview(r.Context())
	if err != nil {
		h.fail(w, "failed to list pending review", err)
		return
	}
	httpjson.Write(w, http.StatusOK, txs)
}

// UpdateCategory replaces the category of one transaction.
func (h *LedgerHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Category == nil {
		httpjson.Error(w, http.StatusBadRequest, "categoria é obrigatória")
		return
	}

	tx, err := h.ledger.ReplaceCategory(r.Context(), id, *req.Category)
	if err != nil {
		h.fail(w, "failed to replace category", err)
		return
	}
	httpjson.Write(w, http.StatusOK, tx)
}

// DeleteTransaction removes one transaction.
func (h *LedgerHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.ledger.Delete(r.Context(), id); err != nil {
		h.fail(w, "failed to delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll empties the ledger.
func (h *LedgerHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.ledger.ClearAll(r.Context())
	if err != nil {
		h.fail(w, "failed to clear ledger", err)
		return
	}
	httpjson.Write(w, http.StatusOK, DeleteAllResponse{
		Message: "Todas as transações foram removidas.",
		Deleted: n,
	})
}

// ListCategories returns the category vocabulary in display order.
func (h *LedgerHandler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	httpjson.Write(w, http.StatusOK, categorization.All())
}

// Export downloads the ledger and its summary as an xlsx workbook.
func (h *LedgerHandler) Export(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.List(r.Context())
	if err != nil {
		h.fail(w, "failed to list transactions for export", err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, txs, insights.Aggregate(txs)); err != nil {
		h.fail(w, "failed to build workbook", err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write workbook", slog.Any("error", err))
	}
}

func (h *LedgerHandler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "transação não encontrada")
	case errors.Is(err, ledger.ErrInvalidEntry):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrDuplicateID):
		httpjson.Error(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error(msg, slog.Any("error", err))
		httpjson.Error(w, http.StatusInternalServerError, "erro interno do servidor")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "id de transação inválido")
		return uuid.Nil, false
	}
	return id, true
}
