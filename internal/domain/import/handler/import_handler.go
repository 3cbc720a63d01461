// Package handler exposes statement ingestion over HTTP.
package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/import/parser"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/insights"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
	"github.com/FACorreiaa/extrato-ledger/pkg/httpjson"
	"github.com/FACorreiaa/extrato-ledger/pkg/storage"
)

// uploadField is the multipart field carrying the statement.
const uploadField = "file"

// Ingester turns an uploaded file into categorized transactions.
type Ingester interface {
	IngestFile(ctx context.Context, filename, contentType string, data []byte) ([]transaction.Transaction, error)
}

// Ledger persists an ingested batch.
type Ledger interface {
	Import(ctx context.Context, txs []transaction.Transaction) error
}

// ImportHandler handles statement uploads
type ImportHandler struct {
	importSvc Ingester
	ledger    Ledger
	archive   storage.Storage
	maxUpload int64
	logger    *slog.Logger
}

// NewImportHandler creates a new import handler. archive may be nil to skip keeping the
// uploaded files.
func NewImportHandler(importSvc Ingester, ledger Ledger, archive storage.Storage, maxUpload int64, logger *slog.Logger) *ImportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportHandler{
		importSvc: importSvc,
		ledger:    ledger,
		archive:   archive,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Routes mounts the import endpoints on r.
func (h *ImportHandler) Routes(r chi.Router) {
	r.Post("/api/process-upload", h.ProcessUpload)
	r.Get("/api/uploads", h.ListUploads)
}

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Message      string                    `json:"message"`
	Transactions []transaction.Transaction `json:"transacoes"`
	Metrics      *insights.MetricsSummary  `json:"metricas"`
}

// ProcessUpload ingests the statement in the "file" multipart field, stores the
// transactions and returns them with their metrics.
func (h *ImportHandler) ProcessUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpjson.Error(w, http.StatusRequestEntityTooLarge, "arquivo excede o tamanho máximo permitido")
			return
		}
		httpjson.Error(w, http.StatusBadRequest, "requisição multipart inválida")
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "nenhum arquivo enviado no campo \"file\"")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "falha ao ler o arquivo enviado")
		return
	}
	contentType := header.Header.Get("Content-Type")

	txs, err := h.importSvc.IngestFile(r.Context(), header.Filename, contentType, data)
	if err != nil {
		status := StatusFor(err)
		h.logger.Warn("statement rejected",
			slog.String("filename", header.Filename),
			slog.Int("status", status),
			slog.Any("error", err),
		)
		httpjson.Error(w, status, err.Error())
		return
	}

	if err := h.ledger.Import(r.Context(), txs); err != nil {
		h.logger.Error("failed to store imported transactions", slog.Any("error", err))
		httpjson.Error(w, http.StatusInternalServerError, "falha ao salvar as transações")
		return
	}
	h.archiveUpload(r.Context(), header.Filename, contentType, data)

	httpjson.Write(w, http.StatusOK, UploadResponse{
		Message:      fmt.Sprintf("Processado com sucesso. %d transações encontradas e salvas.", len(txs)),
		Transactions: txs,
		Metrics:      insights.Aggregate(txs),
	})
}

// ListUploads returns the archived statements, newest first.
func (h *ImportHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		httpjson.Write(w, http.StatusOK, []*storage.FileInfo{})
		return
	}
	files, err := h.archive.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list archived uploads", slog.Any("error", err))
		httpjson.Error(w, http.StatusInternalServerError, "falha ao listar arquivos")
		return
	}
	httpjson.Write(w, http.StatusOK, files)
}

func (h *ImportHandler) archiveUpload(ctx context.Context, filename, contentType string, data []byte) {
	if h.archive == nil {
		return
	}
	info, err := h.archive.Save(ctx, filename, contentType, bytes.NewReader(data))
	if err != nil {
		h.logger.Warn("failed to archive upload", slog.String("filename", filename), slog.Any("error", err))
		return
	}
	h.logger.Debug("upload archived", slog.String("id", info.ID.String()), slog.String("sha256", info.SHA256))
}

// StatusFor maps an ingestion error to its HTTP status code.
func StatusFor(err error) int {
	switch parser.KindOf(err) {
	case parser.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case parser.KindMissingColumns, parser.KindNoTransactionsFound, parser.KindParseFailure, parser.KindUnreadableDocument:
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
