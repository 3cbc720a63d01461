package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/import/parser"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/import/service"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/ledger"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
	"github.com/FACorreiaa/extrato-ledger/pkg/storage"
)

const sampleCSV = "Data,Descrição,Valor\n2025-09-05,Salário Empresa XYZ,5000.00\n2025-09-06,Uber Trip,-23.90\n"

type testEnv struct {
	router  chi.Router
	ledger  *ledger.LedgerService
	archive *storage.LocalStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := categorization.NewDefaultEngine()

	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ingester := service.NewImportService(engine, nil, logger).
		WithClock(func() time.Time { return time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC) })
	ledgerSvc := ledger.NewLedgerService(ledger.NewMemoryStore(), nil, engine, nil, logger)

	r := chi.NewRouter()
	NewImportHandler(ingester, ledgerSvc, archive, 1<<20, logger).Routes(r)
	return &testEnv{router: r, ledger: ledgerSvc, archive: archive}
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	if contentType != "" {
		header["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, r http.Handler, field, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, field, filename, contentType, data)
	req := httptest.NewRequest(http.MethodPost, "/api/process-upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestProcessUpload_CSV(t *testing.T) {
	env := newTestEnv(t)

	rr := upload(t, env.router, "file", "extrato.csv", "text/csv", []byte(sampleCSV))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Message      string                    `json:"message"`
		Transactions []transaction.Transaction `json:"transacoes"`
		Metrics      map[string]json.Number    `json:"metricas"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "Processado com sucesso. 2 transações encontradas e salvas.", resp.Message)
	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, categorization.Transporte, resp.Transactions[1].Category)
	assert.Equal(t, "5000.00", resp.Metrics["receitas_total"].String())
	assert.Equal(t, "23.90", resp.Metrics["despesas_total"].String())
	assert.Equal(t, "2", resp.Metrics["total_transacoes"].String())

	stored, err := env.ledger.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	files, err := env.archive.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "extrato.csv", files[0].Name)
}

func TestProcessUpload_Errors(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		filename    string
		contentType string
		data        string
		wantStatus  int
	}{
		{
			name:       "unsupported extension",
			field:      "file",
			filename:   "extrato.ofx",
			data:       sampleCSV,
			wantStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:       "missing columns",
			field:      "file",
			filename:   "extrato.csv",
			data:       "Data,Valor\n2025-09-05,1\n",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "no valid rows",
			field:      "file",
			filename:   "extrato.csv",
			data:       "Data,Descrição,Valor\n2025-09-06,X,abc\n",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "wrong field name",
			field:      "statement",
			filename:   "extrato.csv",
			data:       sampleCSV,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := upload(t, env.router, tt.field, tt.filename, tt.contentType, []byte(tt.data))
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])

			stored, err := env.ledger.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, stored)
		})
	}
}

func TestProcessUpload_NotMultipart(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/process-upload", bytes.NewBufferString(sampleCSV))
	req.Header.Set("Content-Type", "text/csv")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListUploads(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/uploads", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	upload(t, env.router, "file", "extrato.csv", "", []byte(sampleCSV))

	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/uploads", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var files []storage.FileInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &files))
	require.Len(t, files, 1)
	assert.Equal(t, int64(len(sampleCSV)), files[0].Size)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported", parser.NewError(parser.KindUnsupportedFormat, "ofx", nil), http.StatusUnsupportedMediaType},
		{"missing columns", parser.NewError(parser.KindMissingColumns, "cols", nil), http.StatusUnprocessableEntity},
		{"no transactions", parser.ErrNoTransactionsFound, http.StatusUnprocessableEntity},
		{"parse failure", parser.NewError(parser.KindParseFailure, "pdf", parser.ErrUnreadableDocument), http.StatusUnprocessableEntity},
		{"canceled", context.Canceled, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
