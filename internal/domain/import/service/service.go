// Package service provides the import orchestration logic: format dispatch, parsing,
// and categorization of recovered lines into transactions.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/import/parser"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
	"github.com/FACorreiaa/extrato-ledger/pkg/metrics"
)

var tracer = otel.Tracer("github.com/FACorreiaa/extrato-ledger/import")

// Categorizer assigns a category to a transaction description.
type Categorizer interface {
	Categorize(description string, amount decimal.Decimal) categorization.Category
}

// ImportService turns statement bytes into categorized transactions.
// It holds no per-request state and is safe for concurrent use.
type ImportService struct {
	categorizer Categorizer
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewImportService creates a new import service. m may be nil.
func NewImportService(categorizer Categorizer, m *metrics.Metrics, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{
		categorizer: categorizer,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for year inference on PDF dates.
func (s *ImportService) WithClock(now func() time.Time) *ImportService {
	s.now = now
	return s
}

// IngestFile resolves the file kind from the filename and declared content type, then
// ingests data.
func (s *ImportService) IngestFile(ctx context.Context, filename, contentType string, data []byte) ([]transaction.Transaction, error) {
	kind := parser.DetectFileKind(filename, contentType)
	if kind == parser.FileUnknown {
		s.metrics.ObserveImport("unknown", string(parser.KindUnsupportedFormat), 0, 0)
		return nil, parser.NewError(parser.KindUnsupportedFormat,
			fmt.Sprintf("unsupported file %q: only .pdf and .csv statements are accepted", filename), nil)
	}
	return s.Ingest(ctx, data, kind)
}

// Ingest parses a PDF or CSV statement and categorizes every recovered line.
// Extraction and structure failures are returned as ParseFailure wrapping the specific
// kind; a document that yields no transactions is a NoTransactionsFound error.
func (s *ImportService) Ingest(ctx context.Context, data []byte, kind parser.FileKind) ([]transaction.Transaction, error) {
	ctx, span := tracer.Start(ctx, "ImportService.Ingest", trace.WithAttributes(
		attribute.String("import.kind", string(kind)),
		attribute.Int("import.bytes", len(data)),
	))
	defer span.End()

	start := time.Now()
	txs, err := s.ingest(ctx, data, kind)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveImport(kindLabel(kind), outcomeOf(err), elapsed, 0)
		s.logger.WarnContext(ctx, "statement ingestion failed",
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("import.transactions", len(txs)))
	s.metrics.ObserveImport(kindLabel(kind), "success", elapsed, len(txs))
	return txs, nil
}

func (s *ImportService) ingest(ctx context.Context, data []byte, kind parser.FileKind) ([]transaction.Transaction, error) {
	var (
		result *parser.ParseResult
		source transaction.Source
	)

	switch kind {
	case parser.FilePDF:
		text, err := parser.ExtractText(data)
		if err != nil {
			return nil, parser.NewError(parser.KindParseFailure, "failed to read PDF statement", err)
		}
		result = parser.ParseStatementText(text, s.now())
		source = transaction.SourcePDF
	case parser.FileCSV:
		res, err := parser.ParseCSV(data)
		if err != nil {
			return nil, parser.NewError(parser.KindParseFailure, "failed to read CSV statement", err)
		}
		result = res
		source = transaction.SourceCSV
	default:
		return nil, parser.NewError(parser.KindUnsupportedFormat,
			fmt.Sprintf("unsupported file kind %q: expected pdf or csv", kind), nil)
	}

	s.metrics.AddSkippedRows(string(kind), "invalid", result.SkippedRows)
	s.metrics.AddSkippedRows(string(kind), "balance", result.FilteredRows)
	for _, pe := range result.Errors {
		s.logger.DebugContext(ctx, "skipped statement row",
			slog.Int("row", pe.Row),
			slog.String("column", pe.Column),
			slog.String("reason", pe.Message),
		)
	}

	if len(result.Lines) == 0 {
		return nil, parser.NewError(parser.KindNoTransactionsFound,
			fmt.Sprintf("no transactions found in %s statement (%d rows examined, %d skipped)",
				kind, result.TotalRows, result.SkippedRows), nil)
	}

	txs, err := s.categorizeLines(ctx, result.Lines, source)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "statement ingested",
		slog.String("kind", string(kind)),
		slog.Int("transactions", len(txs)),
		slog.Int("skipped", result.SkippedRows),
		slog.Int("filtered", result.FilteredRows),
	)
	return txs, nil
}

// categorizeLines builds one transaction per line, in input order. It stops early when
// ctx is cancelled.
func (s *ImportService) categorizeLines(ctx context.Context, lines []parser.Line, source transaction.Source) ([]transaction.Transaction, error) {
	txs := make([]transaction.Transaction, 0, len(lines))
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to categorize transactions: %w", err)
		}
		category := s.categorizer.Categorize(line.Description, line.Amount)
		txs = append(txs, transaction.New(line.Date, line.Description, line.Amount, category, source))
		s.metrics.IncCategorized(category.String())
	}
	return txs, nil
}

func kindLabel(kind parser.FileKind) string {
	if kind == parser.FileUnknown {
		return "unknown"
	}
	return string(kind)
}

// outcomeOf labels a failure by its innermost kind, so a ParseFailure wrapping
// MissingColumns is counted as missing_columns.
func outcomeOf(err error) string {
	outcome := "error"
	var e *parser.Error
	for errors.As(err, &e) {
		outcome = string(e.Kind)
		err = e.Err
	}
	return outcome
}
