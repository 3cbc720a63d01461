package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/import/sniffer"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

// Canonical header names written over the resolved columns before decoding.
const (
	headerDate        = "data"
	headerDescription = "descricao"
	headerAmount      = "valor"
)

// TransactionRow is a CSV row after its header has been rewritten to canonical names.
type TransactionRow struct {
	Date        string `csv:"data"`
	Description string `csv:"descricao"`
	Amount      string `csv:"valor"`
}

// currencyTokens are stripped from amount cells before parsing.
var currencyTokens = []string{"R$", "BRL", "$"}

// ParseCSV parses a CSV statement export. The header row may be preceded by preamble
// lines and may use ',', ';', tab or '|' as delimiter. Rows whose date or amount cannot
// be parsed are skipped; a header that lacks any logical column fails the document.
func ParseCSV(data []byte) (*ParseResult, error) {
	data = normalizeCSVBytes(data)

	cfg, err := sniffer.DetectConfig(data)
	if err != nil {
		if errors.Is(err, sniffer.ErrEmptyFile) {
			return nil, NewError(KindMissingColumns, "CSV has no header row", err)
		}
		return nil, NewError(KindMissingColumns, "failed to detect CSV header", err)
	}

	if missing := cfg.Columns.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, col := range missing {
			names[i] = string(col)
		}
		return nil, NewError(KindMissingColumns,
			fmt.Sprintf("missing required columns: %s (found: %s)",
				strings.Join(names, ", "), strings.Join(cfg.Headers, ", ")), nil)
	}

	records, lineNums, rowErrors := readRecords(data, cfg)
	if len(records) == 0 {
		return nil, NewError(KindMissingColumns, "CSV has no header row", nil)
	}
	records[0] = canonicalHeader(records[0], cfg.Columns)

	var rows []TransactionRow
	if err := gocsv.UnmarshalCSV(&recordsReader{records: records}, &rows); err != nil {
		return nil, NewError(KindParseFailure, "failed to decode CSV rows", err)
	}

	result := &ParseResult{
		Lines:  make([]Line, 0, len(rows)),
		Errors: rowErrors,
	}
	result.SkippedRows = len(rowErrors)
	result.TotalRows = len(rows) + len(rowErrors)

	for i, row := range rows {
		rowNum := cfg.SkipLines + i + 2
		if i < len(lineNums) {
			rowNum = lineNums[i]
		}

		line, pe := processRow(row, rowNum)
		if pe != nil {
			result.skip(*pe)
			continue
		}
		result.Lines = append(result.Lines, line)
		result.ParsedRows++
	}

	return result, nil
}

// processRow converts a TransactionRow to a Line
func processRow(row TransactionRow, rowNum int) (Line, *ParseError) {
	amountStr := strings.TrimSpace(row.Amount)
	if amountStr == "" {
		return Line{}, &ParseError{Row: rowNum, Column: "amount", Message: "missing amount"}
	}
	amount, err := ParseCSVAmount(amountStr)
	if err != nil {
		return Line{}, &ParseError{
			Row:     rowNum,
			Column:  "amount",
			Message: fmt.Sprintf("invalid amount: %s", err.Error()),
			RawData: amountStr,
		}
	}

	dateStr := strings.TrimSpace(row.Date)
	date, err := transaction.ParseDate(dateStr)
	if err != nil {
		return Line{}, &ParseError{
			Row:     rowNum,
			Column:  "date",
			Message: fmt.Sprintf("invalid date: %s", err.Error()),
			RawData: dateStr,
		}
	}

	return Line{
		Row:         rowNum,
		Date:        date,
		Description: cleanDescription(row.Description),
		Amount:      amount,
	}, nil
}

// ParseCSVAmount parses an amount cell. Currency tokens and spaces are removed, a
// parenthesized value is negative, and when both separators appear the last one is
// the decimal separator. A lone comma is always decimal.
func ParseCSVAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	for _, token := range currencyTokens {
		clean = strings.ReplaceAll(clean, token, "")
	}
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, "\u00a0", "")

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = strings.Trim(clean, "()")
	}

	hasComma := strings.Contains(clean, ",")
	hasDot := strings.Contains(clean, ".")
	switch {
	case hasComma && hasDot && strings.LastIndex(clean, ",") > strings.LastIndex(clean, "."):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case hasComma && hasDot:
		clean = strings.ReplaceAll(clean, ",", "")
	case hasComma:
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number: %s", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// readRecords reads the header and data records that follow the preamble, along with
// the 1-based file line of each data record. Malformed records are reported and skipped.
func readRecords(data []byte, cfg *sniffer.FileConfig) ([][]string, []int, []ParseError) {
	lines := strings.Split(string(data), "\n")
	if cfg.SkipLines >= len(lines) {
		return nil, nil, nil
	}
	body := strings.Join(lines[cfg.SkipLines:], "\n")

	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = cfg.Delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Variable field count

	var (
		records  [][]string
		lineNums []int
		errs     []ParseError
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			row := 0
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				row = cfg.SkipLines + csvErr.StartLine
			}
			errs = append(errs, ParseError{Row: row, Message: err.Error()})
			continue
		}
		if len(records) > 0 && blankRecord(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(records) > 0 {
			lineNums = append(lineNums, cfg.SkipLines+line)
		}
		records = append(records, record)
	}
	return records, lineNums, errs
}

// canonicalHeader renames resolved columns to the struct tags of TransactionRow and
// every other column to a unique placeholder.
func canonicalHeader(header []string, cols sniffer.Columns) []string {
	out := make([]string, len(header))
	for i := range header {
		switch i {
		case cols.Date:
			out[i] = headerDate
		case cols.Description:
			out[i] = headerDescription
		case cols.Amount:
			out[i] = headerAmount
		default:
			out[i] = fmt.Sprintf("_column_%d", i)
		}
	}
	return out
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cleanDescription normalizes a transaction description
func cleanDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// recordsReader feeds already-split records to gocsv.
type recordsReader struct {
	records [][]string
	pos     int
}

func (r *recordsReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	record := r.records[r.pos]
	r.pos++
	return record, nil
}

func (r *recordsReader) ReadAll() ([][]string, error) {
	rest := r.records[r.pos:]
	r.pos = len(r.records)
	return rest, nil
}

// normalizeCSVBytes strips a UTF-8 BOM and decodes Windows-1252 exports to UTF-8.
func normalizeCSVBytes(data []byte) []byte {
	data = stripUTF8BOM(data)
	if utf8.Valid(data) {
		return data
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

func stripUTF8BOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
