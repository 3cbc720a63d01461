// Package sniffer provides automatic detection of CSV statement layouts.
// It identifies the delimiter and header row, and resolves the logical date,
// description and amount columns from loosely spelled header names.
package sniffer

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LogicalColumn names one of the columns a statement must carry.
type LogicalColumn string

const (
	ColumnDate        LogicalColumn = "data"
	ColumnDescription LogicalColumn = "descrição"
	ColumnAmount      LogicalColumn = "valor"
)

// RequiredColumns lists the logical columns in resolution order.
var RequiredColumns = []LogicalColumn{ColumnDate, ColumnDescription, ColumnAmount}

// columnAliases holds normalized spellings accepted for each logical column.
// The first alias is the canonical name.
var columnAliases = map[LogicalColumn][]string{
	ColumnDate:        {"data", "date", "fecha"},
	ColumnDescription: {"descricao", "description", "historico", "lancamento", "descripcion", "memo"},
	ColumnAmount:      {"valor", "amount", "value", "montante", "importe", "quantia"},
}

// minReverseMatch is the shortest header allowed to match by being contained in an alias.
const minReverseMatch = 3

// maxHeaderSearch bounds how many leading lines may hold preamble text.
const maxHeaderSearch = 20

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrInvalidDelimiter = errors.New("could not detect valid delimiter")
)

// FileConfig holds the detected configuration for a CSV file
type FileConfig struct {
	Delimiter   rune     // The field delimiter (',', ';', '\t', '|')
	SkipLines   int      // Number of preamble lines before headers
	Headers     []string // Header names as written in the file
	Columns     Columns  // Resolved logical columns
	Fingerprint string   // SHA256 hash of normalized headers
}

// Columns maps logical columns to header indices. -1 marks a column that was not found.
type Columns struct {
	Date        int
	Description int
	Amount      int
}

// Index returns the header index resolved for col.
func (c Columns) Index(col LogicalColumn) int {
	switch col {
	case ColumnDate:
		return c.Date
	case ColumnDescription:
		return c.Description
	case ColumnAmount:
		return c.Amount
	}
	return -1
}

func (c *Columns) set(col LogicalColumn, idx int) {
	switch col {
	case ColumnDate:
		c.Date = idx
	case ColumnDescription:
		c.Description = idx
	case ColumnAmount:
		c.Amount = idx
	}
}

// Missing returns the logical columns that could not be resolved.
func (c Columns) Missing() []LogicalColumn {
	var missing []LogicalColumn
	for _, col := range RequiredColumns {
		if c.Index(col) < 0 {
			missing = append(missing, col)
		}
	}
	return missing
}

// Complete reports whether every logical column was resolved.
func (c Columns) Complete() bool {
	return len(c.Missing()) == 0
}

// NormalizeHeader trims, lowercases, strips diacritics and collapses inner whitespace.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	// Transformer chains carry state, so one is built per call.
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, h)
	if err != nil {
		folded = h
	}
	return strings.Join(strings.Fields(folded), " ")
}

// ResolveColumns matches the logical columns against headers.
// Exact normalized matches are taken first; remaining columns then claim the first
// unclaimed header that contains an alias or is contained in one. Each header is
// claimed at most once and blank headers never match.
func ResolveColumns(headers []string) Columns {
	cols := Columns{Date: -1, Description: -1, Amount: -1}

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}
	claimed := make([]bool, len(headers))

	claim := func(col LogicalColumn, match func(header, alias string) bool) {
		if cols.Index(col) >= 0 {
			return
		}
		for i, h := range normalized {
			if claimed[i] || h == "" {
				continue
			}
			for _, alias := range columnAliases[col] {
				if match(h, alias) {
					cols.set(col, i)
					claimed[i] = true
					return
				}
			}
		}
	}

	exact := func(header, alias string) bool { return header == alias }
	contains := func(header, alias string) bool {
		if strings.Contains(header, alias) {
			return true
		}
		return len(header) >= minReverseMatch && strings.Contains(alias, header)
	}

	for _, col := range RequiredColumns {
		claim(col, exact)
	}
	for _, col := range RequiredColumns {
		claim(col, contains)
	}

	return cols
}

// DetectConfig finds the header row and delimiter of a CSV export.
// The header row is the first line (within the leading preamble window) whose cells
// resolve every logical column. When no line qualifies the first non-empty line is
// used, leaving unresolved columns for the caller to report.
func DetectConfig(data []byte) (*FileConfig, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyFile
	}

	lines := strings.Split(string(data), "\n")

	var fallback *FileConfig
	for i, raw := range lines {
		if i >= maxHeaderSearch {
			break
		}
		line := cleanLine(raw, i == 0)
		if line == "" {
			continue
		}

		delimiter, _ := DetectDelimiter(line)
		if delimiter == 0 {
			delimiter = ','
		}
		headers, err := splitHeader(line, delimiter)
		if err != nil {
			continue
		}

		cfg := &FileConfig{
			Delimiter:   delimiter,
			SkipLines:   i,
			Headers:     headers,
			Columns:     ResolveColumns(headers),
			Fingerprint: generateFingerprint(headers),
		}
		if cfg.Columns.Complete() {
			return cfg, nil
		}
		if fallback == nil {
			fallback = cfg
		}
	}

	if fallback == nil {
		return nil, ErrInvalidDelimiter
	}
	return fallback, nil
}

func splitHeader(line string, delimiter rune) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = delimiter
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	return headers, nil
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

// DetectDelimiter returns the most frequent of ';', tab, ',' and '|' in line along with
// its count, or 0 when none occurs.
func DetectDelimiter(line string) (rune, int) {
	delimiters := []rune{';', '\t', ',', '|'}
	bestDelimiter := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		count := strings.Count(line, string(d))
		if count > bestCount {
			bestCount = count
			bestDelimiter = d
		}
	}
	return bestDelimiter, bestCount
}

// generateFingerprint creates a stable hash from header names so exports from the
// same bank can be recognized in logs.
func generateFingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	joined := strings.Join(normalized, "|")
	hash := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(hash[:])
}
