package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
	"github.com/FACorreiaa/extrato-ledger/pkg/money"
)

var (
	// statementLine anchors a leading DD/MM or DD/MM/YYYY date, a lazy description and a
	// trailing amount such as -1.234,56.
	statementLine = regexp.MustCompile(`^(\d{2}/\d{2}(?:/\d{4})?)\s+(.*?)\s+(-?[\d.]+(?:,\d{2})?)$`)

	// trailingDate is a DD/MM fragment glued to the end of a description.
	trailingDate = regexp.MustCompile(`\d{2}/\d{2}$`)
)

// balanceMarker flags running-balance lines, which are not transactions.
const balanceMarker = "SALDO"

// Line is a provisional transaction recovered from a statement line or CSV row.
type Line struct {
	Row         int // 1-based line or row number in the source
	Date        transaction.Date
	Description string
	Amount      decimal.Decimal
}

// ParseResult contains the lines recovered from a document and row-level bookkeeping.
type ParseResult struct {
	Lines        []Line
	Errors       []ParseError
	TotalRows    int // non-blank lines or data rows examined
	ParsedRows   int
	SkippedRows  int // rows with a transaction shape that failed to parse
	FilteredRows int // balance lines dropped on purpose
}

func (r *ParseResult) skip(pe ParseError) {
	r.Errors = append(r.Errors, pe)
	r.SkippedRows++
}

// lineOutcome tells why ParseStatementLine did not produce a line.
type lineOutcome int

const (
	lineParsed lineOutcome = iota
	lineNoMatch
	lineFiltered
	lineInvalid
)

// ParseStatementText parses extracted statement text line by line. now anchors year
// inference for dates printed without a year.
func ParseStatementText(text string, now time.Time) *ParseResult {
	result := &ParseResult{Lines: make([]Line, 0, 64)}

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		result.TotalRows++

		parsed, outcome, pe := parseStatementLine(line, now)
		switch outcome {
		case lineParsed:
			parsed.Row = i + 1
			result.Lines = append(result.Lines, parsed)
			result.ParsedRows++
		case lineFiltered:
			result.FilteredRows++
		case lineInvalid:
			pe.Row = i + 1
			result.skip(pe)
		}
	}

	return result
}

// ParseStatementLine parses a single trimmed statement line. ok is false for lines that
// are not transactions: wrong shape, balance lines, or unparseable dates and amounts.
func ParseStatementLine(line string, now time.Time) (Line, bool) {
	parsed, outcome, _ := parseStatementLine(strings.TrimSpace(line), now)
	return parsed, outcome == lineParsed
}

func parseStatementLine(line string, now time.Time) (Line, lineOutcome, ParseError) {
	m := statementLine.FindStringSubmatch(line)
	if m == nil {
		return Line{}, lineNoMatch, ParseError{}
	}
	dateToken, description, amountToken := m[1], m[2], m[3]

	description = strings.TrimSpace(trailingDate.ReplaceAllString(description, ""))
	if strings.Contains(strings.ToUpper(description), balanceMarker) {
		return Line{}, lineFiltered, ParseError{}
	}

	amount, err := money.ParseLocale(amountToken)
	if err != nil {
		return Line{}, lineInvalid, ParseError{Column: "amount", Message: err.Error(), RawData: line}
	}

	date, err := statementDate(dateToken, now)
	if err != nil {
		return Line{}, lineInvalid, ParseError{Column: "date", Message: err.Error(), RawData: line}
	}

	return Line{Date: date, Description: description, Amount: amount}, lineParsed, ParseError{}
}

// statementDate parses DD/MM/YYYY, or DD/MM with the year inferred from now: the
// current year, or the previous one when the month lies after the current month.
func statementDate(token string, now time.Time) (transaction.Date, error) {
	if len(token) == len("02/01") {
		month, err := strconv.Atoi(token[3:5])
		if err != nil {
			return transaction.Date{}, fmt.Errorf("invalid month in %q", token)
		}
		year := now.Year()
		if month > int(now.Month()) {
			year--
		}
		token = fmt.Sprintf("%s/%04d", token, year)
	}

	t, err := time.Parse(transaction.DateLayout, token)
	if err != nil {
		return transaction.Date{}, fmt.Errorf("invalid date %q", token)
	}
	return transaction.DateOf(t), nil
}
