package parser

import (
	"errors"
	"fmt"
)

// ErrorKind classifies document-level ingestion failures.
type ErrorKind string

const (
	KindUnreadableDocument  ErrorKind = "unreadable_document"
	KindMissingColumns      ErrorKind = "missing_columns"
	KindNoTransactionsFound ErrorKind = "no_transactions_found"
	KindUnsupportedFormat   ErrorKind = "unsupported_format"
	KindParseFailure        ErrorKind = "parse_failure"
)

// Sentinels for errors.Is. A *Error matches any sentinel of the same kind.
var (
	ErrUnreadableDocument  = &Error{Kind: KindUnreadableDocument}
	ErrMissingColumns      = &Error{Kind: KindMissingColumns}
	ErrNoTransactionsFound = &Error{Kind: KindNoTransactionsFound}
	ErrUnsupportedFormat   = &Error{Kind: KindUnsupportedFormat}
	ErrParseFailure        = &Error{Kind: KindParseFailure}
)

// Error is a document-level failure. Row-level problems never surface as an Error;
// they are recorded in ParseResult.Errors and the row is skipped.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches by kind so wrapped errors compare equal to the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ParseError describes a skipped row or line.
type ParseError struct {
	Row     int
	Column  string
	Message string
	RawData string
}

func (e ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d, column %s: %s", e.Row, e.Column, e.Message)
}
