package ledger

import (
	"time"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

// ToISODate converts a DD/MM/YYYY token to YYYY-MM-DD. Input in any other shape,
// including ISO dates, is returned unchanged.
func ToISODate(s string) string {
	t, err := time.Parse(transaction.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(transaction.ISOLayout)
}

// FromISODate converts a YYYY-MM-DD token to DD/MM/YYYY. Input in any other shape,
// including DD/MM/YYYY dates, is returned unchanged.
func FromISODate(s string) string {
	t, err := time.Parse(transaction.ISOLayout, s)
	if err != nil {
		return s
	}
	return t.Format(transaction.DateLayout)
}

// scanDate parses a stored date column.
func scanDate(s string) (transaction.Date, error) {
	return transaction.ParseDate(FromISODate(s))
}

func scanDueDate(s *string) (*transaction.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := scanDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func isoDueDate(d *transaction.Date) *string {
	if d == nil {
		return nil
	}
	s := ToISODate(d.String())
	return &s
}
