package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseLocale parses an amount written with period thousands separators and a decimal
// comma, e.g. "-1.234,56".
func ParseLocale(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.Replace(clean, ",", ".", 1)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// FormatLocale renders an amount with two fractional digits, period thousands separators
// and a decimal comma. ParseLocale(FormatLocale(d)) equals d rounded to cents.
func FormatLocale(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
