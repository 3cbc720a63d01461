package transaction

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the working date format (DD/MM/YYYY).
	DateLayout = "02/01/2006"
	// ISOLayout is the persistence date format (YYYY-MM-DD).
	ISOLayout = "2006-01-02"
)

// Date is a calendar day. The time-of-day part is always midnight UTC.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	DateLayout,
	ISOLayout,
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
}

// NewDate returns the Date for year, month and day.
// Out-of-range values normalize the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses DD/MM/YYYY, YYYY-MM-DD, DD-MM-YYYY, DD.MM.YYYY or YYYY/MM/DD.
// A trailing time component after the date (e.g. "2025-09-05T00:00:00Z") is ignored.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if idx := strings.IndexAny(s, "T "); idx == 10 {
		s = s[:idx]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("unable to parse date: %s", s)
}

// String renders the date as DD/MM/YYYY.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// ISO renders the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(ISOLayout)
}

// Before reports whether d is an earlier day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// Equal reports whether d and other are the same day.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// MarshalJSON encodes the date as "DD/MM/YYYY".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts any layout ParseDate does.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
