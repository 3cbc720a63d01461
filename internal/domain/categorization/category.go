// Package categorization assigns statement transactions to a closed set of spending
// categories using an ordered keyword table.
package categorization

import (
	"errors"
	"fmt"
)

// Category is one label of the closed category vocabulary.
// The zero value is NeedsReview, so an unset category never masquerades as a real one.
type Category uint8

const (
	NeedsReview Category = iota
	Comida
	Transporte
	Moradia
	Lazer
	Saude
	Educacao
	Investimentos
	Receita
)

// ErrUnknownCategory is returned when a label does not resolve to any category.
var ErrUnknownCategory = errors.New("unknown category")

var labels = [...]string{
	NeedsReview:   "A Categorizar",
	Comida:        "Comida",
	Transporte:    "Transporte",
	Moradia:       "Moradia",
	Lazer:         "Lazer",
	Saude:         "Saúde",
	Educacao:      "Educação",
	Investimentos: "Investimentos",
	Receita:       "Receita",
}

// All returns every category in canonical table order, NeedsReview last.
func All() []Category {
	return []Category{Comida, Transporte, Moradia, Lazer, Saude, Educacao, Investimentos, Receita, NeedsReview}
}

// String returns the display label.
func (c Category) String() string {
	if int(c) < len(labels) {
		return labels[c]
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Valid reports whether c is a member of the vocabulary.
func (c Category) Valid() bool {
	return int(c) < len(labels)
}

// IsInvestment reports whether transactions in c move money into or out of investments.
func (c Category) IsInvestment() bool {
	return c == Investimentos
}

// MarshalText encodes the category as its label.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a label through ParseCategory.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
