package categorization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// aliases maps English and legacy labels onto the vocabulary.
var aliases = map[string]Category{
	"needs review":  NeedsReview,
	"uncategorized": NeedsReview,
	"outros":        NeedsReview,
	"food":          Comida,
	"transport":     Transporte,
	"housing":       Moradia,
	"leisure":       Lazer,
	"health":        Saude,
	"education":     Educacao,
	"investments":   Investimentos,
	"investimento":  Investimentos,
	"income":        Receita,
	"receitas":      Receita,
	"a categorizar": NeedsReview,
	"sem categoria": NeedsReview,
}

// minFuzzyLength keeps very short inputs from ranking against every label.
const minFuzzyLength = 3

// ParseCategory resolves a label coming from a store row or an API payload.
// Resolution order: exact label, alias, accent- and case-insensitive label, then the
// closest label that contains the input as a normalized subsequence.
func ParseCategory(label string) (Category, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return NeedsReview, fmt.Errorf("%w: empty label", ErrUnknownCategory)
	}

	for _, c := range All() {
		if c.String() == label {
			return c, nil
		}
	}

	if c, ok := aliases[strings.ToLower(label)]; ok {
		return c, nil
	}

	targets := make([]string, 0, len(labels))
	byTarget := make(map[string]Category, len(labels))
	for _, c := range All() {
		targets = append(targets, c.String())
		byTarget[c.String()] = c
	}

	ranks := fuzzy.RankFindNormalizedFold(label, targets)
	if len(ranks) == 0 {
		return NeedsReview, fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}
	sort.Sort(ranks)

	best := ranks[0]
	if best.Distance != 0 && len([]rune(label)) < minFuzzyLength {
		return NeedsReview, fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}
	return byTarget[best.Target], nil
}

// MustParseCategory is ParseCategory for labels known at compile time.
func MustParseCategory(label string) Category {
	c, err := ParseCategory(label)
	if err != nil {
		panic(err)
	}
	return c
}
