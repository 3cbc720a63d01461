package categorization

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"
)

// MatchResult describes which keyword selected a category.
type MatchResult struct {
	Category Category
	Keyword  string
	Rank     int // position of the winning rule in the table
}

// Engine matches descriptions against every keyword of a rule table in a single pass
// using the Aho-Corasick algorithm, then resolves the hits first-match-wins by rule order.
type Engine struct {
	rules    Rules
	matcher  *ahocorasick.Matcher
	patterns []string // unique lowercase keywords in matcher order
	ranks    []int    // rule index of the first rule owning each pattern
	mu       sync.Mutex
}

// NewEngine creates an engine for the given rule table.
func NewEngine(rules Rules) *Engine {
	e := &Engine{}
	e.Build(rules)
	return e
}

// NewDefaultEngine creates an engine for the canonical rule table.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultRules())
}

// Build rebuilds the matcher. A keyword listed under several categories belongs to the
// earliest one.
func (e *Engine) Build(rules Rules) {
	e.mu.Lock()
	defer e.mu.Unlock()

	patternToIndex := make(map[string]int)
	patterns := make([]string, 0)
	ranks := make([]int, 0)

	for rank, rule := range rules {
		for _, kw := range rule.Keywords {
			clean := strings.ToLower(strings.TrimSpace(kw))
			if clean == "" {
				continue
			}
			if _, exists := patternToIndex[clean]; exists {
				continue
			}
			patternToIndex[clean] = len(patterns)
			patterns = append(patterns, clean)
			ranks = append(ranks, rank)
		}
	}

	e.rules = rules.Clone()
	e.patterns = patterns
	e.ranks = ranks
	e.matcher = nil
	if len(patterns) > 0 {
		e.matcher = ahocorasick.NewStringMatcher(patterns)
	}
}

// Rules returns a copy of the table the engine was built from.
func (e *Engine) Rules() Rules {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.Clone()
}

// Match returns the earliest rule with a keyword contained in description.
// Returns nil if no keyword matches.
func (e *Engine) Match(description string) *MatchResult {
	normalized := strings.ToLower(description)

	// Matcher.Match mutates internal hit counters, so calls are serialized.
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.matcher == nil {
		return nil
	}

	hits := e.matcher.Match([]byte(normalized))
	if len(hits) == 0 {
		return nil
	}

	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(e.ranks) {
			continue
		}
		if best == -1 || e.ranks[idx] < e.ranks[best] {
			best = idx
		}
	}
	if best == -1 {
		return nil
	}

	rank := e.ranks[best]
	return &MatchResult{
		Category: e.rules[rank].Category,
		Keyword:  e.patterns[best],
		Rank:     rank,
	}
}

// Categorize returns the category for a transaction description, or NeedsReview when no
// keyword matches. The amount does not influence the result; unmatched transactions go
// to the review queue regardless of sign.
func (e *Engine) Categorize(description string, _ decimal.Decimal) Category {
	if m := e.Match(description); m != nil {
		return m.Category
	}
	return NeedsReview
}
