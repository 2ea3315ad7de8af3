// Package matcher evaluates clauses against each category's ordered pattern list
package matcher

import (
	"policyxray/internal/core/clause"
	"policyxray/internal/core/rulepack"
	str "policyxray/internal/platform/strings"
)

// Policy names how a category's pattern list is applied to a single clause
type Policy string

const (
	// FirstMatchWins tries patterns in list order and records only the first that fires.
	// A clause contributes at most one Match per category
	FirstMatchWins Policy = "first_match_wins"
)

// DefaultMaxTextRunes bounds the clause text carried on a Match
const DefaultMaxTextRunes = 400

// Match is evidence that one category fired on one clause
type Match struct {
	ClauseID       int    `json:"clause_id"`
	Text           string `json:"text"`
	MatchedKeyword string `json:"matched_keyword"`
	Position       int    `json:"position"`
	PatternID      string `json:"pattern_id,omitempty"`

	// set by the enhancement pass when a model backend is configured
	AIValidation string `json:"ai_validation,omitempty"`
	Citation     string `json:"gdpr_citation,omitempty"`
}

// CategoryMatches is the ordered evidence for one category, ascending by clause index
type CategoryMatches struct {
	Category rulepack.Category
	Matches  []Match
}

// Options controls matcher behavior
type Options struct {
	// MaxTextRunes truncates Match.Text (0 = DefaultMaxTextRunes)
	MaxTextRunes int
	// Fold maps clause text to the form patterns run against. Match.Text keeps the clause text
	Fold func(string) string
}

// Matcher runs categories over segmented clauses. Safe for concurrent use
type Matcher struct {
	p    *rulepack.Pack
	opts Options
}

// New creates a Matcher with default options
func New(p *rulepack.Pack) *Matcher {
	return NewWithOptions(p, Options{})
}

// NewWithOptions creates a Matcher with custom options
func NewWithOptions(p *rulepack.Pack, opts Options) *Matcher {
	if opts.MaxTextRunes <= 0 {
		opts.MaxTextRunes = DefaultMaxTextRunes
	}
	return &Matcher{p: p, opts: opts}
}

// Policy reports the per-clause policy this matcher applies
func (m *Matcher) Policy() Policy { return FirstMatchWins }

// Run evaluates every category against every clause, in configuration order
func (m *Matcher) Run(clauses []clause.Clause) []CategoryMatches {
	folded := make([]string, len(clauses))
	for i, cl := range clauses {
		folded[i] = m.fold(cl.Text)
	}
	out := make([]CategoryMatches, 0, len(m.p.Categories))
	for _, cat := range m.p.Categories {
		cm := CategoryMatches{Category: cat}
		for i, cl := range clauses {
			if mt, ok := m.match(cat, cl, folded[i]); ok {
				cm.Matches = append(cm.Matches, mt)
			}
		}
		out = append(out, cm)
	}
	return out
}

// MatchClause applies FirstMatchWins for one (category, clause) pair
func (m *Matcher) MatchClause(cat rulepack.Category, cl clause.Clause) (Match, bool) {
	return m.match(cat, cl, m.fold(cl.Text))
}

func (m *Matcher) fold(s string) string {
	if m.opts.Fold == nil {
		return s
	}
	return m.opts.Fold(s)
}

func (m *Matcher) match(cat rulepack.Category, cl clause.Clause, folded string) (Match, bool) {
	for _, pt := range cat.Patterns {
		if pt.Re == nil {
			continue
		}
		loc := pt.Re.FindStringIndex(folded)
		if loc == nil {
			continue
		}
		return Match{
			ClauseID:       cl.Index,
			Text:           str.TruncateRunes(cl.Text, m.opts.MaxTextRunes),
			MatchedKeyword: folded[loc[0]:loc[1]],
			Position:       cl.Index,
			PatternID:      pt.ID,
		}, true
	}
	return Match{}, false
}
