// Package riskscan runs the regex path end to end: clean, segment, match, score
package riskscan

import (
	"bytes"
	"encoding/json"

	"policyxray/internal/core/clause"
	"policyxray/internal/core/matcher"
	"policyxray/internal/core/normalize"
	"policyxray/internal/core/rulepack"
	"policyxray/internal/core/scoring"
)

// OverallKey is the synthetic entry added next to the configured categories
const OverallKey = "overall"

// DefaultShownMatches is how many matches a category result carries
const DefaultShownMatches = 5

// CategoryResult is one category's score and evidence
type CategoryResult struct {
	Name         string          `json:"-"`
	Score        float64         `json:"score"`
	RiskLevel    scoring.Level   `json:"risk_level"`
	Matches      []matcher.Match `json:"matches"`
	TotalMatches int             `json:"total_matches"`
}

// OverallResult is the weighted summary across categories
type OverallResult struct {
	Score     float64       `json:"score"`
	RiskLevel scoring.Level `json:"risk_level"`
}

// Report is the regex path's output. Categories keep configuration order
type Report struct {
	Categories []CategoryResult
	Overall    OverallResult
	Clauses    int
}

// Category returns the named result
func (r *Report) Category(name string) (*CategoryResult, bool) {
	for i := range r.Categories {
		if r.Categories[i].Name == name {
			return &r.Categories[i], true
		}
	}
	return nil, false
}

// MarshalJSON renders the report as one object keyed by category name plus "overall",
// keys in configuration order
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, c := range r.Categories {
		if err := writeField(&buf, c.Name, c); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	if err := writeField(&buf, OverallKey, r.Overall); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, v any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(b)
	return nil
}

// Options tunes an Analyzer
type Options struct {
	ShownMatches int // 0 = DefaultShownMatches
	MaxTextRunes int // 0 = matcher default
}

// Analyzer is safe for concurrent use; all state is read-only after New
type Analyzer struct {
	norm  *normalize.Normalizer
	pack  *rulepack.Pack
	m     *matcher.Matcher
	shown int
}

// New builds an Analyzer over a compiled pack
func New(p *rulepack.Pack, opts Options) *Analyzer {
	if opts.ShownMatches <= 0 {
		opts.ShownMatches = DefaultShownMatches
	}
	n := normalize.New()
	return &Analyzer{
		norm:  n,
		pack:  p,
		m:     matcher.NewWithOptions(p, matcher.Options{MaxTextRunes: opts.MaxTextRunes, Fold: n.Normalize}),
		shown: opts.ShownMatches,
	}
}

// Pack exposes the configuration the analyzer runs with
func (a *Analyzer) Pack() *rulepack.Pack { return a.pack }

// Analyze scores text. Empty or clause-free input gives every category 0 and overall low
func (a *Analyzer) Analyze(text string) Report {
	// length threshold and echoed text are measured on the text as written
	clauses := clause.Segment(normalize.Clean(text), a.pack.MinClauseChars)
	byCat := a.m.Run(clauses)

	rep := Report{
		Categories: make([]CategoryResult, 0, len(byCat)),
		Clauses:    len(clauses),
	}
	ws := make([]scoring.Weighted, 0, len(byCat))
	for _, cm := range byCat {
		n := len(cm.Matches)
		score := scoring.Score(n, cm.Category.Weight)
		shown := cm.Matches[:min(n, a.shown)]
		if shown == nil {
			shown = []matcher.Match{}
		}
		rep.Categories = append(rep.Categories, CategoryResult{
			Name:         cm.Category.Name,
			Score:        score,
			RiskLevel:    scoring.LevelOf(score),
			Matches:      shown,
			TotalMatches: n,
		})
		ws = append(ws, scoring.Weighted{Score: score, Weight: cm.Category.Weight})
	}

	overall := scoring.Overall(ws)
	rep.Overall = OverallResult{Score: overall, RiskLevel: scoring.LevelOf(overall)}
	return rep
}
