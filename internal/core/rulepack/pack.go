// Package rulepack loads and compiles the risk category configuration.
// The embedded categories.yaml is the default; a file on disk can replace it at start-up
package rulepack

import (
	_ "embed"
	"os"
	"regexp"
	"strings"

	perr "policyxray/internal/platform/errors"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var embedded []byte

const (
	supportedVersion      = 1
	defaultMinClauseChars = 50
	minWeight             = 1
	maxWeight             = 100
)

type rawPattern struct {
	ID   string `yaml:"id"`
	Expr string `yaml:"expr"`
}

type rawCategory struct {
	Name     string       `yaml:"name"`
	Weight   int          `yaml:"weight"`
	Question string       `yaml:"question"`
	Article  string       `yaml:"article"`
	Patterns []rawPattern `yaml:"patterns"`
}

type rawPack struct {
	Version int `yaml:"version"`
	Segment struct {
		MinClauseChars int `yaml:"min_clause_chars"`
	} `yaml:"segment"`
	RelevanceKeywords []string      `yaml:"relevance_keywords"`
	Categories        []rawCategory `yaml:"categories"`
}

// Pattern is one compiled regex in a category's priority list
type Pattern struct {
	ID   string
	Expr string
	Re   *regexp.Regexp
}

// Category is a risk dimension with its ordered patterns and weight.
// Question and Article feed the enhancement prompts
type Category struct {
	Name     string
	Weight   int
	Patterns []Pattern
	Question string
	Article  string
}

// Pack is the compiled, read-only configuration shared by all analysis runs
type Pack struct {
	Version        int
	MinClauseChars int
	Keywords       []string // lowercased
	Categories     []Category

	byName map[string]int
}

// Load returns the compiled pack from the embedded categories.yaml
func Load() (*Pack, error) { return Parse(embedded) }

// LoadFile reads and compiles a pack from disk
func LoadFile(path string) (*Pack, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "rulepack: read %s", path)
	}
	return Parse(b)
}

// Parse compiles a pack from yaml bytes. Any bad entry fails the whole pack
func Parse(b []byte) (*Pack, error) {
	var rp rawPack
	if err := yaml.Unmarshal(b, &rp); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "rulepack: parse yaml")
	}
	if rp.Version != supportedVersion {
		return nil, perr.InvalidArgf("rulepack: unsupported version %d (want %d)", rp.Version, supportedVersion)
	}
	if len(rp.Categories) == 0 {
		return nil, perr.InvalidArgf("rulepack: no categories")
	}

	p := &Pack{
		Version:        rp.Version,
		MinClauseChars: rp.Segment.MinClauseChars,
		byName:         make(map[string]int, len(rp.Categories)),
	}
	if p.MinClauseChars <= 0 {
		p.MinClauseChars = defaultMinClauseChars
	}

	seenKw := make(map[string]struct{}, len(rp.RelevanceKeywords))
	for _, kw := range rp.RelevanceKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seenKw[kw]; ok {
			continue
		}
		seenKw[kw] = struct{}{}
		p.Keywords = append(p.Keywords, kw)
	}

	for _, rc := range rp.Categories {
		c, err := compileCategory(rc)
		if err != nil {
			return nil, err
		}
		if c.Name == "overall" {
			return nil, perr.InvalidArgf("rulepack: category name %q is reserved", c.Name)
		}
		if _, dup := p.byName[c.Name]; dup {
			return nil, perr.InvalidArgf("rulepack: duplicate category %q", c.Name)
		}
		p.byName[c.Name] = len(p.Categories)
		p.Categories = append(p.Categories, c)
	}

	return p, nil
}

func compileCategory(rc rawCategory) (Category, error) {
	name := strings.TrimSpace(rc.Name)
	if name == "" {
		return Category{}, perr.InvalidArgf("rulepack: category without a name")
	}
	if rc.Weight < minWeight || rc.Weight > maxWeight {
		return Category{}, perr.InvalidArgf("rulepack: %s weight %d outside %d..%d", name, rc.Weight, minWeight, maxWeight)
	}
	if len(rc.Patterns) == 0 {
		return Category{}, perr.InvalidArgf("rulepack: %s has no patterns", name)
	}

	c := Category{
		Name:     name,
		Weight:   rc.Weight,
		Question: strings.TrimSpace(rc.Question),
		Article:  strings.TrimSpace(rc.Article),
		Patterns: make([]Pattern, 0, len(rc.Patterns)),
	}
	ids := make(map[string]struct{}, len(rc.Patterns))
	for i, rp := range rc.Patterns {
		id := strings.TrimSpace(rp.ID)
		if id == "" {
			return Category{}, perr.InvalidArgf("rulepack: %s pattern %d has no id", name, i)
		}
		if _, dup := ids[id]; dup {
			return Category{}, perr.InvalidArgf("rulepack: %s duplicate pattern id %q", name, id)
		}
		ids[id] = struct{}{}
		if strings.TrimSpace(rp.Expr) == "" {
			return Category{}, perr.InvalidArgf("rulepack: %s/%s has an empty expression", name, id)
		}
		re, err := regexp.Compile("(?i)" + rp.Expr)
		if err != nil {
			return Category{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "rulepack: compile %s/%s", name, id)
		}
		c.Patterns = append(c.Patterns, Pattern{ID: id, Expr: rp.Expr, Re: re})
	}
	return c, nil
}

// Category returns the named category
func (p *Pack) Category(name string) (Category, bool) {
	i, ok := p.byName[name]
	if !ok {
		return Category{}, false
	}
	return p.Categories[i], true
}

// Names lists category names in configuration order
func (p *Pack) Names() []string {
	out := make([]string, len(p.Categories))
	for i, c := range p.Categories {
		out[i] = c.Name
	}
	return out
}

// PatternCount is the total number of compiled patterns across categories
func (p *Pack) PatternCount() int {
	n := 0
	for _, c := range p.Categories {
		n += len(c.Patterns)
	}
	return n
}
