package rulepack

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	perr "policyxray/internal/platform/errors"
)

func TestLoad_Embedded(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if p.Version != 1 {
		t.Fatalf("version = %d, want 1", p.Version)
	}
	if p.MinClauseChars != 50 {
		t.Fatalf("min clause chars = %d, want 50", p.MinClauseChars)
	}

	want := map[string]int{
		"data_resale":          25,
		"biometric":            30,
		"indefinite_retention": 20,
		"vague_language":       15,
	}
	if got := p.Names(); len(got) != len(want) {
		t.Fatalf("categories = %v", got)
	}
	for name, w := range want {
		c, ok := p.Category(name)
		if !ok {
			t.Fatalf("missing category %q", name)
		}
		if c.Weight != w {
			t.Fatalf("%s weight = %d, want %d", name, c.Weight, w)
		}
		if c.Question == "" || c.Article == "" {
			t.Fatalf("%s missing enhancement prompts", name)
		}
		for _, pt := range c.Patterns {
			if pt.Re == nil {
				t.Fatalf("%s/%s not compiled", name, pt.ID)
			}
		}
	}
	if len(p.Keywords) != 12 {
		t.Fatalf("keywords = %v", p.Keywords)
	}
	if p.PatternCount() == 0 {
		t.Fatalf("expected compiled patterns")
	}
}

func TestLoad_PatternsAreCaseInsensitive(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	c, _ := p.Category("biometric")
	if !c.Patterns[0].Re.MatchString("We collect BIOMETRIC identifiers") {
		t.Fatalf("expected case-insensitive match")
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad version",
			yaml: "version: 7\ncategories: [{name: a, weight: 10, patterns: [{id: x, expr: 'x'}]}]",
			want: "unsupported version",
		},
		{
			name: "no categories",
			yaml: "version: 1",
			want: "no categories",
		},
		{
			name: "weight too high",
			yaml: "version: 1\ncategories: [{name: a, weight: 101, patterns: [{id: x, expr: 'x'}]}]",
			want: "outside 1..100",
		},
		{
			name: "weight zero",
			yaml: "version: 1\ncategories: [{name: a, weight: 0, patterns: [{id: x, expr: 'x'}]}]",
			want: "outside 1..100",
		},
		{
			name: "bad regex",
			yaml: "version: 1\ncategories: [{name: a, weight: 10, patterns: [{id: x, expr: '(unclosed'}]}]",
			want: "compile a/x",
		},
		{
			name: "no patterns",
			yaml: "version: 1\ncategories: [{name: a, weight: 10}]",
			want: "has no patterns",
		},
		{
			name: "duplicate category",
			yaml: "version: 1\ncategories: [{name: a, weight: 10, patterns: [{id: x, expr: 'x'}]}, {name: a, weight: 10, patterns: [{id: x, expr: 'x'}]}]",
			want: "duplicate category",
		},
		{
			name: "duplicate pattern id",
			yaml: "version: 1\ncategories: [{name: a, weight: 10, patterns: [{id: x, expr: 'x'}, {id: x, expr: 'y'}]}]",
			want: "duplicate pattern id",
		},
		{
			name: "reserved name",
			yaml: "version: 1\ncategories: [{name: overall, weight: 10, patterns: [{id: x, expr: 'x'}]}]",
			want: "reserved",
		},
		{
			name: "malformed yaml",
			yaml: "version: [",
			want: "parse yaml",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
			if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
				t.Fatalf("expected invalid argument code, got %v", perr.CodeOf(err))
			}
		})
	}
}

func TestParse_KeywordsDedupedAndLowered(t *testing.T) {
	p, err := Parse([]byte("version: 1\nrelevance_keywords: [GPS, gps, ' Camera ', '']\ncategories: [{name: a, weight: 10, patterns: [{id: x, expr: 'x'}]}]"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(p.Keywords) != 2 || p.Keywords[0] != "gps" || p.Keywords[1] != "camera" {
		t.Fatalf("keywords = %v", p.Keywords)
	}
	if p.MinClauseChars != 50 {
		t.Fatalf("expected default min clause chars, got %d", p.MinClauseChars)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.yaml")
	body := "version: 1\nsegment: {min_clause_chars: 20}\ncategories: [{name: tracking, weight: 40, patterns: [{id: gps, expr: '\\bgps\\b'}]}]"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if p.MinClauseChars != 20 || len(p.Categories) != 1 {
		t.Fatalf("unexpected pack %+v", p)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
