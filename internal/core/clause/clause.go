// Package clause splits policy text into paragraph-like clauses
package clause

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMinChars is the trimmed length below which a unit is dropped as a header or label
const DefaultMinChars = 50

// Clause is one segmented unit. Index is its position after filtering, so indices are dense
type Clause struct {
	Index int
	Text  string
	Len   int // runes in Text
}

// Segment splits text on blank-line boundaries, trims each unit and keeps those
// with at least minChars runes. minChars <= 0 uses DefaultMinChars
func Segment(text string, minChars int) []Clause {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	var out []Clause
	for _, unit := range splitBlankLines(text) {
		unit = strings.TrimSpace(unit)
		n := utf8.RuneCountInString(unit)
		if n < minChars {
			continue
		}
		out = append(out, Clause{Index: len(out), Text: unit, Len: n})
	}
	return out
}

// splitBlankLines cuts s at every whitespace run that holds two or more newlines
func splitBlankLines(s string) []string {
	var parts []string
	start := 0
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			i += size
			continue
		}
		// measure the whitespace run
		j := i
		newlines := 0
		for j < len(s) {
			r2, sz := utf8.DecodeRuneInString(s[j:])
			if !unicode.IsSpace(r2) {
				break
			}
			if r2 == '\n' {
				newlines++
			}
			j += sz
		}
		if newlines >= 2 {
			parts = append(parts, s[start:i])
			start = j
		}
		i = j
	}
	return append(parts, s[start:])
}
