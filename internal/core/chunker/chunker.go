// Package chunker narrows a document to relevant lines and packs them into size-bounded chunks
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxChars bounds a chunk so one prompt fits a small local model's context
const DefaultMaxChars = 2000

// Filter keeps only the lines that contain at least one keyword, case-insensitive.
// Keywords are expected lowercased. Kept lines are trimmed and joined with "\n"
func Filter(text string, keywords []string) string {
	if text == "" || len(keywords) == 0 {
		return ""
	}
	var kept []string
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				kept = append(kept, line)
				break
			}
		}
	}
	return strings.Join(kept, "\n")
}

// Split packs whole lines greedily into chunks of at most maxChars runes.
// A line longer than maxChars is hard-split, preferring the last space before the limit.
// maxChars <= 0 uses DefaultMaxChars
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, piece := range hardSplit(line, maxChars) {
			n := utf8.RuneCountInString(piece)
			sep := 0
			if curLen > 0 {
				sep = 1
			}
			if curLen+sep+n > maxChars {
				flush()
				sep = 0
			}
			if sep == 1 {
				cur.WriteByte('\n')
			}
			cur.WriteString(piece)
			curLen += sep + n
		}
	}
	flush()
	return chunks
}

// hardSplit cuts one line into pieces of at most maxChars runes
func hardSplit(line string, maxChars int) []string {
	if utf8.RuneCountInString(line) <= maxChars {
		return []string{line}
	}
	var out []string
	rs := []rune(line)
	for len(rs) > maxChars {
		cut := maxChars
		for i := maxChars; i > maxChars/2; i-- {
			if unicode.IsSpace(rs[i]) {
				cut = i
				break
			}
		}
		if piece := strings.TrimSpace(string(rs[:cut])); piece != "" {
			out = append(out, piece)
		}
		rs = []rune(strings.TrimLeftFunc(string(rs[cut:]), unicode.IsSpace))
	}
	if piece := strings.TrimSpace(string(rs)); piece != "" {
		out = append(out, piece)
	}
	return out
}
