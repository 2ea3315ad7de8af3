// Package normalize prepares policy text for segmentation and matching.
//
// Clean keeps the text callers see: controls and invalid UTF-8 dropped, line
// endings folded to LF. Normalize goes further for the regexes only:
// NFKC, format chars (zero-width joiners, BOM, soft hyphen) removed, fullwidth
// folded to ASCII and NBSP-like spaces mapped to ASCII space one for one.
//
// Case is preserved since matching is case-insensitive
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is concurrency safe when used with the pool below
type Normalizer struct{}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(unicode.Cf)), // ZWJ ZWNJ FEFF SHY etc
			width.Fold,
		)
	},
}

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

// Clean drops controls and invalid UTF-8 and folds CRLF and CR to LF.
// Everything else is left as written, so clause lengths and echoed text match the input
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(Sanitize(s), "")
	if strings.IndexByte(s, '\r') >= 0 {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	}
	return s
}

// Normalize returns the matching form of s. Whitespace runs keep their length
func (n *Normalizer) Normalize(s string) string {
	s = Clean(s)
	if s == "" {
		return ""
	}

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		// transform only fails on malformed input which Clean already dropped
		ns = s
	}
	return strings.Map(foldSpace, ns)
}

// foldSpace maps Unicode space separators to ASCII space. Tabs and newlines stay
func foldSpace(r rune) rune {
	if r != ' ' && unicode.Is(unicode.Zs, r) {
		return ' '
	}
	return r
}
