package normalize

import (
	"strings"
	"unicode/utf8"
)

// Sanitize drops runes that should never reach the matcher or a model prompt:
// NUL, ASCII controls other than tab and line breaks, DEL, C1 controls,
// invalid UTF-8 bytes and U+FFFD replacement chars.
// Returns s unchanged when nothing needs dropping
func Sanitize(s string) string {
	if s == "" || isClean(s) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if dropRune(r) {
			return -1
		}
		return r
	}, s)
}

func isClean(s string) bool {
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if dropRune(rune(c)) {
				return false
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if dropRune(r) {
			return false
		}
		i += size
	}
	return true
}

func dropRune(r rune) bool {
	switch {
	case r == '\n' || r == '\r' || r == '\t':
		return false
	case r < 0x20, r == 0x7F:
		return true
	case r >= 0x80 && r <= 0x9F:
		return true
	case r == utf8.RuneError:
		return true
	}
	return false
}
