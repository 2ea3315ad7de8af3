package normalize

import (
	"testing"
)

func TestNormalize_Table(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{
			name: "identity ascii",
			in:   "We may share your data.",
			out:  "We may share your data.",
		},
		{
			name: "case preserved",
			in:   "We SELL Data",
			out:  "We SELL Data",
		},
		{
			name: "utf8 repair drops invalid bytes",
			in:   string([]byte{0xff, 'w', 'e', 0x80, ' ', 's', 'e', 'l', 'l'}),
			out:  "we sell",
		},
		{
			name: "remove zero-widths",
			in:   "bio\u200Bmet\u200Dric",
			out:  "biometric",
		},
		{
			name: "width fold fullwidth",
			in:   "ＧＰＳ tracking",
			out:  "GPS tracking",
		},
		{
			name: "nfkc ligature",
			in:   "ﬁngerprint",
			out:  "fingerprint",
		},
		{
			name: "nbsp to space",
			in:   "third\u00A0party",
			out:  "third party",
		},
		{
			name: "crlf to lf keeps blank lines",
			in:   "first\r\n\r\nsecond\rthird",
			out:  "first\n\nsecond\nthird",
		},
		{
			name: "horizontal runs kept",
			in:   "a\t\t b  \nc",
			out:  "a\t\t b  \nc",
		},
		{
			name: "ideographic space to ascii",
			in:   "third\u3000party\u2009data",
			out:  "third party data",
		},
		{
			name: "control chars dropped",
			in:   "a\x00b\x07c\u0085d",
			out:  "abcd",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(tc.in)
			if got != tc.out {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.out)
			}
			if again := n.Normalize(got); again != got {
				t.Fatalf("Normalize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitize_FastPathReturnsInput(t *testing.T) {
	in := "plain policy text\nwith lines\tand tabs"
	if got := Sanitize(in); got != in {
		t.Fatalf("Sanitize changed clean input: %q", got)
	}
}

func TestNormalize_Empty(t *testing.T) {
	if got := New().Normalize(""); got != "" {
		t.Fatalf("want empty, got %q", got)
	}
}

func TestClean_KeepsTextAsWritten(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"We  sell\tdata", "We  sell\tdata"},
		{"ﬁngerprint ＧＰＳ", "ﬁngerprint ＧＰＳ"},
		{"a\r\n\r\nb\rc", "a\n\nb\nc"},
		{"a\x00b\u0085c", "abc"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Clean(tc.in); got != tc.out {
			t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
