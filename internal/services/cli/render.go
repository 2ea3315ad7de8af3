package cli

import (
	"fmt"
	"io"
	"unicode/utf8"

	"policyxray/internal/core/classify"
	"policyxray/internal/core/riskscan"
	"policyxray/internal/core/scoring"
	str "policyxray/internal/platform/strings"

	"github.com/fatih/color"
)

const snippetRunes = 100

var (
	bold   = color.New(color.Bold)
	dim    = color.New(color.Faint)
	cyan   = color.New(color.FgCyan)
	levels = map[scoring.Level]*color.Color{
		scoring.LevelLow:    color.New(color.FgGreen),
		scoring.LevelMedium: color.New(color.FgYellow),
		scoring.LevelHigh:   color.New(color.FgRed, color.Bold),
	}
)

func levelText(l scoring.Level) string {
	c, ok := levels[l]
	if !ok {
		return string(l)
	}
	// pad before coloring so escape codes do not break alignment
	return c.Sprint(fmt.Sprintf("%-6s", l))
}

// renderReport prints a category table followed by the shown evidence
func renderReport(w io.Writer, rep riskscan.Report) {
	fmt.Fprintf(w, "%s\n", bold.Sprintf("%-24s %6s  %-6s  %s", "CATEGORY", "SCORE", "LEVEL", "MATCHES"))
	for _, c := range rep.Categories {
		fmt.Fprintf(w, "%-24s %6.1f  %s  %d\n", c.Name, c.Score, levelText(c.RiskLevel), c.TotalMatches)
	}
	fmt.Fprintf(w, "%s %6.1f  %s\n", bold.Sprintf("%-24s", "OVERALL"), rep.Overall.Score, levelText(rep.Overall.RiskLevel))
	fmt.Fprintf(w, "%s\n", dim.Sprintf("%d clauses scanned", rep.Clauses))

	for _, c := range rep.Categories {
		if len(c.Matches) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", cyan.Sprint(c.Name))
		for _, m := range c.Matches {
			fmt.Fprintf(w, "  [clause %d] %s: %s\n", m.ClauseID, bold.Sprint(m.MatchedKeyword), snippet(m.Text))
			if m.AIValidation != "" {
				fmt.Fprintf(w, "    ai: %s\n", str.Squash(m.AIValidation))
			}
			if m.Citation != "" {
				fmt.Fprintf(w, "    citation: %s\n", str.Squash(m.Citation))
			}
		}
		if hidden := c.TotalMatches - len(c.Matches); hidden > 0 {
			fmt.Fprintf(w, "  %s\n", dim.Sprintf("... %d more", hidden))
		}
	}
}

// renderVerdict prints the merged model verdict
func renderVerdict(w io.Writer, res classify.Result) {
	v := res.Verdict
	rows := []struct {
		label string
		on    bool
	}{
		{"biometric data", v.Biometric},
		{"location tracking", v.LocationTracking},
		{"camera or microphone", v.CameraOrMicrophone},
		{"retention policy present", v.RetentionPolicy},
		{"retention duration specified", v.RetentionDurationSet},
	}
	for _, r := range rows {
		mark := levels[scoring.LevelLow].Sprint("no ")
		if r.on {
			mark = levels[scoring.LevelHigh].Sprint("yes")
		}
		fmt.Fprintf(w, "%-30s %s\n", r.label, mark)
	}
	if v.Reason != "" {
		fmt.Fprintf(w, "\n%s %s\n", bold.Sprint("reason:"), v.Reason)
	}
	if res.Submitted > 0 {
		fmt.Fprintf(w, "%s\n", dim.Sprintf("%d chunks classified, %d dropped", res.Submitted, res.Dropped))
	}
}

func snippet(s string) string {
	s = str.Squash(s)
	if utf8.RuneCountInString(s) <= snippetRunes {
		return s
	}
	return str.TruncateRunes(s, snippetRunes) + "..."
}
