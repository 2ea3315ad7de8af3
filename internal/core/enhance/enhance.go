// Package enhance asks a model backend to confirm regex matches and cite the conflicting article
package enhance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"policyxray/internal/core/classify"
	"policyxray/internal/core/matcher"
	"policyxray/internal/core/riskscan"
	"policyxray/internal/core/rulepack"
	perr "policyxray/internal/platform/errors"
	"policyxray/internal/platform/logger"
)

const (
	// DefaultCap is how many matches per category get enhanced
	DefaultCap = 2

	defaultCallTimeout = 30 * time.Second
)

// Summary counts what one Enhance pass did
type Summary struct {
	Validated int
	Cited     int
	Failed    int
}

// Enhancer decorates matches in a riskscan.Report in place. Calls run sequentially
type Enhancer struct {
	c       classify.Completer
	pack    *rulepack.Pack
	cap     int
	timeout time.Duration
	log     logger.Logger
}

// Options tunes an Enhancer
type Options struct {
	Cap         int
	CallTimeout time.Duration
}

// New builds an Enhancer. Category questions and articles come from the pack
func New(c classify.Completer, p *rulepack.Pack, opts Options) *Enhancer {
	if opts.Cap <= 0 {
		opts.Cap = DefaultCap
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	return &Enhancer{
		c:       c,
		pack:    p,
		cap:     opts.Cap,
		timeout: opts.CallTimeout,
		log:     *logger.Named("enhance"),
	}
}

// Cap reports the per-category enhancement limit
func (e *Enhancer) Cap() int { return e.cap }

// Budget is the longest an Enhance pass can take: validation and citation for Cap
// matches in every category, one call at a time
func (e *Enhancer) Budget() time.Duration {
	return time.Duration(2*e.cap*len(e.pack.Categories)) * e.timeout
}

// Enhance attaches ai_validation, and gdpr_citation on a YES answer, to the first Cap
// matches of every category that has matches. Matches past the cap are left as they are.
// A failed call leaves its match unmodified
func (e *Enhancer) Enhance(ctx context.Context, rep *riskscan.Report) Summary {
	var sum Summary
	for i := range rep.Categories {
		cr := &rep.Categories[i]
		if len(cr.Matches) == 0 {
			continue
		}
		cat, ok := e.pack.Category(cr.Name)
		if !ok || cat.Question == "" {
			continue
		}
		n := min(e.cap, len(cr.Matches))
		e.log.Debug().Str("category", cr.Name).Int("matches", n).Msg("enhancing")
		for j := range n {
			if ctx.Err() != nil {
				return sum
			}
			e.enhanceMatch(ctx, cat, &cr.Matches[j], &sum)
		}
	}
	return sum
}

func (e *Enhancer) enhanceMatch(ctx context.Context, cat rulepack.Category, m *matcher.Match, sum *Summary) {
	answer, err := e.call(ctx, ValidationPrompt(m.Text, cat.Question))
	if err != nil {
		sum.Failed++
		e.log.Warn().Err(err).Str("category", cat.Name).Int("clause", m.ClauseID).Msg("validation call failed")
		return
	}
	m.AIValidation = answer
	sum.Validated++

	if cat.Article == "" || !strings.Contains(strings.ToUpper(answer), "YES") {
		return
	}
	cite, err := e.call(ctx, CitationPrompt(cat.Article))
	if err != nil {
		sum.Failed++
		e.log.Warn().Err(err).Str("category", cat.Name).Int("clause", m.ClauseID).Msg("citation call failed")
		return
	}
	m.Citation = cite
	sum.Cited++
}

func (e *Enhancer) call(ctx context.Context, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	out, err := e.c.Complete(cctx, prompt)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", perr.Upstreamf("enhance: empty answer")
	}
	return out, nil
}

// ValidationPrompt asks a yes/no question about one clause
func ValidationPrompt(text, question string) string {
	return fmt.Sprintf(`Analyze this privacy policy clause:

"%s"

Question: %s

Answer with: YES or NO, followed by a 1-sentence explanation.
Keep your response under 100 words.`, text, question)
}

// CitationPrompt asks for the regulation article a clause conflicts with
func CitationPrompt(article string) string {
	return fmt.Sprintf(`Identify %s.

Then explain in 1 sentence how this clause potentially conflicts with that article.

Format:
Article: [GDPR Article number]
Conflict: [Brief explanation]

Keep response under 100 words.`, article)
}
