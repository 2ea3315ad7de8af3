// Package service contains the analyze workflows: the regex path with optional enhancement,
// and the chunked model path
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"policyxray/internal/core/classify"
	"policyxray/internal/core/enhance"
	"policyxray/internal/core/riskscan"
	"policyxray/internal/core/rulepack"
	perr "policyxray/internal/platform/errors"
	"policyxray/internal/platform/logger"
	"policyxray/internal/platform/metrics"
	pnet "policyxray/internal/platform/net"
	"policyxray/internal/services/api/analyze/domain"
)

// Service defines the analyze service contract
type Service interface {
	domain.ServicePort
}

var _ Service = (*Svc)(nil)

// Config tunes both paths
type Config struct {
	Classify       classify.Config
	EnhanceCap     int
	EnhanceTimeout time.Duration
	MaxTextRunes   int
}

// Backends are the outbound model clients. Either may be nil
type Backends struct {
	Model   classify.Completer
	Enhance classify.Completer
}

// Svc implements the analyze service
type Svc struct {
	analyzer *riskscan.Analyzer
	sched    *classify.Scheduler
	enh      *enhance.Enhancer
	met      *metrics.Metrics
}

// New constructs an analyze service. A nil pack panics
func New(p *rulepack.Pack, b Backends, m *metrics.Metrics, cfg Config) *Svc {
	if p == nil {
		panic("analyze.Service requires a non nil rule pack")
	}
	s := &Svc{
		analyzer: riskscan.New(p, riskscan.Options{MaxTextRunes: cfg.MaxTextRunes}),
		met:      m,
	}
	if b.Model != nil {
		cc := cfg.Classify
		if len(cc.Keywords) == 0 {
			cc.Keywords = p.Keywords
		}
		var opts []classify.Option
		if m != nil {
			opts = append(opts, classify.WithObserver(m))
		}
		s.sched = classify.New(b.Model, cc, opts...)
	}
	if b.Enhance != nil {
		s.enh = enhance.New(b.Enhance, p, enhance.Options{Cap: cfg.EnhanceCap, CallTimeout: cfg.EnhanceTimeout})
	}
	return s
}

// CanClassify reports whether the model path is available
func (s *Svc) CanClassify() bool { return s.sched != nil }

// CanEnhance reports whether matches can be enhanced
func (s *Svc) CanEnhance() bool { return s.enh != nil }

// Budget is the longest one request may need from the wired backends, 0 without any
func (s *Svc) Budget() time.Duration {
	var b time.Duration
	if s.sched != nil {
		b = s.sched.Budget()
	}
	if s.enh != nil {
		b = max(b, s.enh.Budget())
	}
	return b
}

// Analyze runs the regex path. With UseAI set and an enhancer wired, the shown matches
// of each category are validated and cited before returning
func (s *Svc) Analyze(ctx context.Context, in domain.AnalyzeInput) (riskscan.Report, error) {
	if utf8.RuneCountInString(in.Policy) < domain.MinPolicyChars {
		return riskscan.Report{}, perr.WithField(
			perr.Newf(perr.ErrorCodeValidation, "policy text too short (min %d characters)", domain.MinPolicyChars),
			"policy",
		)
	}

	ctx = withAnalysis(ctx)
	log := logger.C(ctx)

	start := time.Now()
	rep := s.analyzer.Analyze(in.Policy)
	s.met.Analysis(metrics.PathRegex)
	s.met.OverallScore(rep.Overall.Score)

	log.Debug().
		Int("clauses", rep.Clauses).
		Float64("overall", rep.Overall.Score).
		Str("level", string(rep.Overall.RiskLevel)).
		Dur("took", time.Since(start)).
		Msg("regex analysis done")

	if in.UseAI {
		if s.enh == nil {
			log.Debug().Msg("enhancement requested but no backend configured")
			return rep, nil
		}
		sum := s.enh.Enhance(ctx, &rep)
		s.met.Enhanced(sum.Validated, sum.Cited, sum.Failed)
		log.Info().
			Int("validated", sum.Validated).
			Int("cited", sum.Cited).
			Int("failed", sum.Failed).
			Msg("matches enhanced")
	}
	return rep, nil
}

// Classify runs the model path. Without a model backend it reports unavailable
func (s *Svc) Classify(ctx context.Context, in domain.ModelInput) (domain.ModelOutput, error) {
	if strings.TrimSpace(in.Text) == "" {
		return domain.ModelOutput{}, perr.WithField(perr.New(perr.ErrorCodeValidation, "no text provided"), "text")
	}
	if s.sched == nil {
		return domain.ModelOutput{}, perr.Unavailablef("model backend not configured")
	}

	ctx = withAnalysis(ctx)
	start := time.Now()
	res := s.sched.Classify(ctx, in.Text)
	s.met.Analysis(metrics.PathModel)

	logger.C(ctx).Info().
		Int("submitted", res.Submitted).
		Int("dropped", res.Dropped).
		Bool("any_risk", res.Verdict.Any()).
		Dur("took", time.Since(start)).
		Msg("model analysis done")

	return domain.ModelOutput{Analysis: res.Verdict}, nil
}

// withAnalysis tags ctx with a fresh analysis id for log correlation
func withAnalysis(ctx context.Context) context.Context {
	id := pnet.NewAnalysisID()
	ctx = pnet.WithRequest(ctx, "", id)
	return logger.WithRequest(ctx, pnet.RequestID(ctx), pnet.AnalysisID(ctx))
}
