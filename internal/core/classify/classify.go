// Package classify runs the model path: keyword filter, chunking, bounded fan-out and reduction
package classify

import (
	"context"
	"errors"
	"time"

	"policyxray/internal/core/chunker"
	"policyxray/internal/core/verdict"
	"policyxray/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

const (
	// MaxChunks is the ceiling on chunks submitted per document; extras are dropped
	MaxChunks = 10
	// MaxConcurrency is the ceiling on classification calls in flight per document
	MaxConcurrency = 2

	defaultCallTimeout = 120 * time.Second
)

// Completer is the outbound model call: one prompt in, raw text out
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a plain function to Completer
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete implements Completer
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Outcome labels how one chunk call ended
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeEmpty   Outcome = "empty" // call returned but nothing parseable
	OutcomeError   Outcome = "error"
	OutcomeTimeout Outcome = "timeout"
)

// Observer receives per-chunk telemetry. Implementations must be safe for concurrent use
type Observer interface {
	ChunkDone(outcome Outcome, elapsed time.Duration)
	ChunksDropped(n int)
}

// Config tunes the scheduler. Values above the ceilings are clamped down
type Config struct {
	Keywords      []string
	MaxChunks     int
	Concurrency   int
	MaxChunkChars int
	CallTimeout   time.Duration
}

// Result is the reduced verdict plus bookkeeping about the run
type Result struct {
	Verdict   verdict.Aggregate
	Submitted int
	Dropped   int
	Outcomes  []Outcome // by submission index
}

// Scheduler classifies documents against a Completer. Safe for concurrent use
type Scheduler struct {
	c   Completer
	cfg Config
	obs Observer
	log logger.Logger
}

// Option customizes a Scheduler
type Option func(*Scheduler)

// WithObserver attaches a telemetry sink
func WithObserver(o Observer) Option { return func(s *Scheduler) { s.obs = o } }

// New builds a Scheduler with clamped config
func New(c Completer, cfg Config, opts ...Option) *Scheduler {
	if cfg.MaxChunks <= 0 || cfg.MaxChunks > MaxChunks {
		cfg.MaxChunks = MaxChunks
	}
	if cfg.Concurrency <= 0 || cfg.Concurrency > MaxConcurrency {
		cfg.Concurrency = MaxConcurrency
	}
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = chunker.DefaultMaxChars
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	s := &Scheduler{c: c, cfg: cfg, log: *logger.Named("classify")}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Budget is the longest a Classify run can take: every round of calls at CallTimeout
func (s *Scheduler) Budget() time.Duration {
	rounds := (s.cfg.MaxChunks + s.cfg.Concurrency - 1) / s.cfg.Concurrency
	return time.Duration(rounds) * s.cfg.CallTimeout
}

// Classify filters text to relevant lines, classifies up to MaxChunks chunks and reduces them.
// It never returns an error: a failed chunk contributes an empty verdict.
// Calls are bounded by CallTimeout only; cancellation of ctx does not reach them
func (s *Scheduler) Classify(ctx context.Context, text string) Result {
	ctx = context.WithoutCancel(ctx)
	filtered := chunker.Filter(text, s.cfg.Keywords)
	if filtered == "" {
		s.log.Debug().Msg("no relevant lines; skipping model calls")
		return Result{Verdict: verdict.NoRelevantClauses()}
	}

	chunks := chunker.Split(filtered, s.cfg.MaxChunkChars)
	if len(chunks) == 0 {
		return Result{Verdict: verdict.NoRelevantClauses()}
	}

	dropped := 0
	if len(chunks) > s.cfg.MaxChunks {
		dropped = len(chunks) - s.cfg.MaxChunks
		chunks = chunks[:s.cfg.MaxChunks]
		s.log.Info().Int("dropped", dropped).Int("kept", len(chunks)).Msg("chunk cap reached")
		if s.obs != nil {
			s.obs.ChunksDropped(dropped)
		}
	}

	parts := make([]verdict.Partial, len(chunks))
	outcomes := make([]Outcome, len(chunks))

	var g errgroup.Group
	g.SetLimit(min(s.cfg.Concurrency, len(chunks)))
	for i := range chunks {
		g.Go(func() error {
			parts[i], outcomes[i] = s.classifyChunk(ctx, i, chunks[i])
			return nil
		})
	}
	_ = g.Wait()

	return Result{
		Verdict:   verdict.Reduce(parts),
		Submitted: len(chunks),
		Dropped:   dropped,
		Outcomes:  outcomes,
	}
}

func (s *Scheduler) classifyChunk(ctx context.Context, idx int, chunk string) (verdict.Partial, Outcome) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	raw, err := s.c.Complete(cctx, BuildPrompt(chunk))
	elapsed := time.Since(start)

	var (
		p   verdict.Partial
		out Outcome
	)
	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded)):
		out = OutcomeTimeout
		s.log.Warn().Int("chunk", idx).Dur("elapsed", elapsed).Msg("model call timed out")
	case err != nil:
		out = OutcomeError
		s.log.Warn().Err(err).Int("chunk", idx).Msg("model call failed")
	default:
		var ok bool
		p, ok = verdict.Extract(raw)
		out = OutcomeOK
		if !ok {
			out = OutcomeEmpty
			s.log.Warn().Int("chunk", idx).Int("raw_len", len(raw)).Msg("no verdict in model output")
		}
	}

	if s.obs != nil {
		s.obs.ChunkDone(out, elapsed)
	}
	return p, out
}
