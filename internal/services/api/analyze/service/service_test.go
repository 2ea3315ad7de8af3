package service

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"policyxray/internal/core/classify"
	"policyxray/internal/core/rulepack"
	"policyxray/internal/core/verdict"
	perr "policyxray/internal/platform/errors"
	"policyxray/internal/platform/metrics"
	"policyxray/internal/services/api/analyze/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const policy = `Privacy Policy

We sell your personal information to advertisers and partners around the world.

Our app uses fingerprint and facial recognition to unlock premium account features.

We will keep your records indefinitely, even after you close your account with us.

Contact`

func pack(t *testing.T) *rulepack.Pack {
	t.Helper()
	p, err := rulepack.Load()
	require.NoError(t, err)
	return p
}

// scripted answers model-path prompts with a biometric verdict and enhancement prompts with YES
func scripted(calls *atomic.Int32) classify.Completer {
	return classify.CompleterFunc(func(_ context.Context, prompt string) (string, error) {
		calls.Add(1)
		switch {
		case strings.Contains(prompt, "Return STRICT JSON"):
			return `Sure: {"mentions_biometric_data": true, "risk_reason": "face data"}`, nil
		case strings.Contains(prompt, "Answer with: YES or NO"):
			return "YES, it does.", nil
		default:
			return "Article: 9\nConflict: special category data", nil
		}
	})
}

func TestAnalyze_RejectsShortPolicy(t *testing.T) {
	s := New(pack(t), Backends{}, nil, Config{})
	_, err := s.Analyze(context.Background(), domain.AnalyzeInput{Policy: "too short"})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
}

func TestAnalyze_RegexOnly(t *testing.T) {
	m := metrics.New()
	s := New(pack(t), Backends{}, m, Config{})
	assert.False(t, s.CanEnhance())
	assert.False(t, s.CanClassify())

	rep, err := s.Analyze(context.Background(), domain.AnalyzeInput{Policy: policy, UseAI: true})
	require.NoError(t, err)
	assert.Equal(t, 21.4, rep.Overall.Score)

	c, ok := rep.Category("biometric")
	require.True(t, ok)
	require.Len(t, c.Matches, 1)
	assert.Empty(t, c.Matches[0].AIValidation)

	n, err := testutil.GatherAndCount(m.Registry(), "policyxray_analyses_total", "policyxray_overall_score")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAnalyze_EnhancesWhenAsked(t *testing.T) {
	var calls atomic.Int32
	s := New(pack(t), Backends{Enhance: scripted(&calls)}, nil, Config{})

	rep, err := s.Analyze(context.Background(), domain.AnalyzeInput{Policy: policy})
	require.NoError(t, err)
	assert.Zero(t, calls.Load(), "use_ai=false must not call the backend")
	c, _ := rep.Category("data_resale")
	assert.Empty(t, c.Matches[0].AIValidation)

	rep, err = s.Analyze(context.Background(), domain.AnalyzeInput{Policy: policy, UseAI: true})
	require.NoError(t, err)
	// three categories with one match each: validation plus citation
	assert.Equal(t, int32(6), calls.Load())
	for _, name := range []string{"data_resale", "biometric", "indefinite_retention"} {
		c, ok := rep.Category(name)
		require.True(t, ok)
		assert.Equal(t, "YES, it does.", c.Matches[0].AIValidation, name)
		assert.Contains(t, c.Matches[0].Citation, "Article: 9", name)
	}
}

func TestClassify_NoModel(t *testing.T) {
	s := New(pack(t), Backends{}, nil, Config{})
	_, err := s.Classify(context.Background(), domain.ModelInput{Text: "we use your location"})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
}

func TestClassify_EmptyText(t *testing.T) {
	var calls atomic.Int32
	s := New(pack(t), Backends{Model: scripted(&calls)}, nil, Config{})
	_, err := s.Classify(context.Background(), domain.ModelInput{Text: "   "})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
	assert.Zero(t, calls.Load())
}

func TestClassify_Sentinel(t *testing.T) {
	var calls atomic.Int32
	s := New(pack(t), Backends{Model: scripted(&calls)}, nil, Config{})
	out, err := s.Classify(context.Background(), domain.ModelInput{Text: "We like cookies.\nNothing else here."})
	require.NoError(t, err)
	assert.Equal(t, verdict.NoRelevantClauses(), out.Analysis)
	assert.Zero(t, calls.Load())
}

func TestClassify_Aggregates(t *testing.T) {
	var calls atomic.Int32
	m := metrics.New()
	s := New(pack(t), Backends{Model: scripted(&calls)}, m, Config{})
	require.True(t, s.CanClassify())

	out, err := s.Classify(context.Background(), domain.ModelInput{Text: policy})
	require.NoError(t, err)
	assert.True(t, out.Analysis.Biometric)
	assert.False(t, out.Analysis.LocationTracking)
	assert.Equal(t, "face data", out.Analysis.Reason)
	assert.Equal(t, int32(1), calls.Load())

	n, err := testutil.GatherAndCount(m.Registry(), "policyxray_chunk_outcomes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
