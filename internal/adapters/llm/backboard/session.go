// Package backboard is a Completer over the Backboard assistant/thread/message API.
// A Session owns the assistant id for the life of the process
package backboard

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	perr "policyxray/internal/platform/errors"
	"policyxray/internal/platform/logger"
)

const (
	baseURLDefault        = "https://app.backboard.io/api"
	defaultControlTimeout = 10 * time.Second
	defaultMessageTimeout = 30 * time.Second
	placeholderKey        = "your_api_key_here"
	minKeyLen             = 20
	maxErrBody            = 2048

	// AssistantName is the display name of the assistant this session creates
	AssistantName = "PolicyX-Ray Analyzer"
	// SystemPrompt is attached to the assistant once at creation
	SystemPrompt = "You are a privacy policy expert. Analyze clauses for privacy risks and GDPR compliance. Be concise and factual."
)

// Options configures a Session
type Options struct {
	BaseURL        string
	APIKey         string
	ControlTimeout time.Duration // assistant and thread creation
	MessageTimeout time.Duration // message round trip
}

// Session is the remote conversational handle. Safe for concurrent use;
// the assistant is created at most once
type Session struct {
	opts Options
	ctrl *http.Client
	msg  *http.Client
	log  logger.Logger

	mu          sync.Mutex
	assistantID string
}

// NewSession creates a Session with sane defaults. It makes no network calls
func NewSession(o Options) *Session {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.ControlTimeout <= 0 {
		o.ControlTimeout = defaultControlTimeout
	}
	if o.MessageTimeout <= 0 {
		o.MessageTimeout = defaultMessageTimeout
	}
	return &Session{
		opts: o,
		ctrl: &http.Client{Timeout: o.ControlTimeout},
		msg:  &http.Client{Timeout: o.MessageTimeout},
		log:  *logger.Named("backboard"),
	}
}

// Name identifies the backend
func (s *Session) Name() string { return "backboard" }

// IsConfigured reports whether the key looks real
func (s *Session) IsConfigured() bool {
	k := strings.TrimSpace(s.opts.APIKey)
	return len(k) > minKeyLen && k != placeholderKey
}

// AssistantID returns the cached assistant id, empty before the first EnsureAssistant
func (s *Session) AssistantID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assistantID
}

// EnsureAssistant creates the assistant on first use and caches its id.
// A failed creation is not cached, so the next call tries again
func (s *Session) EnsureAssistant(ctx context.Context) (string, error) {
	if !s.IsConfigured() {
		return "", perr.Unauthorizedf("backboard: api key not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assistantID != "" {
		return s.assistantID, nil
	}

	var out struct {
		AssistantID string `json:"assistant_id"`
	}
	err := s.postJSON(ctx, s.ctrl, "/assistants", map[string]string{
		"name":          AssistantName,
		"system_prompt": SystemPrompt,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.AssistantID == "" {
		return "", perr.Upstreamf("backboard: assistant_id missing")
	}
	s.assistantID = out.AssistantID
	s.log.Info().Str("assistant_id", out.AssistantID).Msg("backboard assistant created")
	return out.AssistantID, nil
}

// Complete runs one prompt on a fresh thread and returns the reply content
func (s *Session) Complete(ctx context.Context, prompt string) (string, error) {
	aid, err := s.EnsureAssistant(ctx)
	if err != nil {
		return "", err
	}

	var th struct {
		ThreadID string `json:"thread_id"`
	}
	if err := s.postJSON(ctx, s.ctrl, "/assistants/"+url.PathEscape(aid)+"/threads", map[string]string{}, &th); err != nil {
		return "", err
	}
	if th.ThreadID == "" {
		return "", perr.Upstreamf("backboard: thread_id missing")
	}

	form := url.Values{}
	form.Set("content", prompt)
	form.Set("stream", "false")
	req, err := s.newRequest(ctx, "/threads/"+url.PathEscape(th.ThreadID)+"/messages", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var msg struct {
		Content string `json:"content"`
	}
	if err := s.do(s.msg, req, &msg); err != nil {
		return "", err
	}
	s.log.Debug().Str("thread_id", th.ThreadID).Int("chars", len(msg.Content)).Msg("backboard reply")
	return msg.Content, nil
}

// Ping verifies the key by making sure the assistant exists
func (s *Session) Ping(ctx context.Context) error {
	_, err := s.EnsureAssistant(ctx)
	return err
}

func (s *Session) postJSON(ctx context.Context, hc *http.Client, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "backboard encode request")
	}
	req, err := s.newRequest(ctx, path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(hc, req, out)
}

func (s *Session) newRequest(ctx context.Context, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.BaseURL+path, body)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "backboard new request failed")
	}
	req.Header.Set("X-API-Key", s.opts.APIKey)
	return req, nil
}

func (s *Session) do(hc *http.Client, req *http.Request, out any) error {
	path := req.URL.Path
	resp, err := hc.Do(req)
	if err != nil {
		return perr.FromTransportf(err, "backboard %s", path)
	}
	defer resp.Body.Close()

	if err := perr.FromStatus(resp.StatusCode, "backboard "+path); err != nil {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		s.log.Warn().Int("status", resp.StatusCode).Str("path", path).Str("body", string(tail)).Msg("backboard rejected request")
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUpstream, "backboard decode %s", path)
	}
	return nil
}
