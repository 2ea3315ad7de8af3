// Package ollama is a Completer backed by a local Ollama server's native generate endpoint
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	perr "policyxray/internal/platform/errors"
	"policyxray/internal/platform/logger"
)

const (
	baseURLDefault   = "http://localhost:11434"
	modelDefault     = "qwen2.5:3b"
	defaultTimeout   = 120 * time.Second
	defaultUA        = "policyxray"
	defaultRetryBase = 500 * time.Millisecond
	maxErrBody       = 2048
)

// Options configures the Client
type Options struct {
	BaseURL   string
	Model     string
	UserAgent string
	Timeout   time.Duration

	// Retries apply only to transient failures (refused, 502/503, 429). Zero disables them
	MaxRetries int
	RetryBase  time.Duration
}

// Client calls POST /api/generate with stream disabled. Safe for concurrent use
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(time.Duration)
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response *string `json:"response"`
	Error    string  `json:"error"`
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Model == "" {
		o.Model = modelDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("ollama"),
		sleep: time.Sleep,
	}
}

// Name identifies the backend
func (c *Client) Name() string { return "ollama" }

// Model reports the configured model tag
func (c *Client) Model() string { return c.opts.Model }

// Complete sends one prompt and returns the model's response text
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: c.opts.Model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "ollama encode request")
	}

	attempts := 0
	for {
		out, err := c.generate(ctx, body)
		if err == nil {
			return out, nil
		}
		if attempts >= c.opts.MaxRetries || !perr.IsRetryable(err) || ctx.Err() != nil {
			return "", err
		}
		back := c.backoff(attempts)
		c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Msg("ollama transient error retrying")
		c.sleep(back)
		attempts++
	}
}

func (c *Client) generate(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "ollama new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", perr.FromTransport(err, "ollama generate")
	}
	defer resp.Body.Close()

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Str("model", c.opts.Model).
		Msg("ollama http response")

	if err := perr.FromStatus(resp.StatusCode, "ollama generate"); err != nil {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		c.log.Warn().Int("status", resp.StatusCode).Str("body", string(tail)).Msg("ollama rejected request")
		return "", err
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUpstream, "ollama decode response")
	}
	if gr.Error != "" {
		return "", perr.Upstreamf("ollama: %s", gr.Error)
	}
	if gr.Response == nil {
		return "", perr.Upstreamf("ollama: response field missing")
	}
	return *gr.Response, nil
}

// Ping checks the server is up by listing local models
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"/api/tags", nil)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "ollama new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return perr.FromTransport(err, "ollama ping")
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrBody))
	_ = resp.Body.Close()
	return perr.FromStatus(resp.StatusCode, "ollama ping")
}

func (c *Client) backoff(attempt int) time.Duration {
	ms := int64(c.opts.RetryBase/time.Millisecond) << uint(attempt)
	ceiling := int64(10 * time.Second / time.Millisecond)
	if ms > ceiling {
		ms = ceiling
	}
	return time.Duration(ms) * time.Millisecond
}
