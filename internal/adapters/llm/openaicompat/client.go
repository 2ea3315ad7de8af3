// Package openaicompat is a Completer over the Chat Completions API. It works against
// OpenAI itself or any compatible server (Ollama's /v1, vLLM, LM Studio)
package openaicompat

import (
	"context"
	stderrs "errors"
	"strings"
	"time"

	perr "policyxray/internal/platform/errors"
	"policyxray/internal/platform/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	baseURLDefault = "https://api.openai.com/v1/"
	modelDefault   = "gpt-4o-mini"
	defaultTimeout = 120 * time.Second

	// SystemPrompt frames every request
	SystemPrompt = "You are a privacy policy expert. Analyze clauses for privacy risks and GDPR compliance. Be concise and factual."
)

// Options configures the Client
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxRetries  int
}

// Client wraps the openai-go client. Safe for concurrent use
type Client struct {
	api  *openai.Client
	opts Options
	log  logger.Logger
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if !strings.HasSuffix(o.BaseURL, "/") {
		o.BaseURL += "/"
	}
	if o.Model == "" {
		o.Model = modelDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	reqOpts := []option.RequestOption{
		option.WithBaseURL(o.BaseURL),
		option.WithRequestTimeout(o.Timeout),
		option.WithMaxRetries(o.MaxRetries),
	}
	if o.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(o.APIKey))
	} else {
		// local servers ignore the key but the header must be present
		reqOpts = append(reqOpts, option.WithAPIKey("unused"))
	}
	return &Client{
		api:  openai.NewClient(reqOpts...),
		opts: o,
		log:  *logger.Named("openai"),
	}
}

// Name identifies the backend
func (c *Client) Name() string { return "openai" }

// Model reports the configured model name
func (c *Client) Model() string { return c.opts.Model }

// Complete sends one user prompt under the system prompt and returns the first choice
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(openai.ChatModel(c.opts.Model)),
		Temperature: openai.Float(c.opts.Temperature),
	})
	if err != nil {
		return "", mapError(err)
	}

	c.log.Debug().
		Str("model", c.opts.Model).
		Dur("latency", time.Since(start)).
		Int("choices", len(resp.Choices)).
		Msg("chat completion")

	if len(resp.Choices) == 0 {
		return "", perr.Upstreamf("openai: no choices returned")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", perr.Upstreamf("openai: empty completion")
	}
	return content, nil
}

// Ping checks the configured model is reachable
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.Models.Get(ctx, c.opts.Model); err != nil {
		return mapError(err)
	}
	return nil
}

func mapError(err error) error {
	var apiErr *openai.Error
	if perr.IsTimeout(err) {
		return perr.Wrap(err, perr.ErrorCodeTimeout, "openai chat completion")
	}
	if stderrs.As(err, &apiErr) {
		code, _ := perr.UpstreamCode(apiErr.StatusCode)
		return perr.Wrapf(err, code, "openai: status %d", apiErr.StatusCode)
	}
	return perr.FromTransport(err, "openai chat completion")
}
