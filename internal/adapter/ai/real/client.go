// Package real implements the completion client backed by an OpenAI-compatible
// chat completions endpoint.
package real

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/fairyhunter13/pm-interview-coach/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/pm-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/pm-interview-coach/internal/config"
	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
	obsctx "github.com/fairyhunter13/pm-interview-coach/internal/observability"
)

// errMalformed marks a 2xx response without usable generated text.
var errMalformed = errors.New("malformed completion response")

// Client implements domain.CompletionClient.
type Client struct {
	api            *openai.Client
	apiKey         string
	model          string
	temperature    float32
	maxTokens      int
	attemptTimeout time.Duration
	policy         domain.RetryPolicy
	limiter        *rate.Limiter
	timer          backoff.Timer
	counter        *tokencount.Counter
	httpClient     *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithTimer replaces the backoff timer, letting tests observe waits without sleeping.
func WithTimer(t backoff.Timer) Option {
	return func(c *Client) { c.timer = t }
}

// WithHTTPClient sets the transport used for outbound calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetryPolicy overrides the policy derived from config.
func WithRetryPolicy(p domain.RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// New constructs a completion client from config.
func New(cfg config.Config, opts ...Option) *Client {
	c := &Client{
		apiKey:         cfg.CompletionAPIKey,
		model:          cfg.CompletionModel,
		temperature:    cfg.CompletionTemperature,
		maxTokens:      cfg.CompletionMaxTokens,
		attemptTimeout: cfg.CompletionTimeout,
		policy:         cfg.GetRetryPolicy(),
		counter:        tokencount.DefaultCounter,
	}
	c.httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("Completion %s %s", r.Method, r.URL.Host)
		}),
	)}
	if c.model == "" {
		c.model = openai.GPT4oMini
	}
	if cfg.CompletionRPS > 0 {
		burst := cfg.CompletionBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.CompletionRPS), burst)
	}
	for _, o := range opts {
		o(c)
	}

	oc := openai.DefaultConfig(c.apiKey)
	if cfg.CompletionBaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.CompletionBaseURL, "/")
	}
	oc.HTTPClient = c.httpClient
	c.api = openai.NewClientWithConfig(oc)
	return c
}

// Model returns the configured model id.
func (c *Client) Model() string { return c.model }

// Complete sends the prompt and returns the generated text. Every failure
// (transport, non-2xx, malformed body) is retried per the policy; once the
// attempts are spent it returns domain.ErrCompletionExhausted.
func (c *Client) Complete(ctx domain.Context, req domain.CompletionRequest) (domain.CompletionResponse, error) {
	lg := obsctx.LoggerFromContext(ctx)
	if c.apiKey == "" {
		return domain.CompletionResponse{}, fmt.Errorf("op=completion.Complete: %w: completion api key missing", domain.ErrCompletionExhausted)
	}

	state := domain.NewRetryState(c.policy)
	var out domain.CompletionResponse
	op := func() error {
		state.Record()
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		start := time.Now()
		resp, err := c.attempt(ctx, req)
		observability.ObserveCompletionAttempt(c.model, err, time.Since(start))
		if err != nil {
			lg.Warn("completion attempt failed",
				slog.String("model", c.model),
				slog.Int("attempt", state.Attempt),
				slog.Int("max_attempts", c.policy.MaxAttempts),
				slog.Int("status", statusOf(err)),
				slog.Any("error", err))
			return err
		}
		out = resp
		return nil
	}
	notify := func(err error, wait time.Duration) {
		lg.Info("waiting before completion retry",
			slog.Int("next_attempt", state.Attempt+1),
			slog.Duration("backoff", wait))
	}

	b := backoff.WithContext(newPolicyBackOff(c.policy), ctx)
	if err := backoff.RetryNotifyWithTimer(op, b, notify, c.timer); err != nil {
		lg.Error("completion failed after retries",
			slog.String("model", c.model),
			slog.Int("attempts", state.Attempt),
			slog.Any("error", err))
		return domain.CompletionResponse{Attempts: state.Attempt, Model: c.model},
			fmt.Errorf("op=completion.Complete: %w after %d attempts: %w", domain.ErrCompletionExhausted, state.Attempt, err)
	}

	out.Attempts = state.Attempt
	lg.Info("completion succeeded",
		slog.String("model", out.Model),
		slog.Int("attempts", out.Attempts),
		slog.Int("prompt_tokens", out.PromptTokens),
		slog.Int("completion_tokens", out.CompletionTokens))
	return out, nil
}

// attempt performs one bounded call.
func (c *Client) attempt(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResponse, error) {
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserContent},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.CompletionResponse{}, fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
		}
		return domain.CompletionResponse{}, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return domain.CompletionResponse{}, fmt.Errorf("%w: no choices", errMalformed)
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return domain.CompletionResponse{}, fmt.Errorf("%w: empty content", errMalformed)
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	out := domain.CompletionResponse{
		Text:             text,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	if out.PromptTokens == 0 && out.CompletionTokens == 0 && c.counter != nil {
		u := c.counter.Usage(req.SystemPrompt, req.UserContent, text, c.model)
		out.PromptTokens, out.CompletionTokens = u.PromptTokens, u.CompletionTokens
	}
	observability.RecordTokenUsage(model, out.PromptTokens, out.CompletionTokens)
	return out, nil
}

// statusOf extracts the HTTP status from go-openai errors, or 0.
func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
