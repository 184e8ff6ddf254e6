package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonwraymond/mapops/secret"
)

// Completion is the canonical shape of an AI completion response. Data
// cached for completion requests always holds this shape regardless of
// the upstream wire format.
type Completion struct {
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
	Usage     Usage      `json:"usage"`
}

// Citation is a source reference attached to a completion.
type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Usage is the token accounting for one completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// CompletionConfig configures a CompletionStrategy.
type CompletionConfig struct {
	// Endpoint is the completion API URL. Required.
	Endpoint string

	// APIKey is the provider API key. Supports ${VAR} expansion and
	// secretref resolution via Secrets.
	APIKey string

	// Model names the upstream model.
	Model string

	// MaxTokens caps the completion length.
	// Default: 4096
	MaxTokens int

	// TTL overrides the cached-result TTL.
	// Default: 12 hours
	TTL time.Duration

	// HTTPClient is the client for upstream calls.
	// Default: http.DefaultClient
	HTTPClient *http.Client

	// Secrets resolves the API key.
	Secrets *secret.Resolver
}

// CompletionStrategy calls an AI completion upstream. Its content output
// is what the response parser consumes downstream.
type CompletionStrategy struct {
	config CompletionConfig
}

var _ Strategy = (*CompletionStrategy)(nil)

// NewCompletionStrategy creates a completion strategy.
func NewCompletionStrategy(config CompletionConfig) *CompletionStrategy {
	if config.MaxTokens <= 0 {
		config.MaxTokens = 4096
	}
	if config.TTL <= 0 {
		config.TTL = 12 * time.Hour
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	return &CompletionStrategy{config: config}
}

// ID implements Strategy.
func (c *CompletionStrategy) ID() string { return "completion" }

// CacheTTL implements Strategy.
func (c *CompletionStrategy) CacheTTL() time.Duration { return c.config.TTL }

// Execute runs the completion. The prompt comes from Params["prompt"]
// when set, otherwise it is built from the request fields.
func (c *CompletionStrategy) Execute(ctx context.Context, req Request) (Result, error) {
	apiKey, err := c.config.Secrets.ResolveValue(ctx, c.config.APIKey)
	if err != nil || strings.TrimSpace(apiKey) == "" {
		return Result{}, &ConfigError{Strategy: c.ID(), Setting: "api_key", Reason: "no API key configured"}
	}
	if c.config.Endpoint == "" {
		return Result{}, &ConfigError{Strategy: c.ID(), Setting: "endpoint", Reason: "no endpoint configured"}
	}

	payload, err := json.Marshal(map[string]any{
		"model":      c.config.Model,
		"prompt":     promptFor(req),
		"max_tokens": c.config.MaxTokens,
	})
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, &UpstreamError{Strategy: c.ID(), Cause: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.config.HTTPClient.Do(httpReq)
	if err != nil {
		return Result{}, &UpstreamError{Strategy: c.ID(), Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &UpstreamError{Strategy: c.ID(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, &UpstreamError{Strategy: c.ID(), Cause: err}
	}

	completion, err := DecodeCompletion(body)
	if err != nil {
		return Result{}, &UpstreamError{Strategy: c.ID(), Cause: err}
	}

	data, err := json.Marshal(completion)
	if err != nil {
		return Result{}, err
	}
	return Result{Success: true, Data: data, Timestamp: time.Now().UTC()}, nil
}

// promptFor builds the analysis prompt from request fields.
func promptFor(req Request) string {
	if p, ok := req.Params["prompt"].(string); ok && strings.TrimSpace(p) != "" {
		return p
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze %s", req.Query)
	if req.Location != "" {
		fmt.Fprintf(&b, " near %s", req.Location)
	}
	if req.Radius != "" {
		fmt.Fprintf(&b, " within a %s mile radius", req.Radius)
	}
	b.WriteString(". For each site, emit a section headed '## NODE <n>: **<name>**' " +
		"with Type, Distance, Capacity, Summary lines and numeric POWER SCORE and FIBER SCORE out of 10.")
	return b.String()
}

// DecodeCompletion parses an upstream completion body into the canonical
// Completion shape. It accepts the native {content, citations, usage}
// form and the chat-style {choices: [{message: {content}}]} form.
func DecodeCompletion(body []byte) (Completion, error) {
	var native Completion
	if err := json.Unmarshal(body, &native); err == nil && native.Content != "" {
		return native, nil
	}

	var chat struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			Text string `json:"text"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &chat); err != nil {
		return Completion{}, err
	}
	if len(chat.Choices) == 0 {
		return Completion{}, errors.New("tool: completion response has no content")
	}
	content := chat.Choices[0].Message.Content
	if content == "" {
		content = chat.Choices[0].Text
	}
	if content == "" {
		return Completion{}, errors.New("tool: completion response has no content")
	}
	return Completion{
		Content: content,
		Usage: Usage{
			InputTokens:  chat.Usage.PromptTokens,
			OutputTokens: chat.Usage.CompletionTokens,
		},
	}, nil
}
