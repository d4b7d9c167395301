package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/starford/tensaku/internal/apperr"
)

const (
	// OpenAIName identifies the generation provider in the call log.
	OpenAIName = "openai"

	openAIDefaultModel   = "gpt-4o-mini"
	openAIDefaultTimeout = 120 * time.Second
)

// OpenAIConfig holds configuration for the OpenAI chat client.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	BaseURL    string       // Optional (tests)
	HTTPClient *http.Client // Optional (tests)
}

// OpenAIClient implements Completer using the official OpenAI SDK.
// SDK-level retries are disabled: one attempt per invocation.
type OpenAIClient struct {
	apiKey string
	model  string
	client openai.Client
}

// NewOpenAIClient creates an OpenAI chat client. An empty API key is
// allowed; Complete then fails with apperr.ErrNoCredential.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = openAIDefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: openai.NewClient(opts...),
	}
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// Configured reports whether an API key is present.
func (c *OpenAIClient) Configured() bool {
	return c.apiKey != ""
}

// Complete issues one chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if c.apiKey == "" {
		return nil, apperr.ErrNoCredential
	}

	start := time.Now()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
	}
	if req.System != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(req.System))
	}
	params.Messages = append(params.Messages, openai.UserMessage(req.User))
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return nil, apperr.ErrAuth
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrService, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices in response", apperr.ErrService)
	}

	return &CompletionResult{
		Text:         strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:        resp.Model,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		Latency:      time.Since(start),
	}, nil
}
