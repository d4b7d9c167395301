package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starford/tensaku/internal/apperr"
)

const (
	// ClaudeName identifies the proofreading provider in the call log.
	ClaudeName = "claude"

	claudeDefaultBaseURL = "https://api.anthropic.com"
	claudeAPIVersion     = "2023-06-01"
	claudeDefaultModel   = "claude-haiku-4-5"
	claudeDefaultTimeout = 120 * time.Second
)

// ClaudeConfig holds configuration for the Claude messages client.
type ClaudeConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	BaseURL    string       // Optional (tests)
	HTTPClient *http.Client // Optional (tests)
}

// ClaudeClient calls the Anthropic messages endpoint. One synchronous
// attempt per invocation, no retry and no backoff.
type ClaudeClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewClaudeClient creates a Claude client. An empty API key is allowed;
// Complete then fails with apperr.ErrNoCredential.
func NewClaudeClient(cfg ClaudeConfig) *ClaudeClient {
	if cfg.Model == "" {
		cfg.Model = claudeDefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = claudeDefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = claudeDefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &ClaudeClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  client,
	}
}

// Name returns the provider identifier.
func (c *ClaudeClient) Name() string {
	return ClaudeName
}

// Configured reports whether an API key is present.
func (c *ClaudeClient) Configured() bool {
	return c.apiKey != ""
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type claudeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete issues one messages request and returns the concatenated text
// blocks of the reply.
func (c *ClaudeClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if c.apiKey == "" {
		return nil, apperr.ErrNoCredential
	}

	start := time.Now()

	body, err := json.Marshal(claudeRequest{
		Model:       c.model,
		MaxTokens:   req.MaxTokens,
		System:      req.System,
		Temperature: req.Temperature,
		Messages:    []claudeMessage{{Role: "user", Content: req.User}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", apperr.ErrService, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", apperr.ErrService, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrService, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", apperr.ErrService, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperr.ErrAuth
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d: %s", apperr.ErrService, resp.StatusCode, upstreamMessage(respBody))
	}

	var cr claudeResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", apperr.ErrService, err)
	}

	var text strings.Builder
	for _, block := range cr.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%w: empty content in response", apperr.ErrService)
	}

	model := cr.Model
	if model == "" {
		model = c.model
	}

	return &CompletionResult{
		Text:         strings.TrimSpace(text.String()),
		Model:        model,
		InputTokens:  cr.Usage.InputTokens,
		OutputTokens: cr.Usage.OutputTokens,
		Latency:      time.Since(start),
	}, nil
}

// upstreamMessage extracts the error message from an Anthropic error
// body, falling back to the raw body.
func upstreamMessage(body []byte) string {
	var er claudeErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return string(body)
}
