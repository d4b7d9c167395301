// Package providers implements clients for the remote completion
// endpoints. Clients issue exactly one attempt per invocation: every
// failure is terminal for the action and surfaced to the caller, which
// matches the retry-free design of the session layer.
package providers

import (
	"context"
	"time"
)

// Completer is the single external collaborator the proofreading and
// generation services depend on.
type Completer interface {
	// Complete sends one completion request and returns the raw reply.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)

	// Configured reports whether a credential is present. A false value
	// lets callers fail fast with a configuration error instead of a
	// doomed network call.
	Configured() bool

	// Name returns the provider identifier (e.g. "claude").
	Name() string
}

// CompletionRequest carries one system instruction and one user message
// with a bounded output budget.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64 // 0 leaves the provider default
}

// CompletionResult is the raw reply plus usage metadata for the call log.
type CompletionResult struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	Latency      time.Duration
}
