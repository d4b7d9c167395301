package providers

import (
	"context"
	"time"
)

// MockCompleter is a Completer for tests. Not safe for concurrent use;
// the session serializes actions, so tests do not need it to be.
type MockCompleter struct {
	// Response is the canned reply text when Respond is nil.
	Response string
	// Err, if set, fails every call.
	Err error
	// Respond, if set, computes the reply per call.
	Respond func(req CompletionRequest) (string, error)
	// Unconfigured simulates a missing API key.
	Unconfigured bool

	// Recorded state.
	Calls   int
	LastReq CompletionRequest
}

// Name returns the mock identifier.
func (m *MockCompleter) Name() string {
	return "mock"
}

// Configured reports the inverse of Unconfigured.
func (m *MockCompleter) Configured() bool {
	return !m.Unconfigured
}

// Complete records the request and returns the configured reply.
func (m *MockCompleter) Complete(_ context.Context, req CompletionRequest) (*CompletionResult, error) {
	m.Calls++
	m.LastReq = req

	if m.Respond != nil {
		text, err := m.Respond(req)
		if err != nil {
			return nil, err
		}
		return &CompletionResult{Text: text, Model: "mock", Latency: time.Millisecond}, nil
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &CompletionResult{Text: m.Response, Model: "mock", Latency: time.Millisecond}, nil
}
