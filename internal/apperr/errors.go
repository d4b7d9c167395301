// Package apperr defines the error taxonomy for proofreading actions.
package apperr

import "errors"

var (
	// ErrNoCredential means no API key is configured for the provider.
	ErrNoCredential = errors.New("api key not configured")
	// ErrAuth means the remote service rejected the configured credential.
	ErrAuth = errors.New("api key rejected")
	// ErrBadResponse means the model output violated the JSON contract.
	ErrBadResponse = errors.New("malformed model response")
	// ErrService is any other transport or service failure. The upstream
	// message is attached by wrapping.
	ErrService = errors.New("service error")
	// ErrBusy means another session action is still in flight.
	ErrBusy = errors.New("another action in flight")
	// ErrNoResult means the action requires a current result.
	ErrNoResult = errors.New("no current result")
	// ErrEmptyText means the subject text is empty or whitespace only.
	ErrEmptyText = errors.New("text is empty")
)
