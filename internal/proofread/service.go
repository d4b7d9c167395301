// Package proofread implements the proofreading round trip: persona
// prompt, one completion call, fence stripping, schema validation.
package proofread

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/tensaku/internal/apperr"
	"github.com/starford/tensaku/internal/calllog"
	"github.com/starford/tensaku/internal/checksum"
	"github.com/starford/tensaku/internal/models"
	"github.com/starford/tensaku/internal/parser"
	"github.com/starford/tensaku/internal/prompts"
	"github.com/starford/tensaku/internal/providers"
	"github.com/starford/tensaku/internal/schema"
)

const defaultMaxTokens = 2048

// Service turns a ProofreadRequest into a schema-validated
// ProofreadResult. It never mutates session state; a failed call has no
// side effect beyond its call-log record.
type Service struct {
	completer providers.Completer
	library   *prompts.Library
	calls     *calllog.DB // optional
	logger    *slog.Logger
	maxTokens int
}

// NewService creates a proofreading service. calls may be nil to disable
// call logging.
func NewService(completer providers.Completer, library *prompts.Library, calls *calllog.DB, logger *slog.Logger, maxTokens int) *Service {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		completer: completer,
		library:   library,
		calls:     calls,
		logger:    logger,
		maxTokens: maxTokens,
	}
}

// Proofread issues one completion and parses the structured corrections.
// Errors follow the apperr taxonomy: ErrNoCredential before any network
// traffic, ErrAuth on credential rejection, ErrBadResponse on a payload
// that fails the output contract, ErrService otherwise. No retries, no
// partial results.
func (s *Service) Proofread(ctx context.Context, req models.ProofreadRequest) (*models.ProofreadResult, error) {
	if !s.completer.Configured() {
		return nil, apperr.ErrNoCredential
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperr.ErrEmptyText
	}

	system := s.library.System(req.DocType)
	user := s.library.User(req)

	record := calllog.Record{
		Provider:  s.completer.Name(),
		DocType:   string(req.DocType),
		Tone:      string(req.Tone),
		PromptCID: checksum.Short([]byte(system + "\x00" + user)),
	}

	res, err := s.completer.Complete(ctx, providers.CompletionRequest{
		System:    system,
		User:      user,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		record.Error = err.Error()
		s.record(record)
		return nil, err
	}

	record.Model = res.Model
	record.InputTokens = res.InputTokens
	record.OutputTokens = res.OutputTokens
	record.LatencyMs = int(res.Latency.Milliseconds())

	result, err := decodeResult(res.Text)
	if err != nil {
		record.Error = err.Error()
		s.record(record)
		return nil, err
	}

	record.Success = true
	s.record(record)
	return result, nil
}

// decodeResult extracts, validates, and unmarshals the model reply.
// All-or-nothing: no field-by-field salvage.
func decodeResult(raw string) (*models.ProofreadResult, error) {
	payload, err := parser.ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrBadResponse, err)
	}
	if err := schema.ValidateResponse([]byte(payload)); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrBadResponse, err)
	}
	var result models.ProofreadResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrBadResponse, err)
	}
	if result.Corrections == nil {
		result.Corrections = []models.Correction{}
	}
	return &result, nil
}

// record appends to the call log; failures are logged, never fatal to
// the user action.
func (s *Service) record(r calllog.Record) {
	if s.calls == nil {
		return
	}
	if err := s.calls.Append(r); err != nil {
		s.logger.Warn("call log append failed", slog.String("error", err.Error()))
	}
}
