package api

import (
	"github.com/starford/tensaku/internal/calllog"
	"github.com/starford/tensaku/internal/generator"
	"github.com/starford/tensaku/internal/models"
)

// ProofreadRequest is the request body for submitting text.
type ProofreadRequest struct {
	DocType string `json:"doc_type" example:"notebook" validate:"required"`
	Text    string `json:"text" example:"きょうは公園にいきました" validate:"required"`
	Context string `json:"context,omitempty" example:"りす組、5歳児クラス"`
}

// ToneRequest is the request body for a tone adjustment.
type ToneRequest struct {
	Tone string `json:"tone" example:"soft" validate:"required"`
}

// RestoreRequest selects a history entry by index (0 = newest).
type RestoreRequest struct {
	Index int `json:"index" example:"0"`
}

// DraftRequest carries a manual edit of the corrected text.
type DraftRequest struct {
	Text string `json:"text"`
}

// Diff is the marked-up character diff of the current result.
type Diff struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

// SessionResponse is the rendered session state.
type SessionResponse struct {
	State        string                  `json:"state"`
	Result       *models.ProofreadResult `json:"result,omitempty"`
	Diff         *Diff                   `json:"diff,omitempty"`
	Draft        string                  `json:"draft"`
	OriginalText string                  `json:"original_text"`
	HistoryLen   int                     `json:"history_len"`
}

// HistoryItem is one clickable entry in the history list.
type HistoryItem struct {
	Index        int    `json:"index"`
	Timestamp    string `json:"timestamp"`
	DocType      string `json:"doc_type"`
	Label        string `json:"label"`
	OriginalText string `json:"original_text"`
}

// HistoryResponse wraps the history list, newest first.
type HistoryResponse struct {
	Entries []HistoryItem `json:"entries" validate:"required"`
}

// GenerateRequest is the request body for drafting a daily-log entry
// (aliased from the domain layer).
type GenerateRequest = generator.Input

// GenerateResponse wraps a generated daily-log draft.
type GenerateResponse struct {
	Text string `json:"text" validate:"required"`
}

// CallsResponse wraps recent upstream call records, newest first.
type CallsResponse struct {
	Calls []calllog.Record `json:"calls" validate:"required"`
}
