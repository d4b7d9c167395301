// Package models defines the domain types for Tensaku.
package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DocType identifies the kind of childcare document being proofread.
// Each type selects a distinct editorial persona.
type DocType string

// Document types.
const (
	DocTypeNotebook      DocType = "notebook"      // 連絡帳 (parent-facing notebook)
	DocTypeDailyLog      DocType = "daily_log"     // 保育日誌 (internal daily log)
	DocTypeDocumentation DocType = "documentation" // ドキュメンテーション (developmental records)
	DocTypeOther         DocType = "other"         // その他
)

// DocTypes lists all document types in display order.
var DocTypes = []DocType{DocTypeNotebook, DocTypeDailyLog, DocTypeDocumentation, DocTypeOther}

// Label returns the Japanese display label used in prompts and the UI.
func (d DocType) Label() string {
	switch d {
	case DocTypeNotebook:
		return "連絡帳"
	case DocTypeDailyLog:
		return "保育日誌"
	case DocTypeDocumentation:
		return "ドキュメンテーション"
	default:
		return "その他"
	}
}

// Valid reports whether d is a known document type.
func (d DocType) Valid() bool {
	switch d {
	case DocTypeNotebook, DocTypeDailyLog, DocTypeDocumentation, DocTypeOther:
		return true
	}
	return false
}

// Tone is an optional style adjustment applied on a secondary proofread.
type Tone string

// Tones.
const (
	TonePolite  Tone = "polite"  // 丁寧
	ToneSoft    Tone = "soft"    // やわらか
	ToneConcise Tone = "concise" // 簡潔
)

// Tones lists all tone adjustments in display order.
var Tones = []Tone{TonePolite, ToneSoft, ToneConcise}

// Label returns the Japanese display label for the tone button.
func (t Tone) Label() string {
	switch t {
	case TonePolite:
		return "丁寧"
	case ToneSoft:
		return "やわらか"
	case ToneConcise:
		return "簡潔"
	default:
		return string(t)
	}
}

// Valid reports whether t is a known tone.
func (t Tone) Valid() bool {
	switch t {
	case TonePolite, ToneSoft, ToneConcise:
		return true
	}
	return false
}

// ProofreadRequest is one proofreading job. Immutable once built.
type ProofreadRequest struct {
	DocType DocType `json:"doc_type"`
	Text    string  `json:"text"`
	Context string  `json:"context,omitempty"`
	Tone    Tone    `json:"tone,omitempty"`
}

// Validate checks the request before it is sent anywhere.
func (r ProofreadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DocType, validation.Required,
			validation.In(DocTypeNotebook, DocTypeDailyLog, DocTypeDocumentation, DocTypeOther)),
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.Tone, validation.In(TonePolite, ToneSoft, ToneConcise)),
	)
}

// Correction is a single edit reported by the model. Display order is the
// model's output order.
type Correction struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Reason    string `json:"reason"`
}

// ProofreadResult is built atomically from one validated API response;
// it is never partially populated.
type ProofreadResult struct {
	CorrectedText string       `json:"corrected_text"`
	Corrections   []Correction `json:"corrections"`
	Summary       string       `json:"summary"`
}

// HistoryEntry is one past interaction, owned by the session history and
// immutable after insertion. Timestamp is the HH:MM display string.
type HistoryEntry struct {
	Timestamp    string          `json:"timestamp"`
	DocType      DocType         `json:"doc_type"`
	OriginalText string          `json:"original_text"`
	Result       ProofreadResult `json:"result"`
}
