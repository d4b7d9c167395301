// Package api implements the Tensaku REST API using chi.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/tensaku/internal/apperr"
	"github.com/starford/tensaku/internal/calllog"
	"github.com/starford/tensaku/internal/diffmark"
	"github.com/starford/tensaku/internal/generator"
	"github.com/starford/tensaku/internal/models"
	"github.com/starford/tensaku/internal/session"
	"github.com/starford/tensaku/internal/sse"
)

// historyLabelRunes caps the original-text excerpt in history labels.
const historyLabelRunes = 15

// Handler holds API route handlers.
type Handler struct {
	session *session.Session
	gen     *generator.Service
	calls   *calllog.DB // optional
	broker  *sse.Broker // optional
}

// NewHandler creates a new Handler. calls and broker may be nil.
func NewHandler(sess *session.Session, gen *generator.Service, calls *calllog.DB, broker *sse.Broker) *Handler {
	return &Handler{session: sess, gen: gen, calls: calls, broker: broker}
}

// Proofread handles POST /api/proofread.
//
//	@Summary		Proofread a document and make it the current result
//	@Tags			proofread
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ProofreadRequest	true	"Text to proofread"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Router			/proofread [post]
func (h *Handler) Proofread(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ProofreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	_, err := h.session.Submit(r.Context(), models.ProofreadRequest{
		DocType: models.DocType(req.DocType),
		Text:    req.Text,
		Context: req.Context,
	})
	if err != nil {
		writeError(w, "proofread", err)
		return
	}

	snap := h.session.Snapshot()
	if h.broker != nil {
		h.broker.PublishResult(len(snap.History))
	}
	writeJSON(w, http.StatusOK, sessionResponse(snap))
}

// Tone handles POST /api/tone.
//
//	@Summary		Re-proofread the original text with a tone directive
//	@Tags			proofread
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ToneRequest	true	"Tone to apply"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/tone [post]
func (h *Handler) Tone(w http.ResponseWriter, r *http.Request) {
	var req ToneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	tone := models.Tone(req.Tone)
	if !tone.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("tone must be one of: polite, soft, concise"))
		return
	}

	if _, err := h.session.AdjustTone(r.Context(), tone); err != nil {
		writeError(w, "tone adjust", err)
		return
	}

	snap := h.session.Snapshot()
	if h.broker != nil {
		h.broker.PublishResult(len(snap.History))
	}
	writeJSON(w, http.StatusOK, sessionResponse(snap))
}

// Restore handles POST /api/restore.
//
//	@Summary		Load a history entry as the current result
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RestoreRequest	true	"History index (0 = newest)"
//	@Success		200		{object}	SessionResponse
//	@Failure		409		{object}	errResponse
//	@Router			/restore [post]
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.session.Restore(req.Index); err != nil {
		writeError(w, "restore", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(h.session.Snapshot()))
}

// Clear handles POST /api/clear.
//
//	@Summary		Discard the current result and draft; history is kept
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Failure		409	{object}	errResponse
//	@Router			/clear [post]
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Clear(); err != nil {
		writeError(w, "clear", err)
		return
	}
	if h.broker != nil {
		h.broker.PublishCleared()
	}
	writeJSON(w, http.StatusOK, sessionResponse(h.session.Snapshot()))
}

// Draft handles PUT /api/draft.
//
//	@Summary		Store a manual edit of the corrected text
//	@Tags			session
//	@Accept			json
//	@Param			body	body	DraftRequest	true	"Edited text"
//	@Success		204		"Draft stored"
//	@Failure		409		{object}	errResponse
//	@Router			/draft [put]
func (h *Handler) Draft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.session.SetDraft(req.Text); err != nil {
		writeError(w, "draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/session.
//
//	@Summary		Get the rendered session state
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Router			/session [get]
func (h *Handler) Session(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse(h.session.Snapshot()))
}

// History handles GET /api/history.
//
//	@Summary		List past proofreading interactions, newest first
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	HistoryResponse
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, _ *http.Request) {
	entries := h.session.History()
	items := make([]HistoryItem, len(entries))
	for i, e := range entries {
		items[i] = HistoryItem{
			Index:        i,
			Timestamp:    e.Timestamp,
			DocType:      string(e.DocType),
			Label:        historyLabel(e),
			OriginalText: e.OriginalText,
		}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Entries: items})
}

// Generate handles POST /api/generate.
//
//	@Summary		Draft a daily-log entry from observation notes
//	@Tags			generate
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateRequest	true	"Observation notes"
//	@Success		200		{object}	GenerateResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Router			/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	text, err := h.gen.Generate(r.Context(), req)
	if err != nil {
		writeError(w, "generate", err)
		return
	}
	if h.broker != nil {
		h.broker.PublishGenerated()
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Text: text})
}

// Calls handles GET /api/calls.
//
//	@Summary		List recent upstream model calls
//	@Tags			calls
//	@Produce		json
//	@Param			limit	query		int	false	"Max records"
//	@Success		200		{object}	CallsResponse
//	@Router			/calls [get]
func (h *Handler) Calls(w http.ResponseWriter, r *http.Request) {
	if h.calls == nil {
		writeJSON(w, http.StatusOK, CallsResponse{Calls: []calllog.Record{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.calls.List(limit)
	if err != nil {
		slog.Error("list calls failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if records == nil {
		records = []calllog.Record{}
	}
	writeJSON(w, http.StatusOK, CallsResponse{Calls: records})
}

// sessionResponse renders a session snapshot, computing the marked diff
// for the current result.
func sessionResponse(snap session.Snapshot) SessionResponse {
	resp := SessionResponse{
		State:        string(snap.State),
		Result:       snap.Result,
		Draft:        snap.Draft,
		OriginalText: snap.OriginalText,
		HistoryLen:   len(snap.History),
	}
	if snap.Result != nil {
		orig, corr := diffmark.Marked(snap.OriginalText, snap.Result.CorrectedText)
		resp.Diff = &Diff{Original: orig, Corrected: corr}
	}
	return resp
}

// historyLabel builds the clickable list label: time, doc type, and a
// truncated excerpt of the original text.
func historyLabel(e models.HistoryEntry) string {
	excerpt := []rune(e.OriginalText)
	if len(excerpt) > historyLabelRunes {
		excerpt = append(excerpt[:historyLabelRunes], '…')
	}
	return e.Timestamp + " [" + e.DocType.Label() + "] " + string(excerpt)
}

// writeError maps taxonomy errors to HTTP statuses. Anything outside the
// taxonomy is treated as a caller error.
func writeError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, apperr.ErrBusy):
		writeJSON(w, http.StatusConflict, errorBody("another action is in flight"))
	case errors.Is(err, apperr.ErrNoResult):
		writeJSON(w, http.StatusConflict, errorBody("no current result"))
	case errors.Is(err, apperr.ErrNoCredential):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("api key not configured"))
	case errors.Is(err, apperr.ErrAuth):
		writeJSON(w, http.StatusBadGateway, errorBody("api key rejected by the provider"))
	case errors.Is(err, apperr.ErrBadResponse):
		slog.Error(action+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("model response could not be parsed"))
	case errors.Is(err, apperr.ErrService):
		slog.Error(action+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	default:
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	}
}
