// Package session holds the per-process proofreading session: the
// current result, the editable draft, and the capped history.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/starford/tensaku/internal/apperr"
	"github.com/starford/tensaku/internal/models"
	"github.com/starford/tensaku/internal/proofread"
)

// State names the session lifecycle phases.
type State string

// Session states.
const (
	StateIdle          State = "idle"
	StateHasResult     State = "has_result"
	StateToneAdjusting State = "tone_adjusting"
)

// DefaultHistoryLimit caps the history list. The oldest entry is evicted
// once the cap is exceeded (strict FIFO by age, not LRU).
const DefaultHistoryLimit = 20

// Snapshot is a read-only copy of the session for rendering.
type Snapshot struct {
	State        State
	Result       *models.ProofreadResult
	OriginalText string
	Draft        string
	History      []models.HistoryEntry
}

// Session serializes user actions: one submit or tone adjustment runs to
// completion before the next is accepted, and a concurrent attempt fails
// with apperr.ErrBusy rather than queueing. Failed actions leave every
// field untouched.
type Session struct {
	svc   *proofread.Service
	limit int
	now   func() time.Time

	mu       sync.Mutex
	inFlight bool
	state    State
	result   *models.ProofreadResult
	original string
	draft    string
	lastReq  models.ProofreadRequest
	history  []models.HistoryEntry
}

// New creates an idle session. limit <= 0 falls back to
// DefaultHistoryLimit.
func New(svc *proofread.Service, limit int) *Session {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Session{
		svc:   svc,
		limit: limit,
		now:   time.Now,
		state: StateIdle,
	}
}

// Submit proofreads text and, on success, makes it the current result,
// appends a history entry, and re-seeds the draft from the corrected
// text. Allowed from Idle and HasResult.
func (s *Session) Submit(ctx context.Context, req models.ProofreadRequest) (*models.ProofreadResult, error) {
	req.Tone = "" // a fresh submission carries no tone directive
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, apperr.ErrBusy
	}
	s.inFlight = true
	s.mu.Unlock()

	result, err := s.svc.Proofread(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		return nil, err
	}

	s.state = StateHasResult
	s.result = result
	s.original = req.Text
	s.draft = result.CorrectedText
	s.lastReq = req
	s.append(req.DocType, req.Text, *result)
	return result, nil
}

// AdjustTone re-proofreads the original text with a tone directive. The
// adjustment is tracked as its own history entry, never merged into the
// entry it refines. Allowed only from HasResult; the session reads
// ToneAdjusting while the call is in flight.
func (s *Session) AdjustTone(ctx context.Context, tone models.Tone) (*models.ProofreadResult, error) {
	if !tone.Valid() {
		return nil, fmt.Errorf("unknown tone %q", tone)
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, apperr.ErrBusy
	}
	if s.state != StateHasResult {
		s.mu.Unlock()
		return nil, apperr.ErrNoResult
	}
	req := s.lastReq
	req.Tone = tone
	s.inFlight = true
	s.state = StateToneAdjusting
	s.mu.Unlock()

	result, err := s.svc.Proofread(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.state = StateHasResult
	if err != nil {
		return nil, err
	}

	s.result = result
	s.draft = result.CorrectedText
	s.lastReq = req
	s.append(req.DocType, req.Text, *result)
	return result, nil
}

// Restore loads the history entry at index as the current result and
// original text, and re-seeds the draft. The entry itself is neither
// removed nor reordered; an out-of-range index is a no-op.
func (s *Session) Restore(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return apperr.ErrBusy
	}
	if index < 0 || index >= len(s.history) {
		return nil
	}

	e := s.history[index]
	result := e.Result
	s.state = StateHasResult
	s.result = &result
	s.original = e.OriginalText
	s.draft = e.Result.CorrectedText
	s.lastReq = models.ProofreadRequest{DocType: e.DocType, Text: e.OriginalText}
	return nil
}

// Clear returns to Idle, discarding the current result, original text,
// and draft. History is kept.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return apperr.ErrBusy
	}
	s.state = StateIdle
	s.result = nil
	s.original = ""
	s.draft = ""
	s.lastReq = models.ProofreadRequest{}
	return nil
}

// SetDraft stores manual edits to the corrected text. The draft is only
// re-seeded by a genuinely new result (submit, tone adjust, restore);
// reads never overwrite it.
func (s *Session) SetDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return apperr.ErrNoResult
	}
	s.draft = text
	return nil
}

// Snapshot returns a copy of the session safe to render without locks.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:        s.state,
		OriginalText: s.original,
		Draft:        s.draft,
		History:      append([]models.HistoryEntry(nil), s.history...),
	}
	if s.result != nil {
		r := *s.result
		r.Corrections = append([]models.Correction(nil), s.result.Corrections...)
		snap.Result = &r
	}
	return snap
}

// History returns a copy of the history list, newest first.
func (s *Session) History() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.HistoryEntry(nil), s.history...)
}

// append inserts newest-first and evicts the oldest entry past the cap.
// Caller holds s.mu.
func (s *Session) append(dt models.DocType, original string, result models.ProofreadResult) {
	entry := models.HistoryEntry{
		Timestamp:    s.now().Format("15:04"),
		DocType:      dt,
		OriginalText: original,
		Result:       result,
	}
	s.history = append([]models.HistoryEntry{entry}, s.history...)
	if len(s.history) > s.limit {
		s.history = s.history[:s.limit]
	}
}
