package session_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/starford/tensaku/internal/apperr"
	"github.com/starford/tensaku/internal/models"
	"github.com/starford/tensaku/internal/providers"
	"github.com/starford/tensaku/internal/session"
	"github.com/starford/tensaku/internal/testutil"
)

func req(text string) models.ProofreadRequest {
	return models.ProofreadRequest{DocType: models.DocTypeNotebook, Text: text}
}

// replyFor builds a contract-conforming reply whose corrected text tags
// the input, so tests can tell results apart.
func replyFor(marker string) string {
	return fmt.Sprintf(`{"corrected_text": "添削済み:%s", "corrections": [], "summary": "ok"}`, marker)
}

func TestSubmitHappyPath(t *testing.T) {
	mock := &providers.MockCompleter{Response: replyFor("a")}
	s := testutil.TestSession(t, mock, 0)

	result, err := s.Submit(context.Background(), req("原文a"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	snap := s.Snapshot()
	if snap.State != session.StateHasResult {
		t.Errorf("state = %s", snap.State)
	}
	if snap.Result == nil || snap.Result.CorrectedText != result.CorrectedText {
		t.Error("snapshot result mismatch")
	}
	if snap.OriginalText != "原文a" {
		t.Errorf("original = %q", snap.OriginalText)
	}
	if snap.Draft != result.CorrectedText {
		t.Errorf("draft should be seeded from corrected text, got %q", snap.Draft)
	}
	if len(snap.History) != 1 {
		t.Fatalf("history len = %d", len(snap.History))
	}
	if snap.History[0].Timestamp == "" {
		t.Error("history entry missing timestamp")
	}
}

func TestSubmitFailureLeavesStateUntouched(t *testing.T) {
	mock := &providers.MockCompleter{Response: replyFor("a")}
	s := testutil.TestSession(t, mock, 0)
	if _, err := s.Submit(context.Background(), req("原文a")); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	mock.Respond = func(providers.CompletionRequest) (string, error) {
		return "", apperr.ErrService
	}
	if _, err := s.Submit(context.Background(), req("原文b")); !errors.Is(err, apperr.ErrService) {
		t.Fatalf("err = %v", err)
	}

	after := s.Snapshot()
	if after.State != before.State ||
		after.OriginalText != before.OriginalText ||
		after.Draft != before.Draft ||
		len(after.History) != len(before.History) {
		t.Error("failed submit must not mutate the session")
	}
}

func TestSubmitInvalidRequest(t *testing.T) {
	mock := &providers.MockCompleter{Response: replyFor("a")}
	s := testutil.TestSession(t, mock, 0)
	if _, err := s.Submit(context.Background(), models.ProofreadRequest{Text: "x"}); err == nil {
		t.Fatal("expected validation error")
	}
	if s.Snapshot().State != session.StateIdle {
		t.Error("state should remain idle")
	}
}

func TestHistoryCapNewestFirst(t *testing.T) {
	mock := &providers.MockCompleter{}
	s := testutil.TestSession(t, mock, 0)

	for i := 0; i < session.DefaultHistoryLimit+1; i++ {
		mock.Response = replyFor(fmt.Sprintf("%d", i))
		if _, err := s.Submit(context.Background(), req(fmt.Sprintf("原文%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	history := s.History()
	if len(history) != session.DefaultHistoryLimit {
		t.Fatalf("history len = %d, want %d", len(history), session.DefaultHistoryLimit)
	}
	if history[0].OriginalText != fmt.Sprintf("原文%d", session.DefaultHistoryLimit) {
		t.Errorf("newest entry = %q", history[0].OriginalText)
	}
	// The very first submission fell off the end.
	for _, e := range history {
		if e.OriginalText == "原文0" {
			t.Error("oldest entry should be evicted")
		}
	}
}

func TestCustomHistoryLimit(t *testing.T) {
	mock := &providers.MockCompleter{Response: replyFor("x")}
	s := testutil.TestSession(t, mock, 3)
	for i := 0; i < 5; i++ {
		if _, err := s.Submit(context.Background(), req(fmt.Sprintf("t%d", i))); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(s.History()); got != 3 {
		t.Errorf("history len = %d, want 3", got)
	}
}

func TestAdjustTone(t *testing.T) {
	mock := &providers.MockCompleter{Response: replyFor("初回")}
	s := testutil.TestSession(t, mock, 0)
	if _, err := s.Submit(context.Background(), req("原文")); err != nil {
		t.Fatal(err)
	}

	mock.Response = replyFor("柔らか")
	result, err := s.AdjustTone(context.Background(), models.ToneSoft)
	if err != nil {
		t.Fatalf("AdjustTone: %v", err)
	}

	snap := s.Snapshot()
	if snap.State != session.StateHasResult {
		t.Errorf("state = %s", snap.State)
	}
	if snap.Result.CorrectedText != result.CorrectedText {
		t.Error("result not updated")
	}
	// The adjustment re-sends the original text, not the previous output.
	if got := mock.LastReq.User; !strings.Contains(got, "原文") {
		t.Errorf("tone request should carry the original text: %q", got)
	}
	if !strings.Contains(mock.LastReq.User, "【文体調整】") {
		t.Error("tone directive missing")
	}
	// A tone adjustment is its own history entry.
	if len(snap.History) != 2 {
		t.Fatalf("history len = %d, want 2", len(snap.History))
	}
	if snap.History[0].Result.CorrectedText != result.CorrectedText {
		t.Error("newest history entry should be the adjustment")
	}
}

func TestAdjustToneWithoutResult(t *testing.T) {
	mock := &providers.MockCompleter{Response: replyFor("x")}
	s := testutil.TestSession(t, mock, 0)
	if _, err := s.AdjustTone(context.Background(), models.ToneSoft); !errors.Is(err, apperr.ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestAdjustToneUnknownTone(t *testing.T) {
	mock := &providers.MockCompleter{Response: replyFor("x")}
	s := testutil.TestSession(t, mock, 0)
	if _, err := s.Submit(context.Background(), req("原文")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AdjustTone(context.Background(), "shouty"); err == nil {
		t.Fatal("expected error for unknown tone")
	}
}

func TestAdjustToneFailureKeepsResult(t *testing.T) {
	mock := &providers.MockCompleter{Response: replyFor("初回")}
	s := testutil.TestSession(t, mock, 0)
	if _, err := s.Submit(context.Background(), req("原文")); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	mock.Respond = func(providers.CompletionRequest) (string, error) {
		return "", apperr.ErrService
	}
	if _, err := s.AdjustTone(context.Background(), models.TonePolite); !errors.Is(err, apperr.ErrService) {
		t.Fatalf("err = %v", err)
	}

	after := s.Snapshot()
	if after.State != session.StateHasResult {
		t.Errorf("state = %s, want has_result", after.State)
	}
	if after.Result.CorrectedText != before.Result.CorrectedText {
		t.Error("failed adjustment must keep the previous result")
	}
	if len(after.History) != len(before.History) {
		t.Error("failed adjustment must not grow history")
	}
}

func TestRestore(t *testing.T) {
	mock := &providers.MockCompleter{}
	s := testutil.TestSession(t, mock, 0)

	mock.Response = replyFor("一")
	if _, err := s.Submit(context.Background(), req("原文一")); err != nil {
		t.Fatal(err)
	}
	mock.Response = replyFor("二")
	if _, err := s.Submit(context.Background(), req("原文二")); err != nil {
		t.Fatal(err)
	}

	// Index 1 is the older entry.
	if err := s.Restore(1); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	snap := s.Snapshot()
	if snap.OriginalText != "原文一" {
		t.Errorf("original = %q", snap.OriginalText)
	}
	if snap.Result.CorrectedText != "添削済み:一" {
		t.Errorf("result = %q", snap.Result.CorrectedText)
	}
	if snap.Draft != "添削済み:一" {
		t.Errorf("draft should be re-seeded, got %q", snap.Draft)
	}
	// History is neither reordered nor truncated by a restore.
	if len(snap.History) != 2 || snap.History[0].OriginalText != "原文二" {
		t.Errorf("history mutated by restore: %+v", snap.History)
	}
}

func TestRestoreOutOfRangeIsNoOp(t *testing.T) {
	mock := &providers.MockCompleter{Response: replyFor("x")}
	s := testutil.TestSession(t, mock, 0)
	if _, err := s.Submit(context.Background(), req("原文")); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	for _, idx := range []int{-1, 1, 99} {
		if err := s.Restore(idx); err != nil {
			t.Fatalf("Restore(%d): %v", idx, err)
		}
	}
	after := s.Snapshot()
	if after.OriginalText != before.OriginalText || after.Draft != before.Draft {
		t.Error("out-of-range restore must not change the session")
	}
}

func TestRestoreThenAdjustToneUsesRestoredText(t *testing.T) {
	mock := &providers.MockCompleter{}
	s := testutil.TestSession(t, mock, 0)
	mock.Response = replyFor("一")
	if _, err := s.Submit(context.Background(), req("原文一")); err != nil {
		t.Fatal(err)
	}
	mock.Response = replyFor("二")
	if _, err := s.Submit(context.Background(), req("原文二")); err != nil {
		t.Fatal(err)
	}
	if err := s.Restore(1); err != nil {
		t.Fatal(err)
	}

	mock.Response = replyFor("調整")
	if _, err := s.AdjustTone(context.Background(), models.ToneConcise); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(mock.LastReq.User, "原文一") {
		t.Errorf("tone after restore should re-send the restored original: %q", mock.LastReq.User)
	}
}

func TestClearKeepsHistory(t *testing.T) {
	mock := &providers.MockCompleter{Response: replyFor("x")}
	s := testutil.TestSession(t, mock, 0)
	if _, err := s.Submit(context.Background(), req("原文")); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDraft("手直し"); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	snap := s.Snapshot()
	if snap.State != session.StateIdle {
		t.Errorf("state = %s", snap.State)
	}
	if snap.Result != nil || snap.OriginalText != "" || snap.Draft != "" {
		t.Error("clear should discard result, original, and draft")
	}
	if len(snap.History) != 1 {
		t.Error("clear must keep history")
	}

	// The kept history is still restorable.
	if err := s.Restore(0); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().State != session.StateHasResult {
		t.Error("restore after clear should work")
	}
}

func TestSetDraft(t *testing.T) {
	mock := &providers.MockCompleter{Response: replyFor("x")}
	s := testutil.TestSession(t, mock, 0)

	if err := s.SetDraft("early"); !errors.Is(err, apperr.ErrNoResult) {
		t.Fatalf("draft without result: err = %v, want ErrNoResult", err)
	}

	if _, err := s.Submit(context.Background(), req("原文")); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDraft("手で直した文章"); err != nil {
		t.Fatal(err)
	}
	if got := s.Snapshot().Draft; got != "手で直した文章" {
		t.Errorf("draft = %q", got)
	}

	// Reads never overwrite the draft.
	_ = s.Snapshot()
	if got := s.Snapshot().Draft; got != "手で直した文章" {
		t.Errorf("draft overwritten by read: %q", got)
	}
}

func TestSubmitReseedsDraft(t *testing.T) {
	mock := &providers.MockCompleter{Response: replyFor("一")}
	s := testutil.TestSession(t, mock, 0)
	if _, err := s.Submit(context.Background(), req("原文一")); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDraft("編集中"); err != nil {
		t.Fatal(err)
	}

	mock.Response = replyFor("二")
	if _, err := s.Submit(context.Background(), req("原文二")); err != nil {
		t.Fatal(err)
	}
	if got := s.Snapshot().Draft; got != "添削済み:二" {
		t.Errorf("new result should re-seed the draft, got %q", got)
	}
}
