// Package testutil provides shared test helpers for setting up services
// and the call-log database.
package testutil

import (
	"testing"

	"github.com/starford/tensaku/internal/calllog"
	"github.com/starford/tensaku/internal/generator"
	"github.com/starford/tensaku/internal/prompts"
	"github.com/starford/tensaku/internal/proofread"
	"github.com/starford/tensaku/internal/providers"
	"github.com/starford/tensaku/internal/session"
)

// ValidResponse is a canned model reply that passes the output contract.
const ValidResponse = `{
  "corrected_text": "今日は公園に行きました。",
  "corrections": [
    {"original": "いきました", "corrected": "行きました", "reason": "漢字表記に統一"}
  ],
  "summary": "全体として読みやすい文章です。"
}`

// TestCallLog creates an in-memory call-log database that is closed on
// cleanup.
func TestCallLog(t *testing.T) *calllog.DB {
	t.Helper()
	db, err := calllog.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestProofreadService builds a proofreading service around a mock
// completer, with call logging enabled.
func TestProofreadService(t *testing.T, completer providers.Completer) *proofread.Service {
	t.Helper()
	return proofread.NewService(completer, prompts.NewLibrary(), TestCallLog(t), nil, 0)
}

// TestSession builds a session around a mock completer.
func TestSession(t *testing.T, completer providers.Completer, limit int) *session.Session {
	t.Helper()
	return session.New(TestProofreadService(t, completer), limit)
}

// TestGenerator builds a generator service around a mock completer.
func TestGenerator(t *testing.T, completer providers.Completer) *generator.Service {
	t.Helper()
	return generator.NewService(completer, TestCallLog(t), nil, 0)
}
