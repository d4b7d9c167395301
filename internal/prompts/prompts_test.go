package prompts

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/tensaku/internal/models"
)

func TestSystemPerDocType(t *testing.T) {
	l := NewLibrary()
	seen := map[string]bool{}
	for _, dt := range models.DocTypes {
		sys := l.System(dt)
		if sys == "" {
			t.Fatalf("empty system prompt for %s", dt)
		}
		if !strings.Contains(sys, "JSON") {
			t.Errorf("system prompt for %s missing format directive", dt)
		}
		if seen[sys] {
			t.Errorf("system prompt for %s duplicates another type", dt)
		}
		seen[sys] = true
	}
}

func TestSystemUnknownTypeFallsBack(t *testing.T) {
	l := NewLibrary()
	if got := l.System("mystery"); got != l.System(models.DocTypeOther) {
		t.Error("unknown doc type should fall back to the generic persona")
	}
}

func TestUserComposition(t *testing.T) {
	l := NewLibrary()
	msg := l.User(models.ProofreadRequest{
		DocType: models.DocTypeNotebook,
		Text:    "きょうは楽しかったです",
		Context: "りす組",
		Tone:    models.ToneSoft,
	})

	for _, want := range []string{
		"【文書種別】連絡帳",
		"【コンテキスト】りす組",
		"【文体調整】",
		"【添削対象の文章】\nきょうは楽しかったです",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("user message missing %q:\n%s", want, msg)
		}
	}
}

func TestUserOmitsEmptySections(t *testing.T) {
	l := NewLibrary()
	msg := l.User(models.ProofreadRequest{
		DocType: models.DocTypeDailyLog,
		Text:    "本文",
	})
	if strings.Contains(msg, "【コンテキスト】") {
		t.Error("context line should be omitted when empty")
	}
	if strings.Contains(msg, "【文体調整】") {
		t.Error("tone line should be omitted when empty")
	}
}

func TestToneDirectives(t *testing.T) {
	for _, tone := range models.Tones {
		if ToneDirective(tone) == "" {
			t.Errorf("missing directive for tone %s", tone)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := "notebook: カスタム連絡帳プロンプト\nother: カスタム汎用プロンプト\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLibrary()
	if err := l.LoadOverrides(path); err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}

	if !strings.HasPrefix(l.System(models.DocTypeNotebook), "カスタム連絡帳プロンプト") {
		t.Error("notebook override not applied")
	}
	// Types without overrides keep the compiled-in persona.
	if strings.HasPrefix(l.System(models.DocTypeDailyLog), "カスタム") {
		t.Error("daily_log should keep the built-in persona")
	}
}

func TestLoadOverridesRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("diary: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLibrary()
	if err := l.LoadOverrides(path); err == nil {
		t.Fatal("expected error for unknown document type")
	}
}

func TestLoadOverridesRejectsEmptyPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("notebook: \"  \"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLibrary()
	if err := l.LoadOverrides(path); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestLoadOverridesKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("notebook: 最初のプロンプト\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLibrary()
	if err := l.LoadOverrides(path); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("bogus: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := l.LoadOverrides(path); err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(l.System(models.DocTypeNotebook), "最初のプロンプト") {
		t.Error("previous overrides should survive a failed reload")
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	if err := os.WriteFile(path, []byte("notebook: 初期\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLibrary()
	if err := l.LoadOverrides(path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		_ = l.Watch(ctx, path, logger)
	}()

	// Give the watcher time to register before rewriting the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("notebook: 更新後\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if strings.HasPrefix(l.System(models.DocTypeNotebook), "更新後") {
			cancel()
			<-done
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("override was not reloaded after file change")
}
