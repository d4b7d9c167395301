// Package generator produces draft daily-log entries from structured
// observation notes.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tensaku/internal/apperr"
	"github.com/starford/tensaku/internal/calllog"
	"github.com/starford/tensaku/internal/checksum"
	"github.com/starford/tensaku/internal/providers"
)

const (
	defaultMaxTokens = 1024

	// Fixed register for generated logs: soft, polite, parent-readable.
	generateTemperature = 0.7
)

// Input holds the observation notes a daily-log entry is drafted from.
type Input struct {
	Date              string `json:"date"`
	ClassName         string `json:"class_name"`
	ActivityTitle     string `json:"activity_title"`
	ChildObservations string `json:"child_observations"`
	TeacherNotes      string `json:"teacher_notes"`
}

// Validate checks that the input can produce a meaningful log entry.
func (in Input) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ActivityTitle, validation.Required),
		validation.Field(&in.ChildObservations, validation.Required),
	)
}

// Service drafts daily-log text through the generation provider.
type Service struct {
	completer providers.Completer
	calls     *calllog.DB // optional
	logger    *slog.Logger
	maxTokens int
}

// NewService creates a generator service. calls may be nil to disable
// call logging.
func NewService(completer providers.Completer, calls *calllog.DB, logger *slog.Logger, maxTokens int) *Service {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		completer: completer,
		calls:     calls,
		logger:    logger,
		maxTokens: maxTokens,
	}
}

// Generate builds the daily-log prompt and issues one completion. The
// reply is plain text, not the proofreading JSON contract.
func (s *Service) Generate(ctx context.Context, in Input) (string, error) {
	if !s.completer.Configured() {
		return "", apperr.ErrNoCredential
	}
	if err := in.Validate(); err != nil {
		return "", err
	}

	prompt := buildPrompt(in)
	record := calllog.Record{
		Provider:  s.completer.Name(),
		PromptCID: checksum.Short([]byte(prompt)),
	}

	res, err := s.completer.Complete(ctx, providers.CompletionRequest{
		User:        prompt,
		MaxTokens:   s.maxTokens,
		Temperature: generateTemperature,
	})
	if err != nil {
		record.Error = err.Error()
		s.record(record)
		return "", err
	}

	record.Model = res.Model
	record.InputTokens = res.InputTokens
	record.OutputTokens = res.OutputTokens
	record.LatencyMs = int(res.Latency.Milliseconds())
	record.Success = true
	s.record(record)

	return strings.TrimSpace(res.Text), nil
}

// buildPrompt composes the generation instruction: activity title first,
// then child observations and teacher notes, 200-300 characters.
func buildPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("以下の情報をもとに保育日誌の文章を作成してください。\n")
	b.WriteString("柔らかく丁寧な文体で、保護者にも伝わるように。\n")
	b.WriteString("活動タイトルは冒頭に入れ、その後に子どもの様子・保育士の気づきの順に構成してください。\n")
	b.WriteString("200〜300文字程度にまとめてください。\n\n")
	fmt.Fprintf(&b, "■ 記録日: %s\n", in.Date)
	fmt.Fprintf(&b, "■ クラス名: %s\n", in.ClassName)
	fmt.Fprintf(&b, "■ 活動タイトル: %s\n", in.ActivityTitle)
	fmt.Fprintf(&b, "■ 子どもの様子: %s\n", in.ChildObservations)
	fmt.Fprintf(&b, "■ 保育士の気づき: %s\n", in.TeacherNotes)
	return b.String()
}

func (s *Service) record(r calllog.Record) {
	if s.calls == nil {
		return
	}
	if err := s.calls.Append(r); err != nil {
		s.logger.Warn("call log append failed", slog.String("error", err.Error()))
	}
}
