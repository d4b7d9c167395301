// Package prompts holds the editorial personas and message templates sent
// to the proofreading model, with optional file-based overrides.
package prompts

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/starford/tensaku/internal/models"
)

// personas are the system prompts keyed by document type. Each encodes a
// distinct editorial stance: warmth for parent-facing notes, objectivity
// for internal logs, child-centered narrative for documentation, generic
// clarity otherwise.
var personas = map[models.DocType]string{
	models.DocTypeNotebook: "あなたは保育園の連絡帳文章の添削専門家です。" +
		"連絡帳は保護者向けの文章です。温かみ・親しみやすさを大切にし、" +
		"敬語を自然に使い、保護者が読んで安心・喜べる表現に整えます。" +
		"個人情報の扱いに注意し、子どもの名前や具体的なエピソードを活かします。",
	models.DocTypeDailyLog: "あなたは保育日誌文章の添削専門家です。" +
		"保育日誌は施設内の記録文書です。事実と観察・考察を明確に区別し、" +
		"客観的かつ正確な表現を心がけます。専門的な保育用語を適切に使い、" +
		"記録としての明瞭さと再現性を重視します。",
	models.DocTypeDocumentation: "あなたは保育ドキュメンテーションの添削専門家です。" +
		"ドキュメンテーションは子どもの学び・発達・探求を記録するものです。" +
		"子ども主体の視点で、具体的なエピソードや言葉を大切にしながら、" +
		"保護者や同僚にも伝わる生き生きとした描写に整えます。",
	models.DocTypeOther: "あなたは日本語文章の添削専門家です。" +
		"読みやすさ・正確さ・自然な日本語表現を重視して添削します。",
}

// toneDirectives are the three fixed tone-adjustment phrasings.
var toneDirectives = map[models.Tone]string{
	models.TonePolite:  "より丁寧で改まった表現・敬語に整えてください。",
	models.ToneSoft:    "より柔らかく親しみやすい、温もりのある表現に整えてください。",
	models.ToneConcise: "冗長な表現を省き、簡潔でわかりやすい文章に整えてください。",
}

// formatDirective pins the model to a single JSON object with exactly the
// three keys the response schema requires.
const formatDirective = "\n\n必ず以下のJSON形式のみで返答してください。余分な説明は不要です。\n" +
	`{"corrected_text": "修正後の完全な文章", ` +
	`"corrections": [{"original": "元の表現", "corrected": "修正後", "reason": "理由"}], ` +
	`"summary": "全体コメント"}`

// Library resolves prompts, applying any loaded persona overrides.
// Safe for concurrent use; the override map is swapped under a lock so
// the file watcher can reload while requests are served.
type Library struct {
	mu        sync.RWMutex
	overrides map[models.DocType]string
}

// NewLibrary returns a Library with the compiled-in personas.
func NewLibrary() *Library {
	return &Library{}
}

// System returns the full system prompt for a document type: the persona
// (or its override) plus the output format directive.
func (l *Library) System(dt models.DocType) string {
	l.mu.RLock()
	override, ok := l.overrides[dt]
	l.mu.RUnlock()
	if ok {
		return override + formatDirective
	}
	persona, ok := personas[dt]
	if !ok {
		persona = personas[models.DocTypeOther]
	}
	return persona + formatDirective
}

// ToneDirective returns the fixed phrasing for a tone adjustment.
func ToneDirective(t models.Tone) string {
	return toneDirectives[t]
}

// User composes the user message: document type label, optional context
// line, optional tone directive, then the subject text.
func (l *Library) User(req models.ProofreadRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "【文書種別】%s\n", req.DocType.Label())
	if req.Context != "" {
		fmt.Fprintf(&b, "【コンテキスト】%s\n", req.Context)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, "【文体調整】%s\n", toneDirectives[req.Tone])
	}
	fmt.Fprintf(&b, "\n【添削対象の文章】\n%s", req.Text)
	return b.String()
}

// LoadOverrides replaces persona overrides from a YAML file mapping
// document type names (notebook, daily_log, documentation, other) to
// system prompts. Unknown keys and empty prompts are rejected; the
// previous overrides stay in effect on error.
func (l *Library) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read prompt overrides %s: %w", path, err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse prompt overrides %s: %w", path, err)
	}

	overrides := make(map[models.DocType]string, len(raw))
	for key, prompt := range raw {
		dt := models.DocType(key)
		if !dt.Valid() {
			return fmt.Errorf("prompt overrides: unknown document type %q", key)
		}
		if strings.TrimSpace(prompt) == "" {
			return fmt.Errorf("prompt overrides: empty prompt for %q", key)
		}
		overrides[dt] = prompt
	}

	l.mu.Lock()
	l.overrides = overrides
	l.mu.Unlock()
	return nil
}
