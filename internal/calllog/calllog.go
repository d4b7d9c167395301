// Package calllog records every upstream model call in SQLite for local
// inspection. The default DSN is ":memory:", so the log lives and dies
// with the process; a file path can be configured for debugging.
package calllog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS calls (
	id            TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	provider      TEXT NOT NULL,
	model         TEXT NOT NULL DEFAULT '',
	doc_type      TEXT NOT NULL DEFAULT '',
	tone          TEXT NOT NULL DEFAULT '',
	prompt_cid    TEXT NOT NULL DEFAULT '',
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	latency_ms    INTEGER NOT NULL DEFAULT 0,
	success       INTEGER NOT NULL DEFAULT 0,
	error         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_calls_created_at ON calls(created_at);
`

// Record is one upstream model call.
type Record struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	DocType      string    `json:"doc_type,omitempty"`
	Tone         string    `json:"tone,omitempty"`
	PromptCID    string    `json:"prompt_cid,omitempty"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	LatencyMs    int       `json:"latency_ms"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
}

// DB wraps a sql.DB with call-log operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the call-log database and applies the schema.
// An empty dsn means ":memory:".
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	if dsn != ":memory:" {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("calllog: open db: %w", err)
	}
	// An in-memory SQLite database exists per connection; pin the pool to
	// one so every statement sees the same database.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("calllog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("calllog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Append inserts one record. A zero ID and CreatedAt are filled in.
func (db *DB) Append(r Record) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO calls (id, created_at, provider, model, doc_type, tone, prompt_cid,
			input_tokens, output_tokens, latency_ms, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.Format(time.RFC3339Nano), r.Provider, r.Model, r.DocType, r.Tone,
		r.PromptCID, r.InputTokens, r.OutputTokens, r.LatencyMs, boolToInt(r.Success), r.Error)
	if err != nil {
		return fmt.Errorf("calllog: insert: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first. limit <= 0 or
// > 200 falls back to 50.
func (db *DB) List(limit int) ([]Record, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT id, created_at, provider, model, doc_type, tone, prompt_cid,
			input_tokens, output_tokens, latency_ms, success, error
		FROM calls ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("calllog: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var createdAt string
		var success int
		if err := rows.Scan(&r.ID, &createdAt, &r.Provider, &r.Model, &r.DocType, &r.Tone,
			&r.PromptCID, &r.InputTokens, &r.OutputTokens, &r.LatencyMs, &success, &r.Error); err != nil {
			return nil, fmt.Errorf("calllog: scan: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		r.Success = success != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the total number of recorded calls.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM calls`).Scan(&n); err != nil {
		return 0, fmt.Errorf("calllog: count: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
