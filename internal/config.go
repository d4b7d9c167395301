package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// LogLevel wraps slog.Level so YAML can carry the textual names
// (debug, info, warn, error); yaml.v3 does not use encoding.TextUnmarshaler.
type LogLevel struct {
	slog.Level
}

// UnmarshalYAML decodes a level name or numeric offset.
func (l *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if err := l.Level.UnmarshalText([]byte(raw)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Claude  ClaudeConfig      `yaml:"claude"`
	OpenAI  OpenAIConfig      `yaml:"openai"`
	Prompts PromptsConfig     `yaml:"prompts"`
	Session SessionConfig     `yaml:"session"`
	CallLog CallLogConfig     `yaml:"call_log"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Claude.Validate(); err != nil {
		return err
	}
	if err := c.OpenAI.Validate(); err != nil {
		return err
	}
	return c.Session.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel LogLevel   `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ClaudeConfig holds the proofreading provider configuration. An empty
// APIKey is allowed; proofreading then fails fast with a clear error
// instead of blocking startup.
type ClaudeConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// Validate validates the Claude provider configuration.
func (c *ClaudeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.MaxTokens, validation.Min(1)),
	)
}

// OpenAIConfig holds the daily-log generation provider configuration.
// As with Claude, a missing key only disables the feature.
type OpenAIConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// Validate validates the OpenAI provider configuration.
func (c *OpenAIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.MaxTokens, validation.Min(1)),
	)
}

// PromptsConfig holds the optional persona-override file. When Path is
// set the file is loaded at startup and reloaded on change.
type PromptsConfig struct {
	Path string `yaml:"path"`
}

// SessionConfig holds session configuration.
type SessionConfig struct {
	HistoryLimit int `yaml:"history_limit"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HistoryLimit, validation.Min(1)),
	)
}

// CallLogConfig holds call-log database configuration. An empty Path
// keeps the log in memory for the process lifetime.
type CallLogConfig struct {
	Path string `yaml:"path"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: LogLevel{slog.LevelInfo},
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Claude: ClaudeConfig{
			Model:     "claude-haiku-4-5",
			MaxTokens: 2048,
		},
		OpenAI: OpenAIConfig{
			Model:     "gpt-4o-mini",
			MaxTokens: 1024,
		},
		Session: SessionConfig{
			HistoryLimit: 20,
		},
	}
}
