// Package parser extracts the JSON payload from raw model output.
package parser

import (
	"errors"
	"strings"
)

// ErrNoJSON is returned when no JSON object can be located in the output.
var ErrNoJSON = errors.New("no JSON object in model output")

// ExtractJSON returns the JSON object embedded in raw model output.
// A surrounding Markdown code fence (``` with an optional language tag)
// is stripped first; if the remainder still does not start with an
// object, the outermost brace-delimited span is used. The candidate is
// returned as-is: syntactic and schema validation happen downstream.
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrNoJSON
	}

	if stripped := stripFence(s); stripped != "" {
		s = stripped
	}

	if strings.HasPrefix(s, "{") {
		return s, nil
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}

// stripFence removes a surrounding ``` fence. Returns "" when s is not
// fenced.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return ""
	}
	body := s[len("```"):]

	// Drop the language tag on the opening line, if any.
	if nl := strings.Index(body, "\n"); nl >= 0 {
		firstLine := strings.TrimSpace(body[:nl])
		if firstLine != "" && !strings.ContainsAny(firstLine, "{}") {
			body = body[nl+1:]
		}
	}

	if idx := strings.Index(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
