// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the proofreading tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tensaku/internal/generator"
	"github.com/starford/tensaku/internal/models"
	"github.com/starford/tensaku/internal/schema"
	"github.com/starford/tensaku/internal/session"
)

// Server wraps the MCP server with the proofreading tools.
type Server struct {
	mcp  *server.MCPServer
	sess *session.Session
	gen  *generator.Service
}

// New creates a new MCP server with all tools registered.
func New(sess *session.Session, gen *generator.Service) *Server {
	s := &Server{sess: sess, gen: gen}

	s.mcp = server.NewMCPServer(
		"Tensaku",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("proofread_text",
		mcp.WithDescription("Proofread a childcare document. Returns the corrected text, "+
			"the list of edits with reasons, and an overall comment. The result becomes "+
			"the current session result and a history entry."),
		mcp.WithString("doc_type", mcp.Required(),
			mcp.Description("Document type: notebook, daily_log, documentation, or other")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to proofread")),
		mcp.WithString("context", mcp.Description("Optional context such as class name or age group")),
	), s.proofreadText)

	s.mcp.AddTool(mcp.NewTool("adjust_tone",
		mcp.WithDescription("Re-proofread the current result's original text with a tone "+
			"directive. Requires a current result from proofread_text."),
		mcp.WithString("tone", mcp.Required(),
			mcp.Description("Tone: polite, soft, or concise")),
	), s.adjustTone)

	s.mcp.AddTool(mcp.NewTool("generate_daily_log",
		mcp.WithDescription("Draft a 200-300 character daily-log entry from structured "+
			"observation notes. Returns plain text, not the proofreading JSON."),
		mcp.WithString("activity_title", mcp.Required(), mcp.Description("Title of the day's activity")),
		mcp.WithString("child_observations", mcp.Required(), mcp.Description("What the children did and said")),
		mcp.WithString("date", mcp.Description("Record date")),
		mcp.WithString("class_name", mcp.Description("Class name")),
		mcp.WithString("teacher_notes", mcp.Description("The teacher's own observations")),
	), s.generateDailyLog)

	s.mcp.AddTool(mcp.NewTool("list_history",
		mcp.WithDescription("List past proofreading interactions, newest first."),
	), s.listHistory)

	s.mcp.AddTool(mcp.NewTool("get_output_contract",
		mcp.WithDescription("Returns the proofreading output contract: the JSON reply "+
			"shape plus the supported document types and tones."),
	), s.getOutputContract)

	// Resource: the machine-readable response schema.
	s.mcp.AddResource(
		mcp.NewResource("tensaku://output-format", "Proofreading Output Schema",
			mcp.WithResourceDescription("JSON Schema every proofreading reply is validated against."),
			mcp.WithMIMEType("application/schema+json"),
		),
		s.readOutputFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) proofreadText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docType, err := req.RequireString("doc_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	docCtx := ""
	if c, err := req.RequireString("context"); err == nil {
		docCtx = c
	}

	result, err := s.sess.Submit(ctx, models.ProofreadRequest{
		DocType: models.DocType(docType),
		Text:    text,
		Context: docCtx,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) adjustTone(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tone, err := req.RequireString("tone")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.sess.AdjustTone(ctx, models.Tone(tone))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) generateDailyLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("activity_title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	observations, err := req.RequireString("child_observations")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := generator.Input{
		ActivityTitle:     title,
		ChildObservations: observations,
	}
	if v, err := req.RequireString("date"); err == nil {
		in.Date = v
	}
	if v, err := req.RequireString("class_name"); err == nil {
		in.ClassName = v
	}
	if v, err := req.RequireString("teacher_notes"); err == nil {
		in.TeacherNotes = v
	}

	text, err := s.gen.Generate(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) listHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := s.sess.History()
	if len(entries) == 0 {
		return mcp.NewToolResultText("history is empty"), nil
	}
	var lines []string
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%d: %s [%s] %s", i, e.Timestamp, e.DocType.Label(), e.OriginalText))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getOutputContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(OutputFormatContract), nil
}

func (s *Server) readOutputFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "tensaku://output-format",
			MIMEType: "application/schema+json",
			Text:     schema.JSON(),
		},
	}, nil
}
