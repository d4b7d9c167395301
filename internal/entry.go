// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/tensaku/internal/api"
	"github.com/starford/tensaku/internal/calllog"
	"github.com/starford/tensaku/internal/generator"
	"github.com/starford/tensaku/internal/mcpserver"
	"github.com/starford/tensaku/internal/prompts"
	"github.com/starford/tensaku/internal/proofread"
	"github.com/starford/tensaku/internal/providers"
	"github.com/starford/tensaku/internal/session"
	"github.com/starford/tensaku/internal/sse"
	"github.com/starford/tensaku/internal/web"
)

// services holds the wired application services shared by the HTTP and
// MCP entrypoints.
type services struct {
	library *prompts.Library
	calls   *calllog.DB
	session *session.Session
	gen     *generator.Service
}

// buildServices wires providers, prompts, call log, session, and
// generator from the configuration.
func buildServices(cfg *Config, logger *slog.Logger) (*services, error) {
	calls, err := calllog.Open(cfg.CallLog.Path)
	if err != nil {
		return nil, fmt.Errorf("init call log: %w", err)
	}

	library := prompts.NewLibrary()
	if cfg.Prompts.Path != "" {
		if err := library.LoadOverrides(cfg.Prompts.Path); err != nil {
			calls.Close()
			return nil, fmt.Errorf("load prompt overrides: %w", err)
		}
	}

	claude := providers.NewClaudeClient(providers.ClaudeConfig{
		APIKey: cfg.Claude.APIKey,
		Model:  cfg.Claude.Model,
	})
	openAI := providers.NewOpenAIClient(providers.OpenAIConfig{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.Model,
	})

	svc := proofread.NewService(claude, library, calls, logger, cfg.Claude.MaxTokens)

	return &services{
		library: library,
		calls:   calls,
		session: session.New(svc, cfg.Session.HistoryLimit),
		gen:     generator.NewService(openAI, calls, logger, cfg.OpenAI.MaxTokens),
	}, nil
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel.Level,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("claude_model", cfg.Claude.Model),
		slog.String("openai_model", cfg.OpenAI.Model),
		slog.Bool("claude_configured", cfg.Claude.APIKey != ""),
		slog.Bool("openai_configured", cfg.OpenAI.APIKey != ""),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svcs, err := buildServices(cfg, logger)
	if err != nil {
		return err
	}
	defer svcs.calls.Close()

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	// Build API handler and router.
	handler := api.NewHandler(svcs.session, svcs.gen, svcs.calls, broker)
	apiRouter := api.NewRouter(handler, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Embedded front-ends.
	r.Get("/", web.Page("index.html"))
	r.Get("/generator", web.Page("generator.html"))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload prompt overrides on change.
	if cfg.Prompts.Path != "" {
		g.Go(func() error {
			if err := svcs.library.Watch(gCtx, cfg.Prompts.Path, logger); err != nil {
				logger.Warn("prompt watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdio with the given options. The
// logger goes to stderr because the stdio transport owns stdout.
func RunMCP(opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel.Level,
	}))
	slog.SetDefault(logger)

	svcs, err := buildServices(cfg, logger)
	if err != nil {
		return err
	}
	defer svcs.calls.Close()

	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(svcs.session, svcs.gen).ServeStdio()
}
