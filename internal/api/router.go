package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires the API routes. events is the SSE streaming handler
// and may be nil when live updates are disabled.
func NewRouter(h *Handler, events http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/proofread", h.Proofread)
	r.Post("/tone", h.Tone)
	r.Post("/restore", h.Restore)
	r.Post("/clear", h.Clear)
	r.Put("/draft", h.Draft)
	r.Get("/session", h.Session)
	r.Get("/history", h.History)
	r.Post("/generate", h.Generate)
	r.Get("/calls", h.Calls)
	if events != nil {
		r.Handle("/events", events)
	}

	return r
}
