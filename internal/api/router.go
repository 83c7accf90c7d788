package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/timeboxai/timebox/internal/bus"
	"github.com/timeboxai/timebox/internal/engine"
	"github.com/timeboxai/timebox/internal/store"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	db *store.DB,
	eng *engine.Engine,
	sessions *store.SessionStore,
	events *bus.Bus,
	apiKey string,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	// Handlers
	healthH := NewHealthHandler(db, eng)
	timerH := NewTimerHandler(eng)
	historyH := NewHistoryHandler(sessions)
	eventsH := NewEventsHandler(events)

	// Unauthenticated routes
	r.Get("/health", healthH.Health)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(apiKey))

		r.Route("/timer", func(r chi.Router) {
			r.Post("/start", timerH.Start)
			r.Post("/stop", timerH.Stop)
			r.Get("/status", timerH.Status)
		})

		r.Get("/sessions", historyH.List)
		r.Get("/events", eventsH.Stream)
	})

	return r
}
