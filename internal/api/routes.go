package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/VoidMesh/randint/internal/metrics"
	"github.com/VoidMesh/randint/internal/note"
)

// RouterConfig holds the optional parts of the router.
type RouterConfig struct {
	RequestTimeout time.Duration
	MetricsPath    string
	MetricsHandler http.Handler
}

func SetupRoutes(handler *Handler, noteHandlers *note.NoteHandlers, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	for _, middleware := range SetupMiddleware(cfg.RequestTimeout) {
		r.Use(middleware)
	}
	r.Use(metrics.Middleware)

	// JSON content type
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// Health check endpoint
	r.Get("/health", handler.HealthCheck)

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, cfg.MetricsHandler)
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", handler.GetSettings)
			r.Put("/", handler.ReplaceSettings)
			r.Patch("/{field}", handler.UpdateSettingsField)
		})

		r.Get("/commands", handler.ListCommands)
		r.Post("/commands/{commandID}", handler.RunCommand)

		noteHandlers.RegisterRoutes(r)
	})

	return r
}
