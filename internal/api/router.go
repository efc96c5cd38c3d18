package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/133matt/ChatServer/internal/api/middleware"
	"github.com/133matt/ChatServer/internal/handlers"
)

// RouterConfig carries router-level settings that don't belong to any
// single handler.
type RouterConfig struct {
	// MaxBodyBytes caps every request body, sized to admit an inline
	// media payload after base64 inflation.
	MaxBodyBytes int64
}

// NewRouter creates and configures the HTTP router. limiter may be nil
// when no Redis connection is available for rate limiting.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, limiter *middleware.RateLimiter, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))
	r.Use(middleware.RequireJSON)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting (optional, Redis-backed)
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	// CORS - allow all origins (clients poll from anywhere)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Get("/messages", h.ListMessages)
	r.Post("/messages", h.CreateMessage)
	r.Delete("/messages/{id}", h.DeleteMessage)
	r.Delete("/messages", h.ClearMessages)

	r.Post("/upload", h.Upload)
	r.Post("/download-video", h.DownloadVideo)

	r.Post("/maintenance/purge", h.PurgeMessages)

	return r
}
