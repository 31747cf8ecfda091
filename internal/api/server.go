package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/bracketiq/madness-data/internal/api/handler"
	"github.com/bracketiq/madness-data/internal/bracket"
	"github.com/bracketiq/madness-data/internal/config"
	"github.com/bracketiq/madness-data/internal/metrics"
	"github.com/bracketiq/madness-data/internal/store"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(st *store.Store, schedule *bracket.Schedule, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Request-Id"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(st, schedule, logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	// Matchups
	r.Route("/matchups", func(r chi.Router) {
		r.Get("/", h.GetMatchups)
		r.Get("/year/{year:[0-9]+}", h.GetMatchupsByYear)
		r.Get("/{year:[0-9]+}", h.GetMatchupStats)
		r.Get("/{year:[0-9]+}/{round}", h.GetRound)
	})

	// Team statistics
	r.Route("/stats", func(r chi.Router) {
		r.Get("/", h.GetTeamStats)
		r.Get("/year/{year:[0-9]+}", h.GetTeamStatsByYear)
	})

	return r
}
