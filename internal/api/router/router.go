package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pratik-mahalle/costengine/internal/api/handlers"
	"github.com/pratik-mahalle/costengine/internal/api/middleware"
	"github.com/pratik-mahalle/costengine/internal/config"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/metrics"
)

type Handlers struct {
	Health         *handlers.HealthHandler
	Anomaly        *handlers.AnomalyHandler
	Recommendation *handlers.RecommendationHandler
	Job            *handlers.JobHandler
	Summary        *handlers.SummaryHandler
}

// New builds the HTTP router. limiter may be nil to disable rate limiting.
func New(cfg *config.Config, log *logger.Logger, h *Handlers, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(chimiddleware.CleanPath)

	// Probes and metrics are never rate limited
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Route("/organizations/{org}", func(r chi.Router) {
			r.Post("/anomalies/detect", h.Anomaly.Detect)
			r.Get("/anomalies", h.Anomaly.List)
			r.Get("/anomalies/summary", h.Anomaly.Summary)

			r.Post("/recommendations/analyze", h.Recommendation.Analyze)
			r.Get("/recommendations", h.Recommendation.List)
			r.Get("/recommendations/savings", h.Recommendation.GetTotalSavings)

			r.Get("/jobs", h.Job.List)
			r.Get("/summary", h.Summary.Get)
		})

		r.Get("/anomalies/{id}", h.Anomaly.Get)
		r.Patch("/anomalies/{id}/status", h.Anomaly.UpdateStatus)

		r.Get("/recommendations/{id}", h.Recommendation.Get)
		r.Patch("/recommendations/{id}/status", h.Recommendation.UpdateStatus)

		r.Get("/jobs/{id}", h.Job.Get)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"route not found"}}`))
	})

	return r
}
