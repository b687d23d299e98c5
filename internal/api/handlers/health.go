package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/utils"
)

// Pinger is satisfied by the SQL store handle
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db     Pinger
	store  string
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler. db may be nil for the in-memory store.
func NewHealthHandler(db Pinger, store string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		store:  store,
		logger: log,
	}
}

// Healthz handles liveness probe
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is alive"
// @Router /healthz [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readyz handles readiness probe
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is ready"
// @Failure 503 {object} utils.ErrorResponse "Service unavailable"
// @Router /readyz [get]
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			h.logger.ErrorWithErr(err, "Database ping failed")
			utils.WriteError(w, errors.ServiceUnavailable("Database connection failed"))
			return
		}
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "ready",
		"store":  h.store,
	})
}
