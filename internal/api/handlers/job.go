package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/costengine/internal/api/dto"
	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/utils"
)

// JobHandler exposes optimization job history
type JobHandler struct {
	service recommendation.Service
	logger  *logger.Logger
}

func NewJobHandler(service recommendation.Service, log *logger.Logger) *JobHandler {
	return &JobHandler{service: service, logger: log}
}

// List returns an organization's optimization jobs, newest first
// @Summary List optimization jobs
// @Tags Jobs
// @Produce json
// @Param org path string true "Organization ID"
// @Param limit query int false "Maximum results (default: 100, max: 1000)"
// @Success 200 {object} dto.JobListResponse
// @Router /organizations/{org}/jobs [get]
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.ListJobs(r.Context(), chi.URLParam(r, "org"), utils.ParseLimit(r))
	if err != nil {
		respondError(w, h.logger, err, "Failed to list jobs")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.JobListResponse{Jobs: jobs, Count: len(jobs)})
}

// Get returns a single optimization job
// @Summary Get optimization job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} job.CostOptimizationJob
// @Failure 404 {object} utils.ErrorResponse "Job not found"
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.service.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err, "Failed to get job")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, j)
}
