package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/costengine/internal/api/dto"
	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/utils"
	"github.com/pratik-mahalle/costengine/internal/pkg/validator"
)

type AnomalyHandler struct {
	service   anomaly.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewAnomalyHandler(service anomaly.Service, log *logger.Logger, val *validator.Validator) *AnomalyHandler {
	return &AnomalyHandler{service: service, logger: log, validator: val}
}

// Detect runs anomaly detection over the posted samples
// @Summary Detect cost anomalies
// @Tags Anomalies
// @Accept json
// @Produce json
// @Param org path string true "Organization ID"
// @Param request body dto.DetectAnomaliesRequest true "Samples and tuning"
// @Success 200 {object} dto.DetectAnomaliesResponse
// @Failure 400 {object} utils.ErrorResponse "Invalid request or validation error"
// @Failure 422 {object} utils.ErrorResponse "Analysis failed"
// @Router /organizations/{org}/anomalies/detect [post]
func (h *AnomalyHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req dto.DetectAnomaliesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, err, "")
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	found, err := h.service.DetectAnomalies(r.Context(), chi.URLParam(r, "org"), req.Samples, req.Options())
	if err != nil {
		respondError(w, h.logger, err, "Failed to detect anomalies")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.DetectAnomaliesResponse{Anomalies: found, Count: len(found)})
}

// List returns an organization's anomalies
// @Summary List anomalies
// @Tags Anomalies
// @Produce json
// @Param org path string true "Organization ID"
// @Param status query string false "Filter by status"
// @Param severity query string false "Filter by severity"
// @Param resource_id query string false "Filter by resource ID"
// @Param start_date query string false "Earliest anomaly day"
// @Param end_date query string false "Latest anomaly day"
// @Param limit query int false "Maximum results (default: 100, max: 1000)"
// @Success 200 {object} dto.AnomalyListResponse
// @Router /organizations/{org}/anomalies [get]
func (h *AnomalyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	startDate, err := utils.ParseDateQuery(r, "start_date")
	if err != nil {
		respondError(w, h.logger, err, "")
		return
	}
	endDate, err := utils.ParseDateQuery(r, "end_date")
	if err != nil {
		respondError(w, h.logger, err, "")
		return
	}

	filter := anomaly.Filter{
		Status:     anomaly.Status(q.Get("status")),
		Severity:   anomaly.Severity(q.Get("severity")),
		ResourceID: q.Get("resource_id"),
		StartDate:  startDate,
		EndDate:    endDate,
		Limit:      utils.ParseLimit(r),
	}

	anomalies, err := h.service.GetAnomalies(r.Context(), chi.URLParam(r, "org"), filter)
	if err != nil {
		respondError(w, h.logger, err, "Failed to list anomalies")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.AnomalyListResponse{Anomalies: anomalies, Count: len(anomalies)})
}

// Get returns a single anomaly by ID
// @Summary Get anomaly by ID
// @Tags Anomalies
// @Produce json
// @Param id path string true "Anomaly ID"
// @Success 200 {object} anomaly.CostAnomaly
// @Failure 404 {object} utils.ErrorResponse "Anomaly not found"
// @Router /anomalies/{id} [get]
func (h *AnomalyHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.GetAnomaly(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err, "Failed to get anomaly")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, a)
}

// UpdateStatus moves an anomaly to a new status
// @Summary Update anomaly status
// @Tags Anomalies
// @Accept json
// @Produce json
// @Param id path string true "Anomaly ID"
// @Param request body dto.UpdateAnomalyStatusRequest true "New status"
// @Success 200 {object} anomaly.CostAnomaly
// @Failure 404 {object} utils.ErrorResponse "Anomaly not found"
// @Failure 409 {object} utils.ErrorResponse "Transition not allowed"
// @Router /anomalies/{id}/status [patch]
func (h *AnomalyHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAnomalyStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, err, "")
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	a, err := h.service.UpdateAnomalyStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Update())
	if err != nil {
		respondError(w, h.logger, err, "Failed to update anomaly")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, a)
}

// Summary counts an organization's anomalies by severity
// @Summary Anomaly summary
// @Tags Anomalies
// @Produce json
// @Param org path string true "Organization ID"
// @Success 200 {object} dto.AnomalySummaryResponse
// @Router /organizations/{org}/anomalies/summary [get]
func (h *AnomalyHandler) Summary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.GetSummary(r.Context(), chi.URLParam(r, "org"))
	if err != nil {
		respondError(w, h.logger, err, "Failed to summarize anomalies")
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	utils.WriteSuccess(w, http.StatusOK, dto.AnomalySummaryResponse{BySeverity: counts, Total: total})
}
