package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/costengine/internal/api/dto"
	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/utils"
	"github.com/pratik-mahalle/costengine/internal/pkg/validator"
)

type RecommendationHandler struct {
	service   recommendation.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewRecommendationHandler(service recommendation.Service, log *logger.Logger, val *validator.Validator) *RecommendationHandler {
	return &RecommendationHandler{service: service, logger: log, validator: val}
}

// Analyze runs the optimization recommender over the posted data
// @Summary Generate optimization recommendations
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param org path string true "Organization ID"
// @Param request body dto.AnalyzeRequest true "Cost and utilization data"
// @Success 201 {object} dto.AnalyzeResponse
// @Failure 400 {object} utils.ErrorResponse "Invalid request or validation error"
// @Failure 422 {object} utils.ErrorResponse "Analysis failed; the failed job is returned in details"
// @Router /organizations/{org}/recommendations/analyze [post]
func (h *RecommendationHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req dto.AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, err, "")
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	j, recs, err := h.service.AnalyzeAndOptimize(r.Context(), chi.URLParam(r, "org"), req.Costs, req.Utilization, req.Options())
	if err != nil {
		appErr := errors.AsAppError(err)
		if j != nil {
			appErr.WithDetails(map[string]interface{}{"job": j})
		}
		respondError(w, h.logger, appErr, "Failed to analyze costs")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.AnalyzeResponse{Job: j, Recommendations: recs})
}

// List returns an organization's recommendations, largest savings first
// @Summary List recommendations
// @Tags Recommendations
// @Produce json
// @Param org path string true "Organization ID"
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by type"
// @Param resource_id query string false "Filter by resource ID"
// @Param limit query int false "Maximum results (default: 100, max: 1000)"
// @Success 200 {object} dto.RecommendationListResponse
// @Router /organizations/{org}/recommendations [get]
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := recommendation.Filter{
		Status:     recommendation.Status(q.Get("status")),
		Type:       recommendation.Type(q.Get("type")),
		ResourceID: q.Get("resource_id"),
		Limit:      utils.ParseLimit(r),
	}

	recs, err := h.service.GetRecommendations(r.Context(), chi.URLParam(r, "org"), filter)
	if err != nil {
		respondError(w, h.logger, err, "Failed to list recommendations")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.RecommendationListResponse{Recommendations: recs, Count: len(recs)})
}

// Get returns a single recommendation by ID
// @Summary Get recommendation by ID
// @Tags Recommendations
// @Produce json
// @Param id path string true "Recommendation ID"
// @Success 200 {object} recommendation.CostOptimizationRecommendation
// @Failure 404 {object} utils.ErrorResponse "Recommendation not found"
// @Router /recommendations/{id} [get]
func (h *RecommendationHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.GetRecommendation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err, "Failed to get recommendation")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, rec)
}

// UpdateStatus moves a recommendation to a new status
// @Summary Update recommendation status
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param id path string true "Recommendation ID"
// @Param request body dto.UpdateRecommendationStatusRequest true "New status"
// @Success 200 {object} recommendation.CostOptimizationRecommendation
// @Failure 404 {object} utils.ErrorResponse "Recommendation not found"
// @Failure 409 {object} utils.ErrorResponse "Transition not allowed"
// @Router /recommendations/{id}/status [patch]
func (h *RecommendationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateRecommendationStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, err, "")
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	rec, err := h.service.UpdateRecommendationStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Update())
	if err != nil {
		respondError(w, h.logger, err, "Failed to update recommendation")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, rec)
}

// GetTotalSavings returns the savings still achievable from open recommendations
// @Summary Get total potential savings
// @Tags Recommendations
// @Produce json
// @Param org path string true "Organization ID"
// @Success 200 {object} dto.SavingsResponse
// @Router /organizations/{org}/recommendations/savings [get]
func (h *RecommendationHandler) GetTotalSavings(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.GetTotalSavings(r.Context(), chi.URLParam(r, "org"))
	if err != nil {
		respondError(w, h.logger, err, "Failed to get total savings")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.SavingsResponse{
		TotalSavings:  total,
		AnnualSavings: total * recommendation.MonthsPerYear,
	})
}
