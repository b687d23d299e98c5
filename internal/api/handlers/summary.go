package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/costengine/internal/domain/analysis"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/utils"
)

// SummaryHandler serves organization-level savings rollups
type SummaryHandler struct {
	service analysis.Service
	logger  *logger.Logger
}

func NewSummaryHandler(service analysis.Service, log *logger.Logger) *SummaryHandler {
	return &SummaryHandler{service: service, logger: log}
}

// Get rolls up every recommendation of an organization
// @Summary Get cost optimization summary
// @Tags Summary
// @Produce json
// @Param org path string true "Organization ID"
// @Success 200 {object} analysis.CostOptimizationAnalysis
// @Router /organizations/{org}/summary [get]
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GenerateAnalysisSummary(r.Context(), chi.URLParam(r, "org"))
	if err != nil {
		respondError(w, h.logger, err, "Failed to generate summary")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, summary)
}
