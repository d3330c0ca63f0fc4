package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-performance/internal/service"
)

// FactorHandler handles risk factor HTTP requests
type FactorHandler struct {
	performanceService *service.PerformanceService
}

// NewFactorHandler creates a new FactorHandler
func NewFactorHandler(performanceService *service.PerformanceService) *FactorHandler {
	return &FactorHandler{
		performanceService: performanceService,
	}
}

// FactorPerformance compounds the daily returns of a risk factor.
// The currency and source parameters are ignored.
//
// Endpoint: GET /api/factor/{name}/performance
func (h *FactorHandler) FactorPerformance(w http.ResponseWriter, r *http.Request) {
	factor := chi.URLParam(r, "name")

	q, err := parsePerformanceQuery(r)
	if err != nil {
		respondServiceError(w, "invalid performance query", err)
		return
	}

	perf, err := h.performanceService.FactorPerformance(r.Context(), factor, q)
	if err != nil {
		respondServiceError(w, "failed to calculate factor performance", err)
		return
	}

	respondJSON(w, http.StatusOK, FactorPerformanceResponse{
		Factor:  factor,
		Summary: factor + ": " + perf.String(),
		Total:   newPerformanceResponse(perf, wantsDaily(r)),
	})
}
