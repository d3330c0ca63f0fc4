package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-performance/internal/service"
)

// FundHandler handles fund-related HTTP requests
type FundHandler struct {
	performanceService *service.PerformanceService
}

// NewFundHandler creates a new FundHandler
func NewFundHandler(performanceService *service.PerformanceService) *FundHandler {
	return &FundHandler{
		performanceService: performanceService,
	}
}

// FundPerformance calculates the return of one unit of a fund, converted
// into the requested currency and split into price and currency parts.
//
// Endpoint: GET /api/fund/{uuid}/performance
// Query: start_date, end_date (YYYY-MM-DD), currency, source, daily
// Response: 200 OK with HoldingPerformanceResponse
func (h *FundHandler) FundPerformance(w http.ResponseWriter, r *http.Request) {
	fundID := chi.URLParam(r, "uuid")

	q, err := parsePerformanceQuery(r)
	if err != nil {
		respondServiceError(w, "invalid performance query", err)
		return
	}

	perf, err := h.performanceService.HoldingPerformance(r.Context(), fundID, q)
	if err != nil {
		respondServiceError(w, "failed to calculate fund performance", err)
		return
	}

	respondJSON(w, http.StatusOK, newHoldingPerformanceResponse(perf, wantsDaily(r)))
}
