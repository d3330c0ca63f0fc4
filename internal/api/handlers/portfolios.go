package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ndewijer/portfolio-performance/internal/service"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService   *service.PortfolioService
	performanceService *service.PerformanceService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService, performanceService *service.PerformanceService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService:   portfolioService,
		performanceService: performanceService,
	}
}

// PortfoliosResponse represents the Portfolios get response
type PortfoliosResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	IsArchived          bool   `json:"is_archived"`
	ExcludeFromOverview bool   `json:"exclude_from_overview"`
}

// Portfolios lists every portfolio, archived ones included.
//
// Endpoint: GET /api/portfolio
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioService.GetAllPortfolios()
	if err != nil {
		respondServiceError(w, "failed to retrieve portfolios", err)
		return
	}

	response := make([]PortfoliosResponse, len(portfolios))
	for i, p := range portfolios {
		response[i] = PortfoliosResponse{
			ID:                  p.ID,
			Name:                p.Name,
			Description:         p.Description,
			IsArchived:          p.IsArchived,
			ExcludeFromOverview: p.ExcludeFromOverview,
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// PortfolioPerformance calculates the return of a portfolio and its holdings.
//
// Endpoint: GET /api/portfolio/{uuid}/performance
// Query: start_date, end_date (YYYY-MM-DD), currency, source, daily
// Response: 200 OK with PortfolioPerformanceResponse
// Error: 400 bad parameters, 404 unknown portfolio, 422 missing market data
func (h *PortfolioHandler) PortfolioPerformance(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	q, err := parsePerformanceQuery(r)
	if err != nil {
		respondServiceError(w, "invalid performance query", err)
		return
	}

	perf, err := h.performanceService.PortfolioPerformance(r.Context(), portfolioID, q)
	if err != nil {
		respondServiceError(w, "failed to calculate portfolio performance", err)
		return
	}

	respondJSON(w, http.StatusOK, newPortfolioPerformanceResponse(portfolioID, perf, wantsDaily(r)))
}

// PortfolioPerformanceExport returns the same calculation as
// PortfolioPerformance as a CSV attachment: one aggregate row followed by
// one row per holding.
//
// Endpoint: GET /api/portfolio/{uuid}/performance/export
func (h *PortfolioHandler) PortfolioPerformanceExport(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	q, err := parsePerformanceQuery(r)
	if err != nil {
		respondServiceError(w, "invalid performance query", err)
		return
	}

	perf, err := h.performanceService.PortfolioPerformance(r.Context(), portfolioID, q)
	if err != nil {
		respondServiceError(w, "failed to calculate portfolio performance", err)
		return
	}

	filename := fmt.Sprintf("performance_%s_%s.csv",
		perf.Total.InitialDate.Format(time.DateOnly), perf.Total.FinalDate.Format(time.DateOnly))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := perf.WriteCSV(w); err != nil {
		log.Error().Err(err).Str("portfolio", perf.Portfolio).Msg("failed to write performance export")
	}
}
