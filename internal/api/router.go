package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ndewijer/portfolio-performance/internal/api/handlers"
	custommiddleware "github.com/ndewijer/portfolio-performance/internal/api/middleware"
	"github.com/ndewijer/portfolio-performance/internal/config"
	"github.com/ndewijer/portfolio-performance/internal/logging"
	"github.com/ndewijer/portfolio-performance/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	portfolioService *service.PortfolioService,
	performanceService *service.PerformanceService,
	reports handlers.ReportRunner,
	cfg *config.Config,
	logger *logging.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(portfolioService, performanceService)
			r.Get("/", portfolioHandler.Portfolios)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/performance", portfolioHandler.PortfolioPerformance)
				r.Get("/performance/export", portfolioHandler.PortfolioPerformanceExport)
			})
		})

		r.Route("/fund/{uuid}", func(r chi.Router) {
			fundHandler := handlers.NewFundHandler(performanceService)
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/performance", fundHandler.FundPerformance)
		})

		r.Route("/factor/{name}", func(r chi.Router) {
			factorHandler := handlers.NewFactorHandler(performanceService)
			r.Get("/performance", factorHandler.FactorPerformance)
		})

		r.Route("/admin", func(r chi.Router) {
			adminHandler := handlers.NewAdminHandler(reports)
			r.Use(custommiddleware.APIKeyMiddleware)
			r.Post("/report/run", adminHandler.RunReport)
		})
	})

	return r
}
