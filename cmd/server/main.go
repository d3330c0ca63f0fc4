package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/portfolio-performance/internal/api"
	"github.com/ndewijer/portfolio-performance/internal/app"
	"github.com/ndewijer/portfolio-performance/internal/config"
	"github.com/ndewijer/portfolio-performance/internal/logging"
	"github.com/ndewijer/portfolio-performance/internal/scheduler"
	"github.com/ndewijer/portfolio-performance/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	log.Logger = logger.Logger

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}
	defer a.Close()

	// Scheduled report
	job := scheduler.NewReportJob(a.PortfolioService, a.PerformanceService, cfg.Report.LookbackDays, logger)
	var reports *scheduler.Scheduler
	if cfg.Report.Schedule != "" {
		reports, err = scheduler.New(cfg.Report.Schedule, job, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to schedule report")
		}
		reports.Start()
		logger.Info().
			Str("schedule", cfg.Report.Schedule).
			Time("next", reports.Next()).
			Msg("report scheduled")
	}

	// Create router
	router := api.NewRouter(a.SystemService, a.PortfolioService, a.PerformanceService, job, cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("version", version.Version).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if reports != nil {
		select {
		case <-reports.Stop().Done():
		case <-ctx.Done():
			logger.Warn().Msg("report still running at shutdown")
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
