// Package app wires configuration, storage and services into one unit shared
// by the HTTP server and the command line tool.
package app

import (
	"database/sql"
	"fmt"

	"github.com/ndewijer/portfolio-performance/internal/calendar"
	"github.com/ndewijer/portfolio-performance/internal/config"
	"github.com/ndewijer/portfolio-performance/internal/database"
	"github.com/ndewijer/portfolio-performance/internal/logging"
	"github.com/ndewijer/portfolio-performance/internal/repository"
	"github.com/ndewijer/portfolio-performance/internal/service"
)

// App holds the long-lived dependencies of a process.
type App struct {
	Config *config.Config
	Logger *logging.Logger
	DB     *sql.DB

	Calendar           *calendar.Calendar
	SystemService      *service.SystemService
	PortfolioService   *service.PortfolioService
	PerformanceService *service.PerformanceService
}

// New opens and migrates the database, loads the holiday calendar and
// creates the services. The caller owns the returned App and must Close it.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a, err := NewWithDB(cfg, logger, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info().Str("path", cfg.Database.Path).Msg("connected to database")
	return a, nil
}

// NewWithDB is New over an already opened database.
func NewWithDB(cfg *config.Config, logger *logging.Logger, db *sql.DB) (*App, error) {
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	cal, err := loadCalendar(cfg.Performance.CalendarFile)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("calendar", cal.Name).
		Int("holidays", len(cal.Holidays())).
		Msg("loaded business-day calendar")

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	fundRepo := repository.NewFundRepository(db)
	factorRepo := repository.NewFactorRepository(db)
	rateRepo, err := repository.NewExchangeRateRepository(db, cfg.Performance.RateCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange rate repository: %w", err)
	}

	// Create services
	return &App{
		Config:           cfg,
		Logger:           logger,
		DB:               db,
		Calendar:         cal,
		SystemService:    service.NewSystemService(db),
		PortfolioService: service.NewPortfolioService(portfolioRepo),
		PerformanceService: service.NewPerformanceService(
			portfolioRepo,
			fundRepo,
			rateRepo,
			factorRepo,
			cal,
			service.PerformanceOptions{
				BaseCurrency: cfg.Performance.BaseCurrency,
				PriceSource:  cfg.Performance.PriceSource,
				Parallelism:  cfg.Performance.Parallelism,
			},
			logger,
		),
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

func loadCalendar(path string) (*calendar.Calendar, error) {
	if path == "" {
		return calendar.New("weekends"), nil
	}
	return calendar.Load(path)
}
