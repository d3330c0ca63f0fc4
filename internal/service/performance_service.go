package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ndewijer/portfolio-performance/internal/apperrors"
	"github.com/ndewijer/portfolio-performance/internal/calendar"
	"github.com/ndewijer/portfolio-performance/internal/logging"
	"github.com/ndewijer/portfolio-performance/internal/metrics"
	"github.com/ndewijer/portfolio-performance/internal/model"
	"github.com/ndewijer/portfolio-performance/internal/performance"
	"github.com/ndewijer/portfolio-performance/internal/repository"
	"github.com/ndewijer/portfolio-performance/internal/validation"
)

// PerformanceOptions holds the defaults applied to a PerformanceQuery.
type PerformanceOptions struct {
	BaseCurrency string
	PriceSource  string
	// Parallelism bounds the number of holdings calculated at once.
	Parallelism int
}

// PerformanceService calculates portfolio, holding and factor performance
// from the stored market data.
//
// Every call builds its own performance.Registry, so providers and their
// memoized returns never outlive a request and always see current data.
type PerformanceService struct {
	portfolioRepo *repository.PortfolioRepository
	fundRepo      *repository.FundRepository
	rateRepo      *repository.ExchangeRateRepository
	factorRepo    *repository.FactorRepository
	calendar      *calendar.Calendar
	opts          PerformanceOptions
	logger        *logging.Logger
}

// NewPerformanceService creates a new PerformanceService.
func NewPerformanceService(
	portfolioRepo *repository.PortfolioRepository,
	fundRepo *repository.FundRepository,
	rateRepo *repository.ExchangeRateRepository,
	factorRepo *repository.FactorRepository,
	cal *calendar.Calendar,
	opts PerformanceOptions,
	logger *logging.Logger,
) *PerformanceService {
	return &PerformanceService{
		portfolioRepo: portfolioRepo,
		fundRepo:      fundRepo,
		rateRepo:      rateRepo,
		factorRepo:    factorRepo,
		calendar:      cal,
		opts:          opts,
		logger:        logger,
	}
}

// Calendar returns the business-day calendar used to build date sequences.
func (s *PerformanceService) Calendar() *calendar.Calendar {
	return s.calendar
}

// Options returns the configured defaults.
func (s *PerformanceService) Options() PerformanceOptions {
	return s.opts
}

// PortfolioPerformance calculates the performance of the portfolio with the
// given ID and of every holding it held during the query period.
func (s *PerformanceService) PortfolioPerformance(
	ctx context.Context,
	portfolioID string,
	q model.PerformanceQuery,
) (*performance.PortfolioPerformance, error) {
	p, err := s.portfolioRepo.GetPortfolioOnID(portfolioID)
	if err != nil {
		return nil, err
	}
	return s.PortfolioPerformanceByName(ctx, p.Name, q)
}

// PortfolioPerformanceByName is PortfolioPerformance addressed by portfolio name.
func (s *PerformanceService) PortfolioPerformanceByName(
	ctx context.Context,
	name string,
	q model.PerformanceQuery,
) (*performance.PortfolioPerformance, error) {
	q, dates, err := s.prepare(q)
	if err != nil {
		return nil, err
	}

	perf := performance.NewPortfolioPerformance(s.registry(), name, q.Currency, q.Source)
	perf.Parallelism = s.opts.Parallelism

	err = s.run(ctx, "portfolio", name, dates, func() error {
		return perf.Calculate(dates)
	})
	if err != nil {
		return nil, err
	}
	return perf, nil
}

// HoldingPerformance calculates the performance of one unit of the fund with
// the given ID, valued in the query currency.
func (s *PerformanceService) HoldingPerformance(
	ctx context.Context,
	fundID string,
	q model.PerformanceQuery,
) (*performance.HoldingPerformance, error) {
	fund, err := s.fundRepo.GetFund(fundID)
	if err != nil {
		return nil, err
	}

	q, dates, err := s.prepare(q)
	if err != nil {
		return nil, err
	}

	holding := performance.Holding{
		ID:       fund.ID,
		Name:     fund.Name,
		ISIN:     fund.Isin,
		Currency: fund.Currency,
	}
	perf := performance.NewHoldingPerformance(s.registry(), holding, q.Currency, q.Source)

	err = s.run(ctx, "holding", fund.Name, dates, func() error {
		return perf.Calculate(dates)
	})
	if err != nil {
		return nil, err
	}
	return perf, nil
}

// FactorPerformance compounds the published returns of a risk factor over
// the query period. Currency and source do not apply to factors.
func (s *PerformanceService) FactorPerformance(
	ctx context.Context,
	factor string,
	q model.PerformanceQuery,
) (*performance.Performance, error) {
	exists, err := s.factorRepo.FactorExists(factor)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFactorNotFound, factor)
	}

	dates, err := s.dates(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	perf := &performance.Performance{}
	err = s.run(ctx, "factor", factor, dates, func() error {
		return perf.Calculate(dates, s.registry().Factor(factor))
	})
	if err != nil {
		return nil, err
	}
	return perf, nil
}

// prepare applies the configured defaults to q and returns its date sequence.
func (s *PerformanceService) prepare(q model.PerformanceQuery) (model.PerformanceQuery, []time.Time, error) {
	if q.Currency == "" {
		q.Currency = s.opts.BaseCurrency
	}
	currency, err := validation.ValidateCurrency(q.Currency)
	if err != nil {
		return q, nil, err
	}
	q.Currency = currency

	if q.Source == "" {
		q.Source = s.opts.PriceSource
	}

	dates, err := s.dates(q.StartDate, q.EndDate)
	if err != nil {
		return q, nil, err
	}
	return q, dates, nil
}

// dates returns the business days in (start, end].
func (s *PerformanceService) dates(start, end time.Time) ([]time.Time, error) {
	if err := validation.ValidatePeriod(start, end); err != nil {
		return nil, err
	}
	dates := s.calendar.BusinessDays(start, end)
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: %s to %s", apperrors.ErrEmptyDateSequence,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return dates, nil
}

func (s *PerformanceService) registry() *performance.Registry {
	return performance.NewRegistry(performance.Sources{
		Compositions: s.portfolioRepo,
		Prices:       s.fundRepo,
		Rates:        s.rateRepo,
		Factors:      s.factorRepo,
		Calendar:     s.calendar,
	})
}

// run executes calc, recording its duration and outcome.
func (s *PerformanceService) run(ctx context.Context, kind, subject string, dates []time.Time, calc func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	s.logger.Debug().
		Str("kind", kind).
		Str("subject", subject).
		Time("from", dates[0]).
		Time("to", dates[len(dates)-1]).
		Int("days", len(dates)).
		Msg("calculating performance")

	err := calc()

	elapsed := time.Since(start)
	metrics.CalculationsTotal.WithLabelValues(kind, metrics.Result(err)).Inc()
	metrics.CalculationDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	metrics.CalculationDays.Observe(float64(len(dates)))

	if err != nil {
		s.logger.Error().
			Err(err).
			Str("kind", kind).
			Str("subject", subject).
			Msg("performance calculation failed")
		return err
	}

	s.logger.Debug().
		Str("kind", kind).
		Str("subject", subject).
		Dur("elapsed", elapsed).
		Msg("performance calculated")
	return nil
}
