// Package scheduler runs the trailing-performance report on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ndewijer/portfolio-performance/internal/logging"
	"github.com/ndewijer/portfolio-performance/internal/metrics"
	"github.com/ndewijer/portfolio-performance/internal/model"
	"github.com/ndewijer/portfolio-performance/internal/service"
)

// ErrReportRunning is returned by Run while another run is in progress.
var ErrReportRunning = errors.New("report is already running")

// ReportLine is the outcome of the report for one portfolio.
type ReportLine struct {
	Portfolio string `json:"portfolio"`
	Summary   string `json:"summary,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Report is the outcome of one run over all active portfolios.
type Report struct {
	From  time.Time    `json:"from"`
	To    time.Time    `json:"to"`
	Lines []ReportLine `json:"lines"`
}

// Failed counts the portfolios whose calculation failed.
func (r *Report) Failed() int {
	n := 0
	for _, l := range r.Lines {
		if l.Error != "" {
			n++
		}
	}
	return n
}

// ReportJob calculates the performance of every non-archived portfolio over
// the last business days and logs one summary line per portfolio.
type ReportJob struct {
	portfolios  *service.PortfolioService
	performance *service.PerformanceService
	lookback    int
	logger      *logging.Logger
	now         func() time.Time

	running sync.Mutex
}

// NewReportJob creates a job covering lookback business days.
func NewReportJob(
	portfolios *service.PortfolioService,
	performance *service.PerformanceService,
	lookback int,
	logger *logging.Logger,
) *ReportJob {
	return &ReportJob{
		portfolios:  portfolios,
		performance: performance,
		lookback:    lookback,
		logger:      logger,
		now:         time.Now,
	}
}

// Run calculates the report once. A failing portfolio is logged and
// recorded in its line; it does not stop the others.
func (j *ReportJob) Run(ctx context.Context) (*Report, error) {
	if !j.running.TryLock() {
		return nil, ErrReportRunning
	}
	defer j.running.Unlock()

	metrics.ReportRunsTotal.Inc()
	defer func() { metrics.ReportLastRunTimestamp.SetToCurrentTime() }()

	days := j.performance.Calendar().LastBusinessDays(j.now().UTC(), j.lookback)
	if len(days) == 0 {
		return nil, fmt.Errorf("no business days in the last %d", j.lookback)
	}
	report := &Report{
		From: j.performance.Calendar().AddBusinessDays(days[0], -1),
		To:   days[len(days)-1],
	}

	portfolios, err := j.portfolios.GetActivePortfolios()
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}

	q := model.PerformanceQuery{StartDate: report.From, EndDate: report.To}
	for _, p := range portfolios {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		line := ReportLine{Portfolio: p.Name}
		perf, err := j.performance.PortfolioPerformanceByName(ctx, p.Name, q)
		if err != nil {
			metrics.ReportFailuresTotal.Inc()
			line.Error = err.Error()
			j.logger.Error().Err(err).Str("portfolio", p.Name).Msg("report calculation failed")
		} else {
			line.Summary = perf.String()
			j.logger.Info().
				Str("portfolio", p.Name).
				Str("from", report.From.Format(time.DateOnly)).
				Str("to", report.To.Format(time.DateOnly)).
				Float64("return_pct", perf.Total.ReturnPercent).
				Float64("return_value", perf.Total.ReturnValue).
				Msg(line.Summary)
		}
		report.Lines = append(report.Lines, line)
	}

	j.logger.Info().
		Int("portfolios", len(report.Lines)).
		Int("failed", report.Failed()).
		Msg("report finished")
	return report, nil
}

// Scheduler triggers a ReportJob according to a cron spec.
type Scheduler struct {
	cron   *cron.Cron
	job    *ReportJob
	logger *logging.Logger
}

// New schedules job with a standard five-field cron spec, evaluated in UTC.
func New(spec string, job *ReportJob, logger *logging.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger{logger}),
			cron.WithChain(cron.Recover(cronLogger{logger})),
		),
		job:    job,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	if _, err := s.job.Run(context.Background()); err != nil {
		s.logger.Error().Err(err).Msg("scheduled report failed")
	}
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and returns a context done once a running report finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunNow runs the report immediately, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) (*Report, error) {
	return s.job.Run(ctx)
}

// Next returns when the report runs next. It is zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
