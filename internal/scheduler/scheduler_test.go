package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-performance/internal/logging"
	"github.com/ndewijer/portfolio-performance/internal/testutil"
)

func newTestJob(t *testing.T) (*ReportJob, func(name string)) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	job := NewReportJob(
		testutil.NewTestPortfolioService(t, db),
		testutil.NewTestPerformanceService(t, db),
		1,
		logging.NewSilent(),
	)
	job.now = func() time.Time { return time.Date(2024, 1, 2, 22, 0, 0, 0, time.UTC) }

	seed := func(name string) {
		p := testutil.CreatePortfolio(t, db, name)
		f := testutil.CreateFund(t, db, name+" Fund", "EUR")
		testutil.Buy(t, db, p.ID, f.ID, testutil.Date("2024-01-01"), 10)
		if name != "Broken" {
			days := []time.Time{testutil.Date("2024-01-01"), testutil.Date("2024-01-02")}
			testutil.CreatePrices(t, db, f.ID, days, 100, 101)
		}
	}
	seed("Growth")
	testutil.CreateArchivedPortfolio(t, db, "Closed")

	return job, seed
}

// TestReportJob_Run tests one run of the trailing-performance report.
//
// WHY: The report runs unattended every evening. One portfolio with missing
// prices must not hide the results of all the others, and archived
// portfolios must not be reported at all.
func TestReportJob_Run(t *testing.T) {
	t.Run("reports every active portfolio", func(t *testing.T) {
		// Setup
		job, _ := newTestJob(t)

		// Execute
		report, err := job.Run(context.Background())

		// Assert
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		if report.From.Format(time.DateOnly) != "2024-01-01" || report.To.Format(time.DateOnly) != "2024-01-02" {
			t.Errorf("Expected period 2024-01-01..2024-01-02, got %s..%s",
				report.From.Format(time.DateOnly), report.To.Format(time.DateOnly))
		}
		if len(report.Lines) != 1 {
			t.Fatalf("Expected 1 line, got %+v", report.Lines)
		}
		line := report.Lines[0]
		if line.Portfolio != "Growth" || line.Error != "" {
			t.Errorf("Expected a successful Growth line, got %+v", line)
		}
		if !strings.HasPrefix(line.Summary, "Growth: 100.0 bps") {
			t.Errorf("Expected a 100 bps summary, got %q", line.Summary)
		}
	})

	t.Run("a failing portfolio does not stop the others", func(t *testing.T) {
		// Setup
		job, seed := newTestJob(t)
		seed("Broken")

		// Execute
		report, err := job.Run(context.Background())

		// Assert
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		if len(report.Lines) != 2 {
			t.Fatalf("Expected 2 lines, got %+v", report.Lines)
		}
		if report.Failed() != 1 {
			t.Errorf("Expected 1 failure, got %d", report.Failed())
		}
		if report.Lines[0].Portfolio != "Broken" || report.Lines[0].Error == "" {
			t.Errorf("Expected Broken to fail, got %+v", report.Lines[0])
		}
		if report.Lines[1].Portfolio != "Growth" || report.Lines[1].Summary == "" {
			t.Errorf("Expected Growth to succeed, got %+v", report.Lines[1])
		}
	})

	t.Run("overlapping runs are rejected", func(t *testing.T) {
		// Setup
		job, _ := newTestJob(t)
		job.running.Lock()
		defer job.running.Unlock()

		// Execute
		_, err := job.Run(context.Background())

		// Assert
		if !errors.Is(err, ErrReportRunning) {
			t.Errorf("Expected ErrReportRunning, got %v", err)
		}
	})
}

// TestScheduler tests cron registration.
//
// WHY: REPORT_SCHEDULE is user supplied; a bad spec must fail at startup
// rather than silently never running.
func TestScheduler(t *testing.T) {
	t.Run("invalid spec", func(t *testing.T) {
		job, _ := newTestJob(t)

		_, err := New("every evening", job, logging.NewSilent())

		if err == nil {
			t.Error("Expected error for invalid cron spec")
		}
	})

	t.Run("schedules and runs on demand", func(t *testing.T) {
		// Setup
		job, _ := newTestJob(t)
		s, err := New("0 22 * * 1-5", job, logging.NewSilent())
		if err != nil {
			t.Fatalf("New() returned unexpected error: %v", err)
		}

		// Execute
		s.Start()
		next := s.Next()
		report, runErr := s.RunNow(context.Background())
		<-s.Stop().Done()

		// Assert
		if next.IsZero() {
			t.Error("Expected a next run time after Start")
		}
		if next.Hour() != 22 || next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
			t.Errorf("Expected a weekday 22:00 run, got %s", next)
		}
		if runErr != nil || len(report.Lines) != 1 {
			t.Errorf("Expected one report line, got %+v (%v)", report, runErr)
		}
	})
}
