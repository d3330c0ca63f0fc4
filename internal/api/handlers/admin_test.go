package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/portfolio-performance/internal/api/handlers"
	"github.com/ndewijer/portfolio-performance/internal/scheduler"
)

type stubRunner struct {
	report *scheduler.Report
	err    error
}

func (s stubRunner) Run(context.Context) (*scheduler.Report, error) {
	return s.report, s.err
}

// TestAdminHandler_RunReport tests the POST /api/admin/report/run endpoint.
//
// WHY: Operators trigger the report by hand after backfilling prices. A run
// that collides with the scheduled one must be reported as a conflict, not
// as a server failure.
func TestAdminHandler_RunReport(t *testing.T) {
	t.Run("returns the report", func(t *testing.T) {
		// Setup
		handler := handlers.NewAdminHandler(stubRunner{report: &scheduler.Report{
			Lines: []scheduler.ReportLine{{Portfolio: "Growth", Summary: "Growth: 100.0 bps | €10.00"}},
		}})
		req := httptest.NewRequest(http.MethodPost, "/api/admin/report/run", nil)
		w := httptest.NewRecorder()

		// Execute
		handler.RunReport(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var report scheduler.Report
		if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(report.Lines) != 1 || report.Lines[0].Portfolio != "Growth" {
			t.Errorf("Unexpected report %+v", report)
		}
	})

	t.Run("overlapping run returns 409", func(t *testing.T) {
		handler := handlers.NewAdminHandler(stubRunner{err: scheduler.ErrReportRunning})
		req := httptest.NewRequest(http.MethodPost, "/api/admin/report/run", nil)
		w := httptest.NewRecorder()

		handler.RunReport(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", w.Code)
		}
	})

	t.Run("other failures return 500", func(t *testing.T) {
		handler := handlers.NewAdminHandler(stubRunner{err: errors.New("database is locked")})
		req := httptest.NewRequest(http.MethodPost, "/api/admin/report/run", nil)
		w := httptest.NewRecorder()

		handler.RunReport(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
	})
}
