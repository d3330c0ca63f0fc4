package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ndewijer/portfolio-performance/internal/api/response"
	"github.com/ndewijer/portfolio-performance/internal/scheduler"
)

// ReportRunner runs the trailing-performance report on demand.
type ReportRunner interface {
	Run(ctx context.Context) (*scheduler.Report, error)
}

// AdminHandler handles operational endpoints behind the API key.
type AdminHandler struct {
	reports ReportRunner
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(reports ReportRunner) *AdminHandler {
	return &AdminHandler{reports: reports}
}

// RunReport runs the scheduled report immediately and returns its lines.
//
// Endpoint: POST /api/admin/report/run
// Response: 200 OK with scheduler.Report
// Error: 409 Conflict while a run is already in progress
func (h *AdminHandler) RunReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Run(r.Context())
	if errors.Is(err, scheduler.ErrReportRunning) {
		response.RespondError(w, http.StatusConflict, "report already running", err.Error())
		return
	}
	if err != nil {
		respondServiceError(w, "failed to run report", err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}
