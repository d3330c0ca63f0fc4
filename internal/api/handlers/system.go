package handlers

import (
	"net/http"
	"strconv"

	"github.com/ndewijer/portfolio-performance/internal/service"
)

// Health states reported by GET /api/system/health.
const (
	healthHealthy   = "healthy"
	healthDegraded  = "degraded"
	healthUnhealthy = "unhealthy"
)

// SystemHandler serves the health and version endpoints.
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// HealthResponse reports database connectivity and whether the schema can
// serve every performance query.
type HealthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	SchemaVersion *int64 `json:"schema_version,omitempty"`
	RiskFactors   bool   `json:"risk_factors"`
	Error         string `json:"error,omitempty"`
}

// Health pings the database and compares its schema with the embedded
// migrations. A reachable database with pending migrations is degraded:
// portfolio queries still work but factor attribution may not.
//
// Endpoint: GET /api/system/health
// Response: 200 OK when healthy or degraded, 503 when the database is unreachable
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.systemService.CheckHealth(); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   healthUnhealthy,
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}

	info, err := h.systemService.CheckVersion()
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   healthUnhealthy,
			Database: "connected",
			Error:    err.Error(),
		})
		return
	}

	response := HealthResponse{
		Status:      healthHealthy,
		Database:    "connected",
		RiskFactors: info.Features["risk_factors"],
	}
	if v, err := strconv.ParseInt(info.DbVersion, 10, 64); err == nil {
		response.SchemaVersion = &v
	}
	if info.MigrationNeeded {
		response.Status = healthDegraded
		if info.MigrationMessage != nil {
			response.Error = *info.MigrationMessage
		}
	}
	respondJSON(w, http.StatusOK, response)
}

// Version returns the application version, the schema version and which
// performance features the current schema supports.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with model.VersionInfo
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	info, err := h.systemService.CheckVersion()
	if err != nil {
		respondServiceError(w, "failed to get version information", err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}
