package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-performance/internal/api/middleware"
	"github.com/ndewijer/portfolio-performance/internal/logging"
)

// TestLogger tests request logging.
//
// WHY: Operators search logs by status and path; the middleware must record
// the status the handler actually wrote, not the default 200.
func TestLogger(t *testing.T) {
	t.Run("logs the written status", func(t *testing.T) {
		// Setup
		var buf bytes.Buffer
		r := chi.NewRouter()
		r.Use(middleware.Logger(logging.NewWithOutput("info", &buf)))
		r.Get("/api/portfolio/{uuid}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		// Execute
		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/abc", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		// Assert
		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Expected one JSON log line, got %q: %v", buf.String(), err)
		}
		if entry["status"] != float64(http.StatusNotFound) {
			t.Errorf("Expected status 404, got %v", entry["status"])
		}
		if entry["path"] != "/api/portfolio/abc" {
			t.Errorf("Expected path /api/portfolio/abc, got %v", entry["path"])
		}
		if entry["method"] != http.MethodGet {
			t.Errorf("Expected method GET, got %v", entry["method"])
		}
	})
}
