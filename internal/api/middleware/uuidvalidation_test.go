package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/portfolio-performance/internal/api/middleware"
	"github.com/ndewijer/portfolio-performance/internal/testutil"
)

// TestValidateUUIDMiddleware tests the {uuid} guard in front of the
// portfolio and fund performance routes.
//
// WHY: A malformed identifier must be rejected with 400 before the
// performance service builds a provider graph for it, so it never
// surfaces as a 404 for a portfolio that "does not exist".
func TestValidateUUIDMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantError  string
	}{
		{"generated portfolio id", testutil.MakeID(), http.StatusOK, ""},
		{"upper case id", "550E8400-E29B-41D4-A716-446655440000", http.StatusOK, ""},
		{"isin instead of id", "US0378331005", http.StatusBadRequest, "invalid UUID format"},
		{"truncated id", "550e8400-e29b-41d4", http.StatusBadRequest, "invalid UUID format"},
		{"missing id", "", http.StatusBadRequest, "valid UUID is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = chi.URLParam(r, "uuid")
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/api/fund/"+tt.id+"/performance", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("uuid", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			// Execute
			middleware.ValidateUUIDMiddleware(next).ServeHTTP(w, req)

			// Assert
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				if seen != tt.id {
					t.Errorf("Expected next handler to see %q, got %q", tt.id, seen)
				}
				return
			}
			if seen != "" {
				t.Error("Expected next handler NOT to be called")
			}
			var response map[string]interface{}
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response["error"] != tt.wantError {
				t.Errorf("Expected error %q, got %v", tt.wantError, response["error"])
			}
		})
	}
}
