package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ndewijer/portfolio-performance/internal/config"
	"github.com/ndewijer/portfolio-performance/internal/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")},
		Performance: config.PerformanceConfig{
			BaseCurrency:  "EUR",
			PriceSource:   "close",
			Parallelism:   2,
			RateCacheSize: 16,
		},
	}
}

// TestNew tests process wiring against a file database.
//
// WHY: The server and the CLI both start through New. A fresh database file
// must come up fully migrated, and a broken calendar file must stop startup
// instead of silently treating holidays as trading days.
func TestNew(t *testing.T) {
	t.Run("migrates a new database", func(t *testing.T) {
		// Setup
		cfg := testConfig(t)

		// Execute
		a, err := New(cfg, logging.NewSilent())

		// Assert
		if err != nil {
			t.Fatalf("New() returned unexpected error: %v", err)
		}
		defer a.Close()

		info, err := a.SystemService.CheckVersion()
		if err != nil {
			t.Fatalf("CheckVersion() returned unexpected error: %v", err)
		}
		if info.MigrationNeeded {
			t.Error("Expected no pending migrations")
		}
		if a.Calendar.Name != "weekends" {
			t.Errorf("Expected the weekends calendar, got %s", a.Calendar.Name)
		}
		if a.PerformanceService.Options().Parallelism != 2 {
			t.Errorf("Expected parallelism 2, got %d", a.PerformanceService.Options().Parallelism)
		}
	})

	t.Run("loads the calendar file", func(t *testing.T) {
		// Setup
		cfg := testConfig(t)
		path := filepath.Join(t.TempDir(), "target.toml")
		data := "name = \"TARGET\"\n\n[[holiday]]\ndate = 2024-12-25\nname = \"Christmas Day\"\n"
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatalf("Failed to write calendar: %v", err)
		}
		cfg.Performance.CalendarFile = path

		// Execute
		a, err := New(cfg, logging.NewSilent())

		// Assert
		if err != nil {
			t.Fatalf("New() returned unexpected error: %v", err)
		}
		defer a.Close()
		if a.Calendar.Name != "TARGET" || len(a.Calendar.Holidays()) != 1 {
			t.Errorf("Expected TARGET with one holiday, got %s with %d", a.Calendar.Name, len(a.Calendar.Holidays()))
		}
	})

	t.Run("missing calendar file fails", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Performance.CalendarFile = filepath.Join(t.TempDir(), "missing.toml")

		_, err := New(cfg, logging.NewSilent())

		if err == nil {
			t.Error("Expected error for a missing calendar file")
		}
	})
}
