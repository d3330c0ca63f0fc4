package config

import (
	"testing"
)

// TestLoad verifies defaults and environment overrides.
//
// WHY: The server and the CLI share this configuration; silently wrong
// defaults would change every calculated return (currency, price source).
func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		// Setup
		for _, key := range []string{
			"SERVER_PORT", "SERVER_HOST", "BASE_CURRENCY", "PRICE_SOURCE",
			"CALC_PARALLELISM", "RATE_CACHE_SIZE", "REPORT_SCHEDULE",
			"REPORT_LOOKBACK_DAYS", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL",
		} {
			t.Setenv(key, "")
		}

		// Execute
		cfg, err := Load()

		// Assert
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.Server.Addr != "localhost:5001" {
			t.Errorf("Expected addr localhost:5001, got %s", cfg.Server.Addr)
		}
		if cfg.Performance.BaseCurrency != "EUR" {
			t.Errorf("Expected base currency EUR, got %s", cfg.Performance.BaseCurrency)
		}
		if cfg.Performance.PriceSource != "close" {
			t.Errorf("Expected price source close, got %s", cfg.Performance.PriceSource)
		}
		if cfg.Performance.Parallelism != 1 {
			t.Errorf("Expected parallelism 1, got %d", cfg.Performance.Parallelism)
		}
		if cfg.Report.Schedule != "0 22 * * 1-5" {
			t.Errorf("Expected default schedule, got %q", cfg.Report.Schedule)
		}
		if cfg.Report.LookbackDays != 20 {
			t.Errorf("Expected lookback 20, got %d", cfg.Report.LookbackDays)
		}
		if len(cfg.CORS.AllowedOrigins) != 2 {
			t.Errorf("Expected 2 default origins, got %v", cfg.CORS.AllowedOrigins)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		// Setup
		t.Setenv("SERVER_PORT", "8080")
		t.Setenv("BASE_CURRENCY", "usd")
		t.Setenv("CALC_PARALLELISM", "4")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

		// Execute
		cfg, err := Load()

		// Assert
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.Server.Port != "8080" {
			t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
		}
		if cfg.Performance.BaseCurrency != "USD" {
			t.Errorf("Expected base currency USD, got %s", cfg.Performance.BaseCurrency)
		}
		if cfg.Performance.Parallelism != 4 {
			t.Errorf("Expected parallelism 4, got %d", cfg.Performance.Parallelism)
		}
		want := []string{"https://a.example", "https://b.example"}
		if len(cfg.CORS.AllowedOrigins) != len(want) {
			t.Fatalf("Expected origins %v, got %v", want, cfg.CORS.AllowedOrigins)
		}
		for i := range want {
			if cfg.CORS.AllowedOrigins[i] != want[i] {
				t.Errorf("Expected origin %s, got %s", want[i], cfg.CORS.AllowedOrigins[i])
			}
		}
	})

	t.Run("invalid integer", func(t *testing.T) {
		t.Setenv("CALC_PARALLELISM", "many")

		if _, err := Load(); err == nil {
			t.Error("Expected error for non-numeric CALC_PARALLELISM")
		}
	})

	t.Run("non-positive lookback", func(t *testing.T) {
		t.Setenv("CALC_PARALLELISM", "")
		t.Setenv("REPORT_LOOKBACK_DAYS", "0")

		if _, err := Load(); err == nil {
			t.Error("Expected error for REPORT_LOOKBACK_DAYS=0")
		}
	})
}
