package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	CORS        CORSConfig
	Log         LogConfig
	Performance PerformanceConfig
	Report      ReportConfig
	Auth        AuthConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig selects the log level and the output format ("json" or "console").
type LogConfig struct {
	Level  string
	Format string
}

// PerformanceConfig holds the defaults of performance calculations.
type PerformanceConfig struct {
	BaseCurrency  string
	PriceSource   string
	CalendarFile  string // optional TOML holiday file
	Parallelism   int
	RateCacheSize int
}

// ReportConfig configures the scheduled trailing-performance report.
type ReportConfig struct {
	Schedule     string // cron spec, empty disables the job
	LookbackDays int
}

// AuthConfig holds the key protecting admin routes.
type AuthConfig struct {
	InternalAPIKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	parallelism, err := getEnvInt("CALC_PARALLELISM", 1)
	if err != nil {
		return nil, err
	}
	cacheSize, err := getEnvInt("RATE_CACHE_SIZE", 4096)
	if err != nil {
		return nil, err
	}
	lookback, err := getEnvInt("REPORT_LOOKBACK_DAYS", 20)
	if err != nil {
		return nil, err
	}
	if lookback < 1 {
		return nil, fmt.Errorf("REPORT_LOOKBACK_DAYS must be positive, got %d", lookback)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_performance.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Performance: PerformanceConfig{
			BaseCurrency:  strings.ToUpper(getEnv("BASE_CURRENCY", "EUR")),
			PriceSource:   getEnv("PRICE_SOURCE", "close"),
			CalendarFile:  getEnv("CALENDAR_FILE", ""),
			Parallelism:   parallelism,
			RateCacheSize: cacheSize,
		},
		Report: ReportConfig{
			Schedule:     getEnv("REPORT_SCHEDULE", "0 22 * * 1-5"),
			LookbackDays: lookback,
		},
		Auth: AuthConfig{
			InternalAPIKey: os.Getenv("INTERNAL_API_KEY"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
