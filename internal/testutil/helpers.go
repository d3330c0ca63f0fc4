package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-performance/internal/calendar"
	"github.com/ndewijer/portfolio-performance/internal/logging"
	"github.com/ndewijer/portfolio-performance/internal/repository"
	"github.com/ndewijer/portfolio-performance/internal/service"
)

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		repository.NewPortfolioRepository(db),
	)
}

// NewTestPerformanceService creates a PerformanceService valuing in EUR from
// "close" prices on a weekends-only calendar. Pass opts to override.
func NewTestPerformanceService(t *testing.T, db *sql.DB, opts ...service.PerformanceOptions) *service.PerformanceService {
	t.Helper()

	o := service.PerformanceOptions{
		BaseCurrency: "EUR",
		PriceSource:  "close",
		Parallelism:  1,
	}
	if len(opts) > 0 {
		o = opts[0]
	}

	rateRepo, err := repository.NewExchangeRateRepository(db, 128)
	if err != nil {
		t.Fatalf("Failed to create exchange rate repository: %v", err)
	}

	return service.NewPerformanceService(
		repository.NewPortfolioRepository(db),
		repository.NewFundRepository(db),
		rateRepo,
		repository.NewFactorRepository(db),
		calendar.New("test"),
		o,
		logging.NewSilent(),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// Date parses a "2006-01-02" date in UTC and fails the test on error.
//
// Example usage:
//
//	d := testutil.Date("2024-01-02")
func Date(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic("testutil.Date: " + err.Error())
	}
	return d
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeISIN generates a realistic ISIN code for testing.
//
// Example usage:
//
//	isin := testutil.MakeISIN("US")
//	// Returns: "US1A2B3C4D5E"
func MakeISIN(prefix string) string {
	if prefix == "" {
		prefix = "US"
	}
	return prefix + randomAlphanumeric(10)
}

// MakeSymbol generates a stock ticker symbol for testing.
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// MakeFundName generates a unique fund name for testing.
func MakeFundName(base string) string {
	if base == "" {
		base = "Fund"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
