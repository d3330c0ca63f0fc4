package service_test

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-performance/internal/apperrors"
	"github.com/ndewijer/portfolio-performance/internal/model"
	"github.com/ndewijer/portfolio-performance/internal/service"
	"github.com/ndewijer/portfolio-performance/internal/testutil"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func query(start, end string) model.PerformanceQuery {
	return model.PerformanceQuery{
		StartDate: testutil.Date(start),
		EndDate:   testutil.Date(end),
	}
}

type growth struct {
	portfolio model.Portfolio
	alpha     model.Fund
	beta      model.Fund
}

// seedGrowth stores a EUR fund held 10 times by "Growth" and a USD fund held 5
// times, with prices on Monday 2024-01-01 and Tuesday 2024-01-02.
func seedGrowth(t *testing.T, db *sql.DB) growth {
	t.Helper()

	p := testutil.CreatePortfolio(t, db, "Growth")
	alpha := testutil.CreateFund(t, db, "Alpha", "EUR")
	beta := testutil.CreateFund(t, db, "Beta", "USD")

	days := []time.Time{testutil.Date("2024-01-01"), testutil.Date("2024-01-02")}
	testutil.CreatePrices(t, db, alpha.ID, days, 100, 110)
	testutil.CreatePrices(t, db, beta.ID, days, 20, 20)
	testutil.CreateExchangeRate(t, db, "USD", "EUR", days[0], 0.9)
	testutil.CreateExchangeRate(t, db, "USD", "EUR", days[1], 1.0)

	testutil.Buy(t, db, p.ID, alpha.ID, days[0], 10)
	testutil.Buy(t, db, p.ID, beta.ID, days[0], 5)
	return growth{portfolio: p, alpha: alpha, beta: beta}
}

// TestPerformanceService_PortfolioPerformance tests portfolio calculations against stored data.
//
// WHY: This is the path every API and report request takes. It must combine
// compositions, prices and exchange rates from the database into the same
// returns the engine produces for in-memory data, and map bad input to the
// right errors before any calculation starts.
func TestPerformanceService_PortfolioPerformance(t *testing.T) {
	t.Run("values the portfolio in the base currency", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPerformanceService(t, db)
		p := seedGrowth(t, db).portfolio

		// Execute
		perf, err := svc.PortfolioPerformance(context.Background(), p.ID, query("2024-01-01", "2024-01-02"))

		// Assert
		if err != nil {
			t.Fatalf("PortfolioPerformance() returned unexpected error: %v", err)
		}
		// 10*100 + 5*20*0.9 = 1090 grows to 10*110 + 5*20*1.0 = 1200
		if !almostEqual(perf.Total.ReturnPercent, 110.0/1090.0) {
			t.Errorf("Expected return %v, got %v", 110.0/1090.0, perf.Total.ReturnPercent)
		}
		if !almostEqual(perf.Total.ReturnValue, 110) {
			t.Errorf("Expected money return 110, got %v", perf.Total.ReturnValue)
		}
		if perf.Currency != "EUR" || perf.Source != "close" {
			t.Errorf("Expected defaults EUR/close, got %s/%s", perf.Currency, perf.Source)
		}
		if len(perf.Holdings) != 2 {
			t.Fatalf("Expected 2 holdings, got %d", len(perf.Holdings))
		}

		alpha := perf.Holdings[0]
		if alpha.Holding.Name != "Alpha" || !almostEqual(alpha.Total.ReturnValue, 100) {
			t.Errorf("Expected Alpha to return 100, got %s %v", alpha.Holding.Name, alpha.Total.ReturnValue)
		}
		beta := perf.Holdings[1]
		if !almostEqual(beta.Price.ReturnValue, 0) {
			t.Errorf("Expected no price return for Beta, got %v", beta.Price.ReturnValue)
		}
		if !almostEqual(beta.Fx.ReturnValue, 10) {
			t.Errorf("Expected currency return 10 for Beta, got %v", beta.Fx.ReturnValue)
		}
	})

	t.Run("parallel holdings give the same result", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		p := seedGrowth(t, db).portfolio
		sequential := testutil.NewTestPerformanceService(t, db)
		parallel := testutil.NewTestPerformanceService(t, db, service.PerformanceOptions{
			BaseCurrency: "EUR",
			PriceSource:  "close",
			Parallelism:  4,
		})
		q := query("2024-01-01", "2024-01-02")

		// Execute
		want, err1 := sequential.PortfolioPerformance(context.Background(), p.ID, q)
		got, err2 := parallel.PortfolioPerformance(context.Background(), p.ID, q)

		// Assert
		if err1 != nil || err2 != nil {
			t.Fatalf("Unexpected errors: %v, %v", err1, err2)
		}
		for i := range want.Holdings {
			if want.Holdings[i].Total.ReturnValue != got.Holdings[i].Total.ReturnValue {
				t.Errorf("Holding %d differs: %v vs %v", i,
					want.Holdings[i].Total.ReturnValue, got.Holdings[i].Total.ReturnValue)
			}
		}
	})

	t.Run("error cases", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPerformanceService(t, db)
		p := seedGrowth(t, db).portfolio

		tests := []struct {
			name        string
			portfolioID string
			q           model.PerformanceQuery
			want        error
		}{
			{"unknown portfolio", testutil.MakeID(), query("2024-01-01", "2024-01-02"), apperrors.ErrPortfolioNotFound},
			{"start after end", p.ID, query("2024-01-02", "2024-01-01"), apperrors.ErrInvalidDateRange},
			{"weekend only", p.ID, query("2024-01-05", "2024-01-07"), apperrors.ErrEmptyDateSequence},
			{
				"missing rates", p.ID,
				model.PerformanceQuery{
					StartDate: testutil.Date("2024-01-01"),
					EndDate:   testutil.Date("2024-01-02"),
					Currency:  "GBP",
				},
				apperrors.ErrExchangeRateNotFound,
			},
			{
				"unknown currency", p.ID,
				model.PerformanceQuery{
					StartDate: testutil.Date("2024-01-01"),
					EndDate:   testutil.Date("2024-01-02"),
					Currency:  "XYZ",
				},
				apperrors.ErrInvalidCurrency,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.PortfolioPerformance(context.Background(), tt.portfolioID, tt.q)
				if !errors.Is(err, tt.want) {
					t.Errorf("Expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPerformanceService(t, db)
		p := seedGrowth(t, db).portfolio
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Execute
		_, err := svc.PortfolioPerformance(ctx, p.ID, query("2024-01-01", "2024-01-02"))

		// Assert
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

// TestPerformanceService_HoldingPerformance tests standalone holding calculations.
//
// WHY: A foreign fund with a flat price must attribute its whole return to
// the exchange rate, and the caller may ask for any valuation currency.
func TestPerformanceService_HoldingPerformance(t *testing.T) {
	t.Run("attributes a currency move", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPerformanceService(t, db)
		beta := seedGrowth(t, db).beta.ID

		// Execute
		perf, err := svc.HoldingPerformance(context.Background(), beta, query("2024-01-01", "2024-01-02"))

		// Assert
		if err != nil {
			t.Fatalf("HoldingPerformance() returned unexpected error: %v", err)
		}
		if !almostEqual(perf.Total.ReturnPercent, 20.0/18.0-1) {
			t.Errorf("Expected total return %v, got %v", 20.0/18.0-1, perf.Total.ReturnPercent)
		}
		if !almostEqual(perf.Price.ReturnPercent, 0) {
			t.Errorf("Expected no price return, got %v", perf.Price.ReturnPercent)
		}
		if !almostEqual(perf.Fx.ReturnValue, perf.Total.ReturnValue) {
			t.Errorf("Expected currency to explain %v, got %v", perf.Total.ReturnValue, perf.Fx.ReturnValue)
		}
		if perf.Contribution != nil {
			t.Error("Expected no contribution for a standalone holding")
		}
	})

	t.Run("native currency", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPerformanceService(t, db)
		beta := seedGrowth(t, db).beta.ID
		q := query("2024-01-01", "2024-01-02")
		q.Currency = "usd"

		// Execute
		perf, err := svc.HoldingPerformance(context.Background(), beta, q)

		// Assert
		if err != nil {
			t.Fatalf("HoldingPerformance() returned unexpected error: %v", err)
		}
		if perf.Currency != "USD" {
			t.Errorf("Expected currency USD, got %s", perf.Currency)
		}
		if !almostEqual(perf.Total.ReturnPercent, 0) {
			t.Errorf("Expected flat return in USD, got %v", perf.Total.ReturnPercent)
		}
	})

	t.Run("unknown fund", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPerformanceService(t, db)

		_, err := svc.HoldingPerformance(context.Background(), testutil.MakeID(), query("2024-01-01", "2024-01-02"))

		if !errors.Is(err, apperrors.ErrFundNotFound) {
			t.Errorf("Expected ErrFundNotFound, got %v", err)
		}
	})
}

// TestPerformanceService_FactorPerformance tests compounding of factor returns.
//
// WHY: Factor series come with their own published returns; the service must
// compound those rather than recompute them from levels.
func TestPerformanceService_FactorPerformance(t *testing.T) {
	t.Run("compounds published returns", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPerformanceService(t, db)
		testutil.CreateFactorValue(t, db, "MKT", testutil.Date("2024-01-01"), 100, 0)
		testutil.CreateFactorValue(t, db, "MKT", testutil.Date("2024-01-02"), 101, 0.01)
		testutil.CreateFactorValue(t, db, "MKT", testutil.Date("2024-01-03"), 103.02, 0.02)

		// Execute
		perf, err := svc.FactorPerformance(context.Background(), "MKT", query("2024-01-01", "2024-01-03"))

		// Assert
		if err != nil {
			t.Fatalf("FactorPerformance() returned unexpected error: %v", err)
		}
		if !almostEqual(perf.ReturnPercent, 1.01*1.02-1) {
			t.Errorf("Expected %v, got %v", 1.01*1.02-1, perf.ReturnPercent)
		}
		if len(perf.Returns) != 2 {
			t.Errorf("Expected 2 daily returns, got %d", len(perf.Returns))
		}
	})

	t.Run("unknown factor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPerformanceService(t, db)

		_, err := svc.FactorPerformance(context.Background(), "HML", query("2024-01-01", "2024-01-03"))

		if !errors.Is(err, apperrors.ErrFactorNotFound) {
			t.Errorf("Expected ErrFactorNotFound, got %v", err)
		}
	})

	t.Run("missing day", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPerformanceService(t, db)
		testutil.CreateFactorValue(t, db, "MKT", testutil.Date("2024-01-01"), 100, 0)
		testutil.CreateFactorValue(t, db, "MKT", testutil.Date("2024-01-03"), 102, 0.02)

		// Execute
		_, err := svc.FactorPerformance(context.Background(), "MKT", query("2024-01-01", "2024-01-03"))

		// Assert
		if !errors.Is(err, apperrors.ErrFactorValueNotFound) {
			t.Errorf("Expected ErrFactorValueNotFound, got %v", err)
		}
	})
}
