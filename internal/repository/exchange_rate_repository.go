package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ndewijer/portfolio-performance/internal/apperrors"
	"github.com/ndewijer/portfolio-performance/internal/model"
)

type rateKey struct {
	from, to string
	date     string
}

// ExchangeRateRepository provides data access methods for the exchange_rate
// table and converts between currencies for the performance engine.
// Resolved rates are kept in an LRU cache that is dropped on every write.
type ExchangeRateRepository struct {
	db    *sql.DB
	cache *lru.Cache[rateKey, float64]
}

// NewExchangeRateRepository creates a repository caching up to cacheSize resolved rates.
func NewExchangeRateRepository(db *sql.DB, cacheSize int) (*ExchangeRateRepository, error) {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[rateKey, float64](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate cache: %w", err)
	}
	return &ExchangeRateRepository{db: db, cache: cache}, nil
}

// Convert returns how many units of to one unit of from buys on date.
//
// Resolution order:
//   - identical currencies convert at 1
//   - the latest from/to rate dated on or before date
//   - the inverse of the latest to/from rate dated on or before date
//
// Returns ErrExchangeRateNotFound when neither direction has a rate.
func (r *ExchangeRateRepository) Convert(from, to string, date time.Time) (float64, error) {
	if from == to {
		return 1, nil
	}

	key := rateKey{from: from, to: to, date: date.Format("2006-01-02")}
	if rate, ok := r.cache.Get(key); ok {
		return rate, nil
	}

	rate, found, err := r.latestRate(from, to, key.date)
	if err != nil {
		return 0, err
	}
	if !found {
		inverse, ok, err := r.latestRate(to, from, key.date)
		if err != nil {
			return 0, err
		}
		if !ok || inverse == 0 {
			return 0, fmt.Errorf("%w: %s/%s on %s", apperrors.ErrExchangeRateNotFound, from, to, key.date)
		}
		rate = 1 / inverse
	}

	r.cache.Add(key, rate)
	return rate, nil
}

func (r *ExchangeRateRepository) latestRate(from, to, date string) (float64, bool, error) {
	query := `
        SELECT rate
        FROM exchange_rate
        WHERE from_currency = ?
        AND to_currency = ?
        AND date <= ?
        ORDER BY date DESC
        LIMIT 1
    `

	var rate float64
	err := r.db.QueryRow(query, from, to, date).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query exchange_rate table: %w", err)
	}
	return rate, true, nil
}

// UpsertExchangeRate stores a rate, replacing an existing one for the same
// currency pair and date.
func (r *ExchangeRateRepository) UpsertExchangeRate(ctx context.Context, rate *model.ExchangeRate) error {
	if rate.ID == "" {
		rate.ID = uuid.New().String()
	}

	query := `
        INSERT INTO exchange_rate (id, from_currency, to_currency, rate, date)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(from_currency, to_currency, date) DO UPDATE SET
            rate = excluded.rate
    `

	_, err := r.db.ExecContext(ctx, query,
		rate.ID,
		rate.FromCurrency,
		rate.ToCurrency,
		rate.Rate,
		rate.Date.Format("2006-01-02"),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert exchange_rate: %w", err)
	}

	r.cache.Purge()
	return nil
}

// CacheLen reports how many resolved rates are cached.
func (r *ExchangeRateRepository) CacheLen() int {
	return r.cache.Len()
}
