package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-performance/internal/apperrors"
	"github.com/ndewijer/portfolio-performance/internal/model"
)

// FundRepository provides data access methods for fund and fund_price tables.
// It handles retrieving fund metadata and serves prices to the performance engine.
type FundRepository struct {
	db *sql.DB
}

// NewFundRepository creates a new FundRepository with the provided database connection.
func NewFundRepository(db *sql.DB) *FundRepository {
	return &FundRepository{db: db}
}

// GetFund retrieves a single fund.
// Returns ErrFundNotFound if no fund has the given ID.
func (r *FundRepository) GetFund(fundID string) (model.Fund, error) {
	query := `
        SELECT id, name, isin, COALESCE(symbol, ''), currency, exchange
        FROM fund
        WHERE id = ?
      `

	var f model.Fund
	err := r.db.QueryRow(query, fundID).Scan(
		&f.ID,
		&f.Name,
		&f.Isin,
		&f.Symbol,
		&f.Currency,
		&f.Exchange,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Fund{}, apperrors.ErrFundNotFound
	}
	if err != nil {
		return model.Fund{}, fmt.Errorf("failed to query fund table: %w", err)
	}

	return f, nil
}

// GetFunds retrieves all funds ordered by name.
// Returns an empty slice if no funds are found.
func (r *FundRepository) GetFunds() ([]model.Fund, error) {
	query := `
        SELECT id, name, isin, COALESCE(symbol, ''), currency, exchange
        FROM fund
        ORDER BY name ASC
      `

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund table: %w", err)
	}
	defer rows.Close()

	funds := []model.Fund{}

	for rows.Next() {
		var f model.Fund
		if err := rows.Scan(&f.ID, &f.Name, &f.Isin, &f.Symbol, &f.Currency, &f.Exchange); err != nil {
			return nil, fmt.Errorf("failed to scan fund table results: %w", err)
		}
		funds = append(funds, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund table: %w", err)
	}

	return funds, nil
}

// InsertFund stores a new fund. An empty ID is replaced by a new UUID.
func (r *FundRepository) InsertFund(ctx context.Context, f *model.Fund) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	query := `
        INSERT INTO fund (id, name, isin, symbol, currency, exchange)
        VALUES (?, ?, ?, ?, ?, ?)
    `

	_, err := r.db.ExecContext(ctx, query, f.ID, f.Name, f.Isin, f.Symbol, f.Currency, f.Exchange)
	if err != nil {
		return fmt.Errorf("failed to insert fund: %w", err)
	}

	return nil
}

// GetPriceOn returns the most recent price of a fund from a source dated on or
// before date. Funds are not quoted on every calendar day, so the last known
// quote carries forward.
//
// Returns ErrFundPriceNotFound if the fund has no quote from source up to date.
func (r *FundRepository) GetPriceOn(fundID string, date time.Time, source string) (model.FundPrice, error) {
	query := `
        SELECT id, fund_id, date, source, price, accrued_interest
        FROM fund_price
        WHERE fund_id = ?
        AND source = ?
        AND date <= ?
        ORDER BY date DESC
        LIMIT 1
    `

	var dateStr string
	var fp model.FundPrice

	err := r.db.QueryRow(query, fundID, source, date.Format("2006-01-02")).Scan(
		&fp.ID,
		&fp.FundID,
		&dateStr,
		&fp.Source,
		&fp.Price,
		&fp.AccruedInterest,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FundPrice{}, fmt.Errorf("%w: fund %s, source %s, date %s",
			apperrors.ErrFundPriceNotFound, fundID, source, date.Format("2006-01-02"))
	}
	if err != nil {
		return model.FundPrice{}, fmt.Errorf("failed to query fund_price table: %w", err)
	}

	fp.Date, err = ParseTime(dateStr)
	if err != nil {
		return model.FundPrice{}, err
	}

	return fp, nil
}

// CleanPrice returns the quoted price excluding accrued interest.
func (r *FundRepository) CleanPrice(fundID string, date time.Time, source string) (float64, error) {
	fp, err := r.GetPriceOn(fundID, date, source)
	if err != nil {
		return 0, err
	}
	return fp.Price, nil
}

// DirtyPrice returns the quoted price including accrued interest.
func (r *FundRepository) DirtyPrice(fundID string, date time.Time, source string) (float64, error) {
	fp, err := r.GetPriceOn(fundID, date, source)
	if err != nil {
		return 0, err
	}
	return fp.Dirty(), nil
}

// UpsertFundPrice stores a price, replacing an existing quote for the same
// fund, source and date.
func (r *FundRepository) UpsertFundPrice(ctx context.Context, fp *model.FundPrice) error {
	if fp.ID == "" {
		fp.ID = uuid.New().String()
	}
	if fp.Source == "" {
		fp.Source = "close"
	}

	query := `
        INSERT INTO fund_price (id, fund_id, date, source, price, accrued_interest)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(fund_id, source, date) DO UPDATE SET
            price = excluded.price,
            accrued_interest = excluded.accrued_interest
    `

	_, err := r.db.ExecContext(ctx, query,
		fp.ID,
		fp.FundID,
		fp.Date.Format("2006-01-02"),
		fp.Source,
		fp.Price,
		fp.AccruedInterest,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fund_price: %w", err)
	}

	return nil
}
