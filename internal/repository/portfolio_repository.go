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
	"github.com/ndewijer/portfolio-performance/internal/performance"
)

// PortfolioRepository provides data access methods for the portfolio table and
// resolves the composition of a portfolio from its transactions.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// GetPortfolios retrieves portfolios from the database based on filter criteria.
// The filter allows control over whether archived and overview-excluded portfolios are included.
// Returns an empty slice if no portfolios match the filter criteria.
func (s *PortfolioRepository) GetPortfolios(filter model.PortfolioFilter) ([]model.Portfolio, error) {
	query := `
          SELECT id, name, COALESCE(description, ''), is_archived, exclude_from_overview
          FROM portfolio
          WHERE 1=1
      `
	var args []any

	if !filter.IncludeArchived {
		query += " AND is_archived = ?"
		args = append(args, 0)
	}

	if !filter.IncludeExcluded {
		query += " AND exclude_from_overview = ?"
		args = append(args, 0)
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}

	for rows.Next() {
		var p model.Portfolio

		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.IsArchived,
			&p.ExcludeFromOverview,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio table results: %w", err)
		}

		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolioOnID retrieves a single portfolio.
// Returns ErrPortfolioNotFound if no portfolio has the given ID.
func (s *PortfolioRepository) GetPortfolioOnID(portfolioID string) (model.Portfolio, error) {
	return s.getPortfolio("id", portfolioID)
}

// GetPortfolioByName retrieves a single portfolio by its unique name.
// Returns ErrPortfolioNotFound if no portfolio has the given name.
func (s *PortfolioRepository) GetPortfolioByName(name string) (model.Portfolio, error) {
	return s.getPortfolio("name", name)
}

func (s *PortfolioRepository) getPortfolio(column, value string) (model.Portfolio, error) {
	//#nosec G202 -- Safe: column is one of two constants chosen by the caller
	query := `
          SELECT id, name, COALESCE(description, ''), is_archived, exclude_from_overview
          FROM portfolio
          WHERE ` + column + ` = ?
      `
	var p model.Portfolio

	err := s.db.QueryRow(query, value).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.IsArchived,
		&p.ExcludeFromOverview,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio: %w", err)
	}

	return p, nil
}

// InsertPortfolio stores a new portfolio. An empty ID is replaced by a new UUID.
func (s *PortfolioRepository) InsertPortfolio(ctx context.Context, p *model.Portfolio) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	query := `
        INSERT INTO portfolio (id, name, description, is_archived, exclude_from_overview)
        VALUES (?, ?, ?, ?, ?)
    `

	_, err := s.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.IsArchived,
		p.ExcludeFromOverview,
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}

	return nil
}

// Composition returns the positions of the named portfolio at the end of date.
// The amount of each fund is the number of shares bought minus the number sold
// in transactions dated on or before date; funds with no remaining shares are
// left out. Positions are ordered by fund name.
//
// Returns ErrPortfolioNotFound if no portfolio has the given name.
func (s *PortfolioRepository) Composition(date time.Time, portfolioName string) ([]performance.Position, error) {
	if _, err := s.GetPortfolioByName(portfolioName); err != nil {
		return nil, err
	}

	query := `
        SELECT f.id, f.name, f.isin, f.currency,
               SUM(CASE WHEN t.type = 'sell' THEN -t.shares ELSE t.shares END) AS amount
        FROM portfolio p
        INNER JOIN portfolio_fund pf ON pf.portfolio_id = p.id
        INNER JOIN fund f ON f.id = pf.fund_id
        INNER JOIN "transaction" t ON t.portfolio_fund_id = pf.id
        WHERE p.name = ?
        AND t.date <= ?
        GROUP BY f.id, f.name, f.isin, f.currency
        HAVING ABS(amount) > 1e-9
        ORDER BY f.name ASC, f.id ASC
    `

	rows, err := s.db.Query(query, portfolioName, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio composition: %w", err)
	}
	defer rows.Close()

	positions := []performance.Position{}

	for rows.Next() {
		var pos performance.Position

		err := rows.Scan(
			&pos.Holding.ID,
			&pos.Holding.Name,
			&pos.Holding.ISIN,
			&pos.Holding.Currency,
			&pos.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio composition: %w", err)
		}

		positions = append(positions, pos)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio composition: %w", err)
	}

	return positions, nil
}
