package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-performance/internal/model"
)

// TransactionRepository provides data access methods for the portfolio_fund
// and transaction tables. Transactions are the source of portfolio compositions.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// EnsurePortfolioFund returns the ID of the portfolio_fund row linking the
// portfolio to the fund, creating it when it does not exist yet.
func (s *TransactionRepository) EnsurePortfolioFund(ctx context.Context, portfolioID, fundID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM portfolio_fund WHERE portfolio_id = ? AND fund_id = ?`,
		portfolioID, fundID,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to query portfolio_fund: %w", err)
	}

	id = uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO portfolio_fund (id, portfolio_id, fund_id) VALUES (?, ?, ?)`,
		id, portfolioID, fundID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert portfolio_fund: %w", err)
	}

	return id, nil
}

// InsertTransaction stores a buy or sell. An empty ID is replaced by a new UUID.
func (s *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.Type = strings.ToLower(t.Type)
	if t.Type != model.TransactionTypeBuy && t.Type != model.TransactionTypeSell {
		return fmt.Errorf("invalid transaction type %q", t.Type)
	}

	query := `
        INSERT INTO "transaction" (id, portfolio_fund_id, date, type, shares, cost_per_share)
        VALUES (?, ?, ?, ?, ?, ?)
    `

	_, err := s.db.ExecContext(ctx, query,
		t.ID,
		t.PortfolioFundID,
		t.Date.Format("2006-01-02"),
		t.Type,
		t.Shares,
		t.CostPerShare,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}
