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

// FactorRepository provides data access methods for the risk_factor_value table.
// Unlike prices, factor values are never carried forward: each value comes
// with the source's return for that exact day.
type FactorRepository struct {
	db *sql.DB
}

// NewFactorRepository creates a new FactorRepository with the provided database connection.
func NewFactorRepository(db *sql.DB) *FactorRepository {
	return &FactorRepository{db: db}
}

// GetFactorValue returns the stored value of factor on date.
// Returns ErrFactorValueNotFound if there is none.
func (r *FactorRepository) GetFactorValue(factor string, date time.Time) (model.FactorValue, error) {
	query := `
        SELECT id, factor, value, return_pct
        FROM risk_factor_value
        WHERE factor = ?
        AND date = ?
    `

	v := model.FactorValue{Date: date}
	err := r.db.QueryRow(query, factor, date.Format("2006-01-02")).Scan(
		&v.ID,
		&v.Factor,
		&v.Value,
		&v.ReturnPct,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FactorValue{}, fmt.Errorf("%w: %s on %s",
			apperrors.ErrFactorValueNotFound, factor, date.Format("2006-01-02"))
	}
	if err != nil {
		return model.FactorValue{}, fmt.Errorf("failed to query risk_factor_value table: %w", err)
	}

	return v, nil
}

// FactorValue returns the level of factor on date.
func (r *FactorRepository) FactorValue(factor string, date time.Time) (float64, error) {
	v, err := r.GetFactorValue(factor, date)
	if err != nil {
		return 0, err
	}
	return v.Value, nil
}

// FactorReturn returns the return published for factor on date.
func (r *FactorRepository) FactorReturn(factor string, date time.Time) (float64, error) {
	v, err := r.GetFactorValue(factor, date)
	if err != nil {
		return 0, err
	}
	return v.ReturnPct, nil
}

// GetFactors returns the names of all factors with stored values.
func (r *FactorRepository) GetFactors() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT factor FROM risk_factor_value ORDER BY factor ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk_factor_value table: %w", err)
	}
	defer rows.Close()

	factors := []string{}
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("failed to scan risk_factor_value results: %w", err)
		}
		factors = append(factors, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating risk_factor_value table: %w", err)
	}

	return factors, nil
}

// FactorExists reports whether any value is stored for factor.
func (r *FactorRepository) FactorExists(factor string) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM risk_factor_value WHERE factor = ?`, factor).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query risk_factor_value table: %w", err)
	}
	return n > 0, nil
}

// UpsertFactorValue stores a factor value, replacing an existing one for the same day.
func (r *FactorRepository) UpsertFactorValue(ctx context.Context, v *model.FactorValue) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}

	query := `
        INSERT INTO risk_factor_value (id, factor, date, value, return_pct)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(factor, date) DO UPDATE SET
            value = excluded.value,
            return_pct = excluded.return_pct
    `

	_, err := r.db.ExecContext(ctx, query,
		v.ID,
		v.Factor,
		v.Date.Format("2006-01-02"),
		v.Value,
		v.ReturnPct,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert risk_factor_value: %w", err)
	}

	return nil
}
