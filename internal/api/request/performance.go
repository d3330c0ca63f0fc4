package request

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-performance/internal/apperrors"
	"github.com/ndewijer/portfolio-performance/internal/model"
	"github.com/ndewijer/portfolio-performance/internal/validation"
)

// DefaultPeriod is the length of the period when start_date is omitted.
const DefaultPeriod = 1 // months

var sourcePattern = regexp.MustCompile(`^[a-z0-9_-]{1,20}$`)

// ParsePerformanceQuery extracts a performance query from query parameters.
// All parameters are optional.
//
// Validation rules:
//   - end_date: YYYY-MM-DD or RFC3339, defaults to today
//   - start_date: YYYY-MM-DD or RFC3339, defaults to one month before end_date;
//     must lie before end_date
//   - currency: ISO 4217 code, empty means the configured base currency
//   - source: lower-case price source name, empty means the configured default
func ParsePerformanceQuery(startParam, endParam, currencyParam, sourceParam string, now time.Time) (model.PerformanceQuery, error) {
	var q model.PerformanceQuery
	var err error

	q.EndDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if endParam != "" {
		if q.EndDate, err = validation.ParseTime(endParam); err != nil {
			return q, fmt.Errorf("invalid end_date: %w", err)
		}
	}

	q.StartDate = q.EndDate.AddDate(0, -DefaultPeriod, 0)
	if startParam != "" {
		if q.StartDate, err = validation.ParseTime(startParam); err != nil {
			return q, fmt.Errorf("invalid start_date: %w", err)
		}
	}

	if err := validation.ValidatePeriod(q.StartDate, q.EndDate); err != nil {
		return q, err
	}

	if currencyParam != "" {
		if q.Currency, err = validation.ValidateCurrency(currencyParam); err != nil {
			return q, err
		}
	}

	if sourceParam != "" {
		source := strings.ToLower(strings.TrimSpace(sourceParam))
		if !sourcePattern.MatchString(source) {
			return q, fmt.Errorf("%w: invalid source %q", apperrors.ErrInvalidParameter, sourceParam)
		}
		q.Source = source
	}

	return q, nil
}
