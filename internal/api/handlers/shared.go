package handlers

import (
	"errors"
	"math"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-performance/internal/api/response"
	"github.com/ndewijer/portfolio-performance/internal/apperrors"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	response.RespondJSON(w, status, data)
}

// respondServiceError maps a service error onto an HTTP status.
//
//   - unknown portfolio, fund or factor: 404
//   - malformed or inconsistent request parameters: 400
//   - market data missing for a date of the period: 422
//   - anything else: 500
func respondServiceError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrPortfolioNotFound),
		errors.Is(err, apperrors.ErrFundNotFound),
		errors.Is(err, apperrors.ErrFactorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrInvalidUUID),
		errors.Is(err, apperrors.ErrInvalidCurrency),
		errors.Is(err, apperrors.ErrInvalidParameter),
		errors.Is(err, apperrors.ErrEmptyDateSequence):
		status = http.StatusBadRequest
	case apperrors.IsMarketDataMissing(err):
		status = http.StatusUnprocessableEntity
	}
	response.RespondError(w, status, message, err.Error())
}

// number returns v, or nil when v is not a number JSON can carry.
func number(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// amount rounds a money value to cents.
func amount(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	rounded := decimal.NewFromFloat(v).Round(2).InexactFloat64()
	return &rounded
}
