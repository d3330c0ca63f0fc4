package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID or name does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrFundNotFound indicates that a fund with the given ID does not exist.
	ErrFundNotFound = errors.New("fund not found")

	// ErrFactorNotFound indicates that no values are stored for a risk factor.
	ErrFactorNotFound = errors.New("risk factor not found")
)

// Market data errors indicate that a collaborator could not supply a value
// for a date. They abort the calculation that needed the value.
var (
	// ErrFundPriceNotFound indicates no price for a fund, source and date combination.
	ErrFundPriceNotFound = errors.New("fund price not found")

	// ErrExchangeRateNotFound indicates no record for a specific currency and date combination
	ErrExchangeRateNotFound = errors.New("exchange rate for currency/date not found")

	// ErrFactorValueNotFound indicates no value for a risk factor on a date.
	ErrFactorValueNotFound = errors.New("risk factor value not found")
)

// Request errors represent validation failures of caller supplied input.
var (
	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidDate indicates a date that could not be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrInvalidCurrency indicates a currency code that is not ISO 4217.
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrInvalidParameter indicates a malformed query parameter.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEmptyDateSequence indicates a period without any business day to evaluate.
	ErrEmptyDateSequence = errors.New("period contains no business days")
)

// IsMarketDataMissing reports whether err stems from a missing price, rate or factor value.
func IsMarketDataMissing(err error) bool {
	return errors.Is(err, ErrFundPriceNotFound) ||
		errors.Is(err, ErrExchangeRateNotFound) ||
		errors.Is(err, ErrFactorValueNotFound)
}
