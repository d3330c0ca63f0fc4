package performance

import "time"

// Holding identifies an instrument and its native currency.
type Holding struct {
	ID       string
	Name     string
	ISIN     string
	Currency string
}

// Position is a holding and the amount held of it.
type Position struct {
	Holding Holding
	Amount  float64
}

// CompositionResolver returns the positions of a named portfolio on a date.
// It fails when the portfolio is unknown.
type CompositionResolver interface {
	Composition(date time.Time, portfolio string) ([]Position, error)
}

// PriceSource returns prices of a holding from a named price source.
type PriceSource interface {
	CleanPrice(holdingID string, date time.Time, source string) (float64, error)
	DirtyPrice(holdingID string, date time.Time, source string) (float64, error)
}

// CurrencyConverter returns the rate that converts one unit of from into to.
type CurrencyConverter interface {
	Convert(from, to string, date time.Time) (float64, error)
}

// FactorSource returns risk factor levels and the source's own return for a day.
type FactorSource interface {
	FactorValue(factor string, date time.Time) (float64, error)
	FactorReturn(factor string, date time.Time) (float64, error)
}

// Calendar moves a date by n business days; n may be negative.
type Calendar interface {
	AddBusinessDays(date time.Time, n int) time.Time
}

// Sources bundles the collaborators a Registry hands to its providers.
// Collaborators a calculation never reaches may be left nil.
type Sources struct {
	Compositions CompositionResolver
	Prices       PriceSource
	Rates        CurrencyConverter
	Factors      FactorSource
	Calendar     Calendar
}
