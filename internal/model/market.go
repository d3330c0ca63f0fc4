package model

import "time"

// ExchangeRate converts one unit of FromCurrency into Rate units of ToCurrency.
type ExchangeRate struct {
	ID           string
	FromCurrency string
	ToCurrency   string
	Rate         float64
	Date         time.Time
}

// FactorValue is the level of a risk factor on a date together with the
// return published by its source.
type FactorValue struct {
	ID        string
	Factor    string
	Date      time.Time
	Value     float64
	ReturnPct float64
}
