package model

import "time"

// Fund represents a fund from the database
type Fund struct {
	ID       string
	Name     string
	Isin     string
	Symbol   string
	Currency string
	Exchange string
}

// FundPrice is one quoted price of a fund. The dirty price adds the accrued
// interest to the quoted (clean) price.
type FundPrice struct {
	ID              string
	FundID          string
	Date            time.Time
	Source          string
	Price           float64
	AccruedInterest float64
}

// Dirty returns the price including accrued interest.
func (p FundPrice) Dirty() float64 {
	return p.Price + p.AccruedInterest
}
