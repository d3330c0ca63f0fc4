package model

import "time"

// Transaction types.
const (
	TransactionTypeBuy  = "buy"
	TransactionTypeSell = "sell"
)

// Transaction represents a buy or sell transaction for a portfolio fund.
type Transaction struct {
	ID              string    `json:"id"`
	PortfolioFundID string    `json:"portfolioFundId"`
	Date            time.Time `json:"date"`
	Type            string    `json:"type"`
	Shares          float64   `json:"shares"`
	CostPerShare    float64   `json:"costPerShare"`
}
