package model

// Portfolio represents a portfolio from the database
type Portfolio struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	IsArchived          bool   `json:"isArchived"`
	ExcludeFromOverview bool   `json:"exclude_from_overview"`
}

// PortfolioFilter for querying portfolios
type PortfolioFilter struct {
	IncludeArchived bool
	IncludeExcluded bool
}

// PortfolioFund links a fund to a portfolio.
type PortfolioFund struct {
	ID          string
	PortfolioID string
	FundID      string
}
