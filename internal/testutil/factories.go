package testutil

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-performance/internal/model"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    WithDescription("My description").
//	    Archived().
//	    Build(t, db)
type PortfolioBuilder struct {
	ID                  string
	Name                string
	Description         string
	IsArchived          bool
	ExcludeFromOverview bool
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:          MakeID(),
		Name:        MakePortfolioName("Test Portfolio"),
		Description: "Test description",
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithDescription sets a custom description.
func (b *PortfolioBuilder) WithDescription(desc string) *PortfolioBuilder {
	b.Description = desc
	return b
}

// Archived marks the portfolio as archived.
func (b *PortfolioBuilder) Archived() *PortfolioBuilder {
	b.IsArchived = true
	return b
}

// ExcludedFromOverview marks the portfolio as excluded from overview.
func (b *PortfolioBuilder) ExcludedFromOverview() *PortfolioBuilder {
	b.ExcludeFromOverview = true
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	query := `
		INSERT INTO portfolio (id, name, description, is_archived, exclude_from_overview)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.Description, b.IsArchived, b.ExcludeFromOverview)
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{
		ID:                  b.ID,
		Name:                b.Name,
		Description:         b.Description,
		IsArchived:          b.IsArchived,
		ExcludeFromOverview: b.ExcludeFromOverview,
	}
}

// Convenience functions

// CreatePortfolio creates a portfolio with the given name and default values.
//
// Example usage:
//
//	portfolio := testutil.CreatePortfolio(t, db, "My Portfolio")
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// CreatePortfolios creates multiple portfolios with unique names.
func CreatePortfolios(t *testing.T, db *sql.DB, count int) []model.Portfolio {
	t.Helper()

	portfolios := make([]model.Portfolio, count)
	for i := 0; i < count; i++ {
		portfolios[i] = NewPortfolio().Build(t, db)
	}
	return portfolios
}

// CreateArchivedPortfolio creates an archived portfolio.
func CreateArchivedPortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Archived().Build(t, db)
}

// FundBuilder provides a fluent interface for creating test funds.
//
// Example usage:
//
//	fund := testutil.NewFund().
//	    WithName("World Index").
//	    WithCurrency("USD").
//	    Build(t, db)
type FundBuilder struct {
	ID       string
	Name     string
	ISIN     string
	Symbol   string
	Currency string
	Exchange string
}

// NewFund creates a FundBuilder with sensible defaults.
func NewFund() *FundBuilder {
	return &FundBuilder{
		ID:       MakeID(),
		Name:     MakeFundName("Test Fund"),
		ISIN:     MakeISIN("US"),
		Symbol:   MakeSymbol("TEST"),
		Currency: "EUR",
		Exchange: "XETRA",
	}
}

// WithID sets a custom ID.
func (b *FundBuilder) WithID(id string) *FundBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *FundBuilder) WithName(name string) *FundBuilder {
	b.Name = name
	return b
}

// WithISIN sets a custom ISIN.
func (b *FundBuilder) WithISIN(isin string) *FundBuilder {
	b.ISIN = isin
	return b
}

// WithCurrency sets the currency.
func (b *FundBuilder) WithCurrency(currency string) *FundBuilder {
	b.Currency = currency
	return b
}

// Build creates the fund in the database and returns it.
func (b *FundBuilder) Build(t *testing.T, db *sql.DB) model.Fund {
	t.Helper()

	query := `
		INSERT INTO fund (id, name, isin, symbol, currency, exchange)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.ISIN, b.Symbol, b.Currency, b.Exchange)
	if err != nil {
		t.Fatalf("Failed to create test fund: %v", err)
	}

	return model.Fund{
		ID:       b.ID,
		Name:     b.Name,
		Isin:     b.ISIN,
		Symbol:   b.Symbol,
		Currency: b.Currency,
		Exchange: b.Exchange,
	}
}

// CreateFund creates a fund with the given name and currency.
func CreateFund(t *testing.T, db *sql.DB, name, currency string) model.Fund {
	t.Helper()
	return NewFund().WithName(name).WithCurrency(currency).Build(t, db)
}

// PortfolioFundBuilder provides a fluent interface for creating portfolio-fund relationships
type PortfolioFundBuilder struct {
	ID          string
	PortfolioID string
	FundID      string
}

// NewPortfolioFund creates a PortfolioFundBuilder
func NewPortfolioFund(portfolioID, fundID string) *PortfolioFundBuilder {
	return &PortfolioFundBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		FundID:      fundID,
	}
}

// Build creates the portfolio_fund in the database
func (b *PortfolioFundBuilder) Build(t *testing.T, db *sql.DB) model.PortfolioFund {
	t.Helper()

	query := `
		INSERT INTO portfolio_fund (id, portfolio_id, fund_id)
		VALUES (?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.PortfolioID, b.FundID)
	if err != nil {
		t.Fatalf("Failed to create portfolio_fund: %v", err)
	}

	return model.PortfolioFund{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		FundID:      b.FundID,
	}
}

// TransactionBuilder provides a fluent interface for creating transactions
type TransactionBuilder struct {
	ID              string
	PortfolioFundID string
	Date            time.Time
	Type            string
	Shares          float64
	CostPerShare    float64
}

// NewTransaction creates a TransactionBuilder for a buy of 100 shares.
func NewTransaction(portfolioFundID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:              MakeID(),
		PortfolioFundID: portfolioFundID,
		Date:            time.Now().UTC(),
		Type:            model.TransactionTypeBuy,
		Shares:          100.0,
		CostPerShare:    10.0,
	}
}

// WithDate sets the transaction date
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// Sell turns the transaction into a sale.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Type = model.TransactionTypeSell
	return b
}

// WithShares sets the number of shares
func (b *TransactionBuilder) WithShares(shares float64) *TransactionBuilder {
	b.Shares = shares
	return b
}

// WithCostPerShare sets the cost per share
func (b *TransactionBuilder) WithCostPerShare(cost float64) *TransactionBuilder {
	b.CostPerShare = cost
	return b
}

// Build creates the transaction in the database
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO "transaction" (id, portfolio_fund_id, date, type, shares, cost_per_share)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.PortfolioFundID, b.Date.Format("2006-01-02"), b.Type, b.Shares, b.CostPerShare)
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	return model.Transaction{
		ID:              b.ID,
		PortfolioFundID: b.PortfolioFundID,
		Date:            b.Date,
		Type:            b.Type,
		Shares:          b.Shares,
		CostPerShare:    b.CostPerShare,
	}
}

// Buy links the fund to the portfolio and records a purchase of shares on date.
//
// Example usage:
//
//	testutil.Buy(t, db, portfolio.ID, fund.ID, testutil.Date("2024-01-02"), 10)
func Buy(t *testing.T, db *sql.DB, portfolioID, fundID string, date time.Time, shares float64) model.Transaction {
	t.Helper()
	pfID := ensurePortfolioFund(t, db, portfolioID, fundID)
	return NewTransaction(pfID).WithDate(date).WithShares(shares).Build(t, db)
}

// Sell records a sale of shares on date.
func Sell(t *testing.T, db *sql.DB, portfolioID, fundID string, date time.Time, shares float64) model.Transaction {
	t.Helper()
	pfID := ensurePortfolioFund(t, db, portfolioID, fundID)
	return NewTransaction(pfID).WithDate(date).WithShares(shares).Sell().Build(t, db)
}

func ensurePortfolioFund(t *testing.T, db *sql.DB, portfolioID, fundID string) string {
	t.Helper()

	var id string
	err := db.QueryRow(
		`SELECT id FROM portfolio_fund WHERE portfolio_id = ? AND fund_id = ?`,
		portfolioID, fundID,
	).Scan(&id)
	if err == nil {
		return id
	}
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("Failed to query portfolio_fund: %v", err)
	}
	return NewPortfolioFund(portfolioID, fundID).Build(t, db).ID
}

// FundPriceBuilder provides a fluent interface for creating fund prices
type FundPriceBuilder struct {
	ID              string
	FundID          string
	Date            time.Time
	Source          string
	Price           float64
	AccruedInterest float64
}

// NewFundPrice creates a FundPriceBuilder for a "close" quote.
func NewFundPrice(fundID string) *FundPriceBuilder {
	return &FundPriceBuilder{
		ID:     MakeID(),
		FundID: fundID,
		Date:   time.Now().UTC(),
		Source: "close",
		Price:  12.0,
	}
}

// WithDate sets the price date
func (b *FundPriceBuilder) WithDate(date time.Time) *FundPriceBuilder {
	b.Date = date
	return b
}

// WithPrice sets the price
func (b *FundPriceBuilder) WithPrice(price float64) *FundPriceBuilder {
	b.Price = price
	return b
}

// WithSource sets the price source
func (b *FundPriceBuilder) WithSource(source string) *FundPriceBuilder {
	b.Source = source
	return b
}

// WithAccruedInterest sets the interest added to the dirty price
func (b *FundPriceBuilder) WithAccruedInterest(interest float64) *FundPriceBuilder {
	b.AccruedInterest = interest
	return b
}

// Build creates the fund price in the database
func (b *FundPriceBuilder) Build(t *testing.T, db *sql.DB) model.FundPrice {
	t.Helper()

	query := `
		INSERT INTO fund_price (id, fund_id, date, source, price, accrued_interest)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.FundID, b.Date.Format("2006-01-02"), b.Source, b.Price, b.AccruedInterest)
	if err != nil {
		t.Fatalf("Failed to create fund price: %v", err)
	}

	return model.FundPrice{
		ID:              b.ID,
		FundID:          b.FundID,
		Date:            b.Date,
		Source:          b.Source,
		Price:           b.Price,
		AccruedInterest: b.AccruedInterest,
	}
}

// CreatePrices stores "close" prices of a fund, one per date in order.
func CreatePrices(t *testing.T, db *sql.DB, fundID string, dates []time.Time, prices ...float64) {
	t.Helper()
	if len(dates) != len(prices) {
		t.Fatalf("CreatePrices: %d dates for %d prices", len(dates), len(prices))
	}
	for i := range dates {
		NewFundPrice(fundID).WithDate(dates[i]).WithPrice(prices[i]).Build(t, db)
	}
}

// CreateExchangeRate stores one unit of from converting into rate units of to on date.
func CreateExchangeRate(t *testing.T, db *sql.DB, from, to string, date time.Time, rate float64) model.ExchangeRate {
	t.Helper()

	r := model.ExchangeRate{
		ID:           MakeID(),
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         rate,
		Date:         date,
	}

	query := `
		INSERT INTO exchange_rate (id, from_currency, to_currency, rate, date)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, r.ID, r.FromCurrency, r.ToCurrency, r.Rate, r.Date.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("Failed to create exchange rate: %v", err)
	}

	return r
}

// CreateFactorValue stores the level and published return of a risk factor on date.
func CreateFactorValue(t *testing.T, db *sql.DB, factor string, date time.Time, value, returnPct float64) model.FactorValue {
	t.Helper()

	v := model.FactorValue{
		ID:        MakeID(),
		Factor:    factor,
		Date:      date,
		Value:     value,
		ReturnPct: returnPct,
	}

	query := `
		INSERT INTO risk_factor_value (id, factor, date, value, return_pct)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, v.ID, v.Factor, v.Date.Format("2006-01-02"), v.Value, v.ReturnPct)
	if err != nil {
		t.Fatalf("Failed to create factor value: %v", err)
	}

	return v
}
