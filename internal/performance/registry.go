package performance

import (
	"sync"
	"time"
)

type priceKey struct {
	holdingID string
	source    string
}

type fxKey struct {
	from string
	to   string
}

type fxPriceKey struct {
	holdingID string
	currency  string
	source    string
}

type portfolioKey struct {
	portfolio string
	currency  string
	source    string
}

type holdingKey struct {
	portfolio string
	holdingID string
	currency  string
	source    string
}

type compositionKey struct {
	portfolio string
	day       time.Time
}

// Registry owns the keyed providers of one calculation session. Asking twice
// for the same key returns the same instance, so every consumer of a series
// shares its cache. A Registry is safe for concurrent use.
type Registry struct {
	src Sources

	mu         sync.Mutex
	prices     map[priceKey]*PriceProvider
	fx         map[fxKey]*FxProvider
	fxPrices   map[fxPriceKey]*FxPriceProvider
	factors    map[string]*FactorProvider
	portfolios map[portfolioKey]*PortfolioProvider
	holdings   map[holdingKey]*HoldingProvider

	compMu       sync.Mutex
	compositions map[compositionKey][]Position
}

// NewRegistry creates an empty registry reading from src.
func NewRegistry(src Sources) *Registry {
	return &Registry{
		src:          src,
		prices:       make(map[priceKey]*PriceProvider),
		fx:           make(map[fxKey]*FxProvider),
		fxPrices:     make(map[fxPriceKey]*FxPriceProvider),
		factors:      make(map[string]*FactorProvider),
		portfolios:   make(map[portfolioKey]*PortfolioProvider),
		holdings:     make(map[holdingKey]*HoldingProvider),
		compositions: make(map[compositionKey][]Position),
	}
}

// getOrCreate runs create under mu, so create must not call back into the registry.
func getOrCreate[K comparable, V any](mu *sync.Mutex, m map[K]V, key K, create func() V) V {
	mu.Lock()
	defer mu.Unlock()
	if v, ok := m[key]; ok {
		return v
	}
	v := create()
	m[key] = v
	return v
}

// Price returns the price provider of holding for source.
func (r *Registry) Price(holding Holding, source string) *PriceProvider {
	return getOrCreate(&r.mu, r.prices, priceKey{holding.ID, source}, func() *PriceProvider {
		return newPriceProvider(holding, source, r.src.Prices, r.src.Calendar)
	})
}

// Fx returns the conversion rate provider from one currency to another.
func (r *Registry) Fx(from, to string) *FxProvider {
	return getOrCreate(&r.mu, r.fx, fxKey{from, to}, func() *FxProvider {
		return newFxProvider(from, to, r.src.Rates, r.src.Calendar)
	})
}

// FxPrice returns the provider of holding's price converted into currency.
func (r *Registry) FxPrice(holding Holding, currency, source string) *FxPriceProvider {
	price := r.Price(holding, source)
	fx := r.Fx(holding.Currency, currency)
	return getOrCreate(&r.mu, r.fxPrices, fxPriceKey{holding.ID, currency, source}, func() *FxPriceProvider {
		return newFxPriceProvider(holding, currency, source, price, fx)
	})
}

// Factor returns the provider of a risk factor's level series.
func (r *Registry) Factor(name string) *FactorProvider {
	return getOrCreate(&r.mu, r.factors, name, func() *FactorProvider {
		return newFactorProvider(name, r.src.Factors, r.src.Calendar)
	})
}

// Portfolio returns the aggregate provider of a named portfolio.
func (r *Registry) Portfolio(name, currency, source string) *PortfolioProvider {
	return getOrCreate(&r.mu, r.portfolios, portfolioKey{name, currency, source}, func() *PortfolioProvider {
		return newPortfolioProvider(name, currency, source, r)
	})
}

// Holding returns the provider of holding as held by the named portfolio.
func (r *Registry) Holding(portfolio string, holding Holding, currency, source string) *HoldingProvider {
	fxPrice := r.FxPrice(holding, currency, source)
	total := r.Portfolio(portfolio, currency, source)
	return getOrCreate(&r.mu, r.holdings, holdingKey{portfolio, holding.ID, currency, source}, func() *HoldingProvider {
		return newHoldingProvider(portfolio, holding, fxPrice, total, r)
	})
}

// Composition returns the positions of portfolio on date. Results are kept for
// the lifetime of the registry and must not be modified by callers.
func (r *Registry) Composition(date time.Time, portfolio string) ([]Position, error) {
	key := compositionKey{portfolio, Day(date)}

	r.compMu.Lock()
	positions, ok := r.compositions[key]
	r.compMu.Unlock()
	if ok {
		return positions, nil
	}

	positions, err := r.src.Compositions.Composition(key.day, portfolio)
	if err != nil {
		return nil, err
	}

	r.compMu.Lock()
	defer r.compMu.Unlock()
	if cached, ok := r.compositions[key]; ok {
		return cached, nil
	}
	r.compositions[key] = positions
	return positions, nil
}

func (r *Registry) previousBusinessDay(date time.Time) time.Time {
	return Day(r.src.Calendar.AddBusinessDays(date, -1))
}
