package performance

import "time"

// HoldingPerformance is the total return of one holding split into a price
// contribution and a currency contribution.
type HoldingPerformance struct {
	Holding  Holding
	Currency string
	Source   string

	Total Performance
	Price Performance
	Fx    Performance
	// Contribution is the holding's weighted share of its portfolio's return.
	// It is nil for a standalone holding.
	Contribution *Performance

	total        Provider
	price        Provider
	fx           Provider
	contribution Provider
}

// NewHoldingPerformance prepares the performance of one unit of holding,
// converted into currency.
func NewHoldingPerformance(registry *Registry, holding Holding, currency, source string) *HoldingPerformance {
	fxPrice := registry.FxPrice(holding, currency, source)
	h := &HoldingPerformance{
		Holding:  holding,
		Currency: currency,
		Source:   source,
	}
	h.attribute(fxPrice, fxPrice.PriceComponent(), fxPrice.FxComponent())
	return h
}

// NewPortfolioHoldingPerformance prepares the performance of holding as held
// by portfolio. Dates on which the holding is not held contribute nothing.
func NewPortfolioHoldingPerformance(registry *Registry, portfolio string, holding Holding, currency, source string) *HoldingPerformance {
	held := registry.Holding(portfolio, holding, currency, source)
	fxPrice := registry.FxPrice(holding, currency, source)
	h := &HoldingPerformance{
		Holding:      holding,
		Currency:     currency,
		Source:       source,
		Contribution: &Performance{},
		contribution: NewWeightedReturnProvider(held, held.Weights()),
	}
	h.attribute(held, held.Held(fxPrice.PriceComponent()), held.Held(fxPrice.FxComponent()))
	return h
}

func (h *HoldingPerformance) attribute(total, price, fx Provider) {
	components := []Provider{price, fx}
	h.total = total
	h.price = NewAttributionProvider(price, total, components)
	h.fx = NewAttributionProvider(fx, total, components)
}

// Calculate runs the total, price and currency passes over dates.
func (h *HoldingPerformance) Calculate(dates []time.Time) error {
	if err := h.Total.Calculate(dates, h.total); err != nil {
		return err
	}
	if err := h.Price.Calculate(dates, h.price); err != nil {
		return err
	}
	if err := h.Fx.Calculate(dates, h.fx); err != nil {
		return err
	}
	if h.Contribution != nil {
		return h.Contribution.Calculate(dates, h.contribution)
	}
	return nil
}
