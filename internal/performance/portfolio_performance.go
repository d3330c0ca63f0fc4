package performance

import (
	"time"

	"golang.org/x/sync/errgroup"
)

// PortfolioPerformance is the aggregate performance of a named portfolio and
// the performance of every holding it held during the period.
type PortfolioPerformance struct {
	Portfolio string
	Currency  string
	Source    string

	Total    Performance
	Holdings []*HoldingPerformance

	// Parallelism bounds how many holdings are calculated at once.
	// Values below 2 calculate holdings one after another.
	Parallelism int

	registry *Registry
}

// NewPortfolioPerformance prepares the performance of portfolio in currency.
func NewPortfolioPerformance(registry *Registry, portfolio, currency, source string) *PortfolioPerformance {
	return &PortfolioPerformance{
		Portfolio: portfolio,
		Currency:  currency,
		Source:    source,
		registry:  registry,
	}
}

// Calculate computes the aggregate over dates, then one HoldingPerformance per
// distinct holding seen in any composition of the period, in first-seen order.
func (p *PortfolioPerformance) Calculate(dates []time.Time) error {
	if err := p.Total.Calculate(dates, p.registry.Portfolio(p.Portfolio, p.Currency, p.Source)); err != nil {
		return err
	}

	holdings, err := p.holdingsInPeriod(dates)
	if err != nil {
		return err
	}

	p.Holdings = make([]*HoldingPerformance, len(holdings))
	for i, holding := range holdings {
		p.Holdings[i] = NewPortfolioHoldingPerformance(p.registry, p.Portfolio, holding, p.Currency, p.Source)
	}

	if p.Parallelism < 2 {
		for _, h := range p.Holdings {
			if err := h.Calculate(dates); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(p.Parallelism)
	for _, h := range p.Holdings {
		g.Go(func() error {
			return h.Calculate(dates)
		})
	}
	return g.Wait()
}

func (p *PortfolioPerformance) holdingsInPeriod(dates []time.Time) ([]Holding, error) {
	seen := make(map[string]struct{})
	var holdings []Holding
	for _, date := range dates {
		positions, err := p.registry.Composition(p.registry.previousBusinessDay(date), p.Portfolio)
		if err != nil {
			return nil, err
		}
		for _, pos := range positions {
			if _, ok := seen[pos.Holding.ID]; ok {
				continue
			}
			seen[pos.Holding.ID] = struct{}{}
			holdings = append(holdings, pos.Holding)
		}
	}
	return holdings, nil
}
