package performance

import (
	"fmt"
	"math"
	"time"
)

// FxPriceProvider is a holding's price expressed in a target currency.
type FxPriceProvider struct {
	*memo
	Holding  Holding
	Currency string
	Source   string

	price *PriceProvider
	fx    *FxProvider
}

func newFxPriceProvider(holding Holding, currency, source string, price *PriceProvider, fx *FxProvider) *FxPriceProvider {
	p := &FxPriceProvider{
		Holding:  holding,
		Currency: currency,
		Source:   source,
		price:    price,
		fx:       fx,
	}
	p.memo = newMemo(p.calculate)
	return p
}

// PriceComponent is the native-currency price leaf.
func (p *FxPriceProvider) PriceComponent() *PriceProvider { return p.price }

// FxComponent is the conversion leaf from the holding currency into the target currency.
func (p *FxPriceProvider) FxComponent() *FxProvider { return p.fx }

func (p *FxPriceProvider) calculate(date time.Time) (*ReturnRecord, error) {
	price, err := p.price.Return(date)
	if err != nil {
		return nil, err
	}
	fx, err := p.fx.Return(date)
	if err != nil {
		return nil, err
	}
	return NewReturnRecord(date, price.InitialValue*fx.InitialValue, price.FinalValue*fx.FinalValue), nil
}

// AmountSource supplies a position size per date.
type AmountSource interface {
	Amount(date time.Time) (float64, error)
}

// AmountProvider scales the valuations of a base provider by a position size.
// Undefined base valuations count as zero so one bad day cannot turn an
// aggregate sum into NaN. Base is not consulted on dates with a zero amount.
type AmountProvider struct {
	*memo

	base    Provider
	amounts AmountSource
}

// NewAmountProvider scales base by the amounts supplied for each date.
func NewAmountProvider(base Provider, amounts AmountSource) *AmountProvider {
	p := &AmountProvider{
		base:    base,
		amounts: amounts,
	}
	p.memo = newMemo(p.calculate)
	return p
}

func (p *AmountProvider) calculate(date time.Time) (*ReturnRecord, error) {
	amount, err := p.amounts.Amount(date)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return NewReturnRecord(date, 0, 0), nil
	}
	rec, err := p.base.Return(date)
	if err != nil {
		return nil, err
	}
	return NewReturnRecord(date, coalesce(rec.InitialValue)*amount, coalesce(rec.FinalValue)*amount), nil
}

// PortfolioProvider is the aggregate value of a named portfolio in a target
// currency. The composition held at the close of the previous business day is
// valued with each holding's FxPriceProvider.
type PortfolioProvider struct {
	*memo
	Portfolio string
	Currency  string
	Source    string

	registry *Registry
}

func newPortfolioProvider(portfolio, currency, source string, registry *Registry) *PortfolioProvider {
	p := &PortfolioProvider{
		Portfolio: portfolio,
		Currency:  currency,
		Source:    source,
		registry:  registry,
	}
	p.memo = newMemo(p.calculate)
	return p
}

func (p *PortfolioProvider) calculate(date time.Time) (*ReturnRecord, error) {
	positions, err := p.registry.Composition(p.registry.previousBusinessDay(date), p.Portfolio)
	if err != nil {
		return nil, fmt.Errorf("composition of %s: %w", p.Portfolio, err)
	}

	var initial, final float64
	for _, pos := range positions {
		rec, err := p.registry.FxPrice(pos.Holding, p.Currency, p.Source).Return(date)
		if err != nil {
			return nil, err
		}
		initial += pos.Amount * coalesce(rec.InitialValue)
		final += pos.Amount * coalesce(rec.FinalValue)
	}
	return NewReturnRecord(date, initial, final), nil
}

// AttributionProvider attributes part of a total return to one component.
//
// For each date the component keeps its own valuations and percent return,
// while its money return is rescaled so the components add up to the total:
//
//	proportion = totalPct / sum(componentPct)
//	value      = componentPct * totalInitial * proportion
//
// A zero sum gives a NaN proportion and a NaN money return.
type AttributionProvider struct {
	*memo

	component  Provider
	total      Provider
	components []Provider
}

// NewAttributionProvider attributes total to component, where components is
// the full set of components total is decomposed into.
func NewAttributionProvider(component, total Provider, components []Provider) *AttributionProvider {
	p := &AttributionProvider{
		component:  component,
		total:      total,
		components: components,
	}
	p.memo = newMemo(p.calculate)
	return p
}

func (p *AttributionProvider) calculate(date time.Time) (*ReturnRecord, error) {
	total, err := p.total.Return(date)
	if err != nil {
		return nil, err
	}

	var sum float64
	for _, c := range p.components {
		pct, err := ReturnPercent(c, date)
		if err != nil {
			return nil, err
		}
		sum += pct
	}

	own, err := p.component.Return(date)
	if err != nil {
		return nil, err
	}

	proportion := math.NaN()
	if sum != 0 {
		proportion = total.ReturnPercent / sum
	}
	value := own.ReturnPercent * total.InitialValue * proportion
	return NewReturnRecordWithReturns(date, own.InitialValue, own.FinalValue, own.ReturnPercent, value), nil
}
