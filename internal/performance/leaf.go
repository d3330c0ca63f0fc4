package performance

import (
	"fmt"
	"time"
)

// PriceProvider is the price series of one holding from one price source.
// The initial value is the clean price on the previous business day and the
// final value the dirty price on the day itself.
type PriceProvider struct {
	*memo
	Holding Holding
	Source  string

	prices   PriceSource
	calendar Calendar
}

func newPriceProvider(holding Holding, source string, prices PriceSource, calendar Calendar) *PriceProvider {
	p := &PriceProvider{
		Holding:  holding,
		Source:   source,
		prices:   prices,
		calendar: calendar,
	}
	p.memo = newMemo(p.calculate)
	return p
}

func (p *PriceProvider) calculate(date time.Time) (*ReturnRecord, error) {
	prev := Day(p.calendar.AddBusinessDays(date, -1))

	clean, err := p.prices.CleanPrice(p.Holding.ID, prev, p.Source)
	if err != nil {
		return nil, fmt.Errorf("clean price of %s on %s: %w", p.Holding.ID, prev.Format(time.DateOnly), err)
	}
	dirty, err := p.prices.DirtyPrice(p.Holding.ID, date, p.Source)
	if err != nil {
		return nil, fmt.Errorf("dirty price of %s on %s: %w", p.Holding.ID, date.Format(time.DateOnly), err)
	}
	return NewReturnRecord(date, clean, dirty), nil
}

// FxProvider is the conversion rate series between two currencies.
type FxProvider struct {
	*memo
	From string
	To   string

	rates    CurrencyConverter
	calendar Calendar
}

func newFxProvider(from, to string, rates CurrencyConverter, calendar Calendar) *FxProvider {
	p := &FxProvider{
		From:     from,
		To:       to,
		rates:    rates,
		calendar: calendar,
	}
	p.memo = newMemo(p.calculate)
	return p
}

func (p *FxProvider) calculate(date time.Time) (*ReturnRecord, error) {
	prev := Day(p.calendar.AddBusinessDays(date, -1))

	initial, err := p.rates.Convert(p.From, p.To, prev)
	if err != nil {
		return nil, fmt.Errorf("rate %s/%s on %s: %w", p.From, p.To, prev.Format(time.DateOnly), err)
	}
	final, err := p.rates.Convert(p.From, p.To, date)
	if err != nil {
		return nil, fmt.Errorf("rate %s/%s on %s: %w", p.From, p.To, date.Format(time.DateOnly), err)
	}
	return NewReturnRecord(date, initial, final), nil
}

// FactorProvider is the level series of a risk factor. The percent return is
// taken from the factor source rather than derived from the levels, since
// sources may publish log or otherwise adjusted returns.
type FactorProvider struct {
	*memo
	Factor string

	factors  FactorSource
	calendar Calendar
}

func newFactorProvider(factor string, factors FactorSource, calendar Calendar) *FactorProvider {
	p := &FactorProvider{
		Factor:   factor,
		factors:  factors,
		calendar: calendar,
	}
	p.memo = newMemo(p.calculate)
	return p
}

func (p *FactorProvider) calculate(date time.Time) (*ReturnRecord, error) {
	prev := Day(p.calendar.AddBusinessDays(date, -1))

	initial, err := p.factors.FactorValue(p.Factor, prev)
	if err != nil {
		return nil, fmt.Errorf("factor %s on %s: %w", p.Factor, prev.Format(time.DateOnly), err)
	}
	final, err := p.factors.FactorValue(p.Factor, date)
	if err != nil {
		return nil, fmt.Errorf("factor %s on %s: %w", p.Factor, date.Format(time.DateOnly), err)
	}
	ret, err := p.factors.FactorReturn(p.Factor, date)
	if err != nil {
		return nil, fmt.Errorf("factor return %s on %s: %w", p.Factor, date.Format(time.DateOnly), err)
	}
	return NewReturnRecordWithReturns(date, initial, final, ret, final-initial), nil
}
