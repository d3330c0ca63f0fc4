package performance

import (
	"fmt"
	"math"
	"time"
)

// HoldingProvider is one holding as held by one portfolio. The amount on a
// date is the position in the composition of the previous business day, the
// same composition PortfolioProvider values, and zero when the holding is absent.
// Its valuations are the holding's FxPriceProvider scaled by that amount.
type HoldingProvider struct {
	*AmountProvider
	Portfolio string
	Holding   Holding

	weights  *WeightProvider
	registry *Registry
}

func newHoldingProvider(portfolio string, holding Holding, fxPrice *FxPriceProvider, total *PortfolioProvider, registry *Registry) *HoldingProvider {
	p := &HoldingProvider{
		Portfolio: portfolio,
		Holding:   holding,
		registry:  registry,
	}
	p.AmountProvider = NewAmountProvider(fxPrice, p)
	p.weights = NewWeightProvider(p, total)
	return p
}

// Amount returns the position size held on date.
func (p *HoldingProvider) Amount(date time.Time) (float64, error) {
	positions, err := p.registry.Composition(p.registry.previousBusinessDay(date), p.Portfolio)
	if err != nil {
		return 0, fmt.Errorf("composition of %s: %w", p.Portfolio, err)
	}
	for _, pos := range positions {
		if pos.Holding.ID == p.Holding.ID {
			return pos.Amount, nil
		}
	}
	return 0, nil
}

// Weight returns the holding's share of the portfolio value on date.
func (p *HoldingProvider) Weight(date time.Time) (float64, error) {
	return p.weights.Weight(date)
}

// Weights exposes the weight series of the holding within its portfolio.
func (p *HoldingProvider) Weights() *WeightProvider { return p.weights }

// Held wraps base so that it reports an empty record on dates the holding is
// not part of the portfolio, without consulting base at all.
func (p *HoldingProvider) Held(base Provider) Provider {
	h := &heldProvider{base: base, holding: p}
	h.memo = newMemo(h.calculate)
	return h
}

type heldProvider struct {
	*memo

	base    Provider
	holding *HoldingProvider
}

func (p *heldProvider) calculate(date time.Time) (*ReturnRecord, error) {
	amount, err := p.holding.Amount(date)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return NewReturnRecord(date, 0, 0), nil
	}
	return p.base.Return(date)
}

// WeightProvider is the ratio of two value series.
type WeightProvider struct {
	part  Provider
	whole Provider
}

// NewWeightProvider divides the value of part by the value of whole.
func NewWeightProvider(part, whole Provider) *WeightProvider {
	return &WeightProvider{part: part, whole: whole}
}

// Weight returns value(part)/value(whole) on date, NaN when whole is zero.
func (w *WeightProvider) Weight(date time.Time) (float64, error) {
	whole, err := Value(w.whole, date)
	if err != nil {
		return 0, err
	}
	part, err := Value(w.part, date)
	if err != nil {
		return 0, err
	}
	if whole == 0 {
		return math.NaN(), nil
	}
	return part / whole, nil
}

// WeightSource supplies a weight per date.
type WeightSource interface {
	Weight(date time.Time) (float64, error)
}

// WeightedReturnProvider scales the returns of a base provider by a weight,
// leaving its valuations untouched.
type WeightedReturnProvider struct {
	*memo

	base    Provider
	weights WeightSource
}

// NewWeightedReturnProvider weights the returns of base by weights.
func NewWeightedReturnProvider(base Provider, weights WeightSource) *WeightedReturnProvider {
	p := &WeightedReturnProvider{base: base, weights: weights}
	p.memo = newMemo(p.calculate)
	return p
}

func (p *WeightedReturnProvider) calculate(date time.Time) (*ReturnRecord, error) {
	rec, err := p.base.Return(date)
	if err != nil {
		return nil, err
	}
	w, err := p.weights.Weight(date)
	if err != nil {
		return nil, err
	}
	return NewReturnRecordWithReturns(date, rec.InitialValue, rec.FinalValue, rec.ReturnPercent*w, rec.ReturnValue*w), nil
}
