package performance

import "time"

// Performance is a provider folded over a date sequence: percent returns are
// compounded and money returns summed.
type Performance struct {
	ReturnPercent float64
	ReturnValue   float64
	InitialDate   time.Time
	FinalDate     time.Time
	// Returns holds one record per input date, in input order.
	Returns []*ReturnRecord
}

// Calculate visits dates once in the given order. A NaN percent or money
// return counts as no return for that date. Calling it again replaces the
// previous result. The first provider error aborts the calculation and is
// returned as is.
func (p *Performance) Calculate(dates []time.Time, provider Provider) error {
	product := 1.0
	var sum float64
	var first, last time.Time
	returns := make([]*ReturnRecord, 0, len(dates))

	for i, date := range dates {
		rec, err := provider.Return(date)
		if err != nil {
			return err
		}
		returns = append(returns, rec)

		product *= 1 + coalesce(rec.ReturnPercent)
		sum += coalesce(rec.ReturnValue)

		day := Day(date)
		if i == 0 || day.Before(first) {
			first = day
		}
		if i == 0 || day.After(last) {
			last = day
		}
	}

	p.ReturnPercent = product - 1
	p.ReturnValue = sum
	p.InitialDate = first
	p.FinalDate = last
	p.Returns = returns
	return nil
}
