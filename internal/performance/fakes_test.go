package performance_test

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ndewijer/portfolio-performance/internal/performance"
)

var errUnknownPortfolio = errors.New("unknown portfolio")
var errNoPrice = errors.New("no price")

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// calendarDays treats every day as a business day.
type calendarDays struct{}

func (calendarDays) AddBusinessDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

type fakePrices struct {
	mu    sync.Mutex
	clean map[string]float64
	dirty map[string]float64
	calls int
}

func newFakePrices() *fakePrices {
	return &fakePrices{clean: map[string]float64{}, dirty: map[string]float64{}}
}

// set stores the same clean and dirty price.
func (f *fakePrices) set(holdingID, date string, price float64) {
	f.clean[holdingID+"@"+date] = price
	f.dirty[holdingID+"@"+date] = price
}

func (f *fakePrices) lookup(m map[string]float64, holdingID string, date time.Time) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	p, ok := m[holdingID+"@"+date.Format(time.DateOnly)]
	if !ok {
		return 0, fmt.Errorf("%s on %s: %w", holdingID, date.Format(time.DateOnly), errNoPrice)
	}
	return p, nil
}

func (f *fakePrices) CleanPrice(holdingID string, date time.Time, _ string) (float64, error) {
	return f.lookup(f.clean, holdingID, date)
}

func (f *fakePrices) DirtyPrice(holdingID string, date time.Time, _ string) (float64, error) {
	return f.lookup(f.dirty, holdingID, date)
}

func (f *fakePrices) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRates struct {
	mu    sync.Mutex
	rates map[string]float64
	calls int
}

func (f *fakeRates) Convert(from, to string, date time.Time) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if from == to {
		return 1, nil
	}
	r, ok := f.rates[from+to+"@"+date.Format(time.DateOnly)]
	if !ok {
		return 0, fmt.Errorf("no rate %s/%s", from, to)
	}
	return r, nil
}

type fakeFactors struct {
	levels  map[string]float64
	returns map[string]float64
}

func (f *fakeFactors) FactorValue(factor string, date time.Time) (float64, error) {
	v, ok := f.levels[factor+"@"+date.Format(time.DateOnly)]
	if !ok {
		return 0, fmt.Errorf("no level for %s", factor)
	}
	return v, nil
}

func (f *fakeFactors) FactorReturn(factor string, date time.Time) (float64, error) {
	return f.returns[factor+"@"+date.Format(time.DateOnly)], nil
}

type fakeCompositions struct {
	mu        sync.Mutex
	portfolio string
	positions map[string][]performance.Position
	calls     int
}

func (f *fakeCompositions) Composition(date time.Time, portfolio string) ([]performance.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if portfolio != f.portfolio {
		return nil, errUnknownPortfolio
	}
	return f.positions[date.Format(time.DateOnly)], nil
}

// stubProvider returns fixed records and counts calls.
type stubProvider struct {
	records map[string]*performance.ReturnRecord
	err     error
	calls   int
}

func (s *stubProvider) Return(date time.Time) (*performance.ReturnRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.records[date.Format(time.DateOnly)]
	if !ok {
		return nil, fmt.Errorf("no record for %s", date.Format(time.DateOnly))
	}
	return rec, nil
}

func newStub(records ...*performance.ReturnRecord) *stubProvider {
	s := &stubProvider{records: map[string]*performance.ReturnRecord{}}
	for _, r := range records {
		s.records[r.Date.Format(time.DateOnly)] = r
	}
	return s
}

// units is a position size that never changes.
type units float64

func (u units) Amount(time.Time) (float64, error) { return float64(u), nil }

func almostEqual(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	return d < eps && d > -eps
}
