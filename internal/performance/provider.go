package performance

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Provider yields the return of one series for a date.
type Provider interface {
	Return(date time.Time) (*ReturnRecord, error)
}

type calculateFunc func(date time.Time) (*ReturnRecord, error)

// memo is the per-instance cache every provider embeds. Each calendar day is
// calculated at most once; concurrent callers for the same day share the
// single in-flight calculation. Failed calculations are not stored.
type memo struct {
	calculate calculateFunc

	mu      sync.RWMutex
	records map[time.Time]*ReturnRecord
	group   singleflight.Group
}

func newMemo(calculate calculateFunc) *memo {
	return &memo{
		calculate: calculate,
		records:   make(map[time.Time]*ReturnRecord),
	}
}

// Return returns the cached record for the day of date, calculating it on first use.
func (m *memo) Return(date time.Time) (*ReturnRecord, error) {
	day := Day(date)
	if rec, ok := m.lookup(day); ok {
		return rec, nil
	}

	v, err, _ := m.group.Do(day.Format(time.DateOnly), func() (any, error) {
		if rec, ok := m.lookup(day); ok {
			return rec, nil
		}
		rec, err := m.calculate(day)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.records[day] = rec
		m.mu.Unlock()
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ReturnRecord), nil
}

func (m *memo) lookup(day time.Time) (*ReturnRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[day]
	return rec, ok
}

// InitialValue returns the initial value of p's record for date.
func InitialValue(p Provider, date time.Time) (float64, error) {
	rec, err := p.Return(date)
	if err != nil {
		return 0, err
	}
	return rec.InitialValue, nil
}

// FinalValue returns the final value of p's record for date.
func FinalValue(p Provider, date time.Time) (float64, error) {
	rec, err := p.Return(date)
	if err != nil {
		return 0, err
	}
	return rec.FinalValue, nil
}

// ReturnPercent returns the percent return of p's record for date.
func ReturnPercent(p Provider, date time.Time) (float64, error) {
	rec, err := p.Return(date)
	if err != nil {
		return 0, err
	}
	return rec.ReturnPercent, nil
}

// ReturnValue returns the money return of p's record for date.
func ReturnValue(p Provider, date time.Time) (float64, error) {
	rec, err := p.Return(date)
	if err != nil {
		return 0, err
	}
	return rec.ReturnValue, nil
}

// Value is the valuation at the start of date, i.e. the initial value.
func Value(p Provider, date time.Time) (float64, error) {
	return InitialValue(p, date)
}
