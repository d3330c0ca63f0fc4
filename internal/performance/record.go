// Package performance computes chained returns and return attribution for
// holdings and portfolios over a sequence of valuation dates.
//
// Market data is read through the collaborator interfaces in collaborators.go.
// Providers turn that data into one ReturnRecord per date, composite providers
// combine them, and Performance folds a provider over a date sequence.
package performance

import (
	"math"
	"time"
)

// ReturnRecord is the return of a series over a single date.
// It is never modified after construction.
type ReturnRecord struct {
	Date          time.Time
	InitialValue  float64
	FinalValue    float64
	ReturnPercent float64
	ReturnValue   float64
}

// NewReturnRecord derives the percent and money return from the two valuations.
// A zero on either side yields a NaN percent and a zero money return.
func NewReturnRecord(date time.Time, initial, final float64) *ReturnRecord {
	r := &ReturnRecord{
		Date:         date,
		InitialValue: initial,
		FinalValue:   final,
	}
	if initial == 0 || final == 0 {
		r.ReturnPercent = math.NaN()
		return r
	}
	r.ReturnPercent = final/initial - 1
	r.ReturnValue = final - initial
	return r
}

// NewReturnRecordWithReturns stores the supplied returns as-is.
func NewReturnRecordWithReturns(date time.Time, initial, final, percent, value float64) *ReturnRecord {
	return &ReturnRecord{
		Date:          date,
		InitialValue:  initial,
		FinalValue:    final,
		ReturnPercent: percent,
		ReturnValue:   value,
	}
}

// coalesce maps NaN to zero.
func coalesce(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
