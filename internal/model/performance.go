package model

import "time"

// PerformanceQuery describes the period and valuation basis of a performance request.
// An empty Currency or Source means the configured default.
type PerformanceQuery struct {
	StartDate time.Time
	EndDate   time.Time
	Currency  string
	Source    string
}
