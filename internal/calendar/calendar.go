// Package calendar provides business-day arithmetic over weekends and a set
// of configured holidays.
package calendar

import (
	"fmt"
	"os"
	"sort"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Holiday is a named non-business day.
type Holiday struct {
	Date time.Time
	Name string
}

// Calendar treats Saturdays, Sundays and its holidays as non-business days.
// Dates are compared by calendar day in UTC.
type Calendar struct {
	Name     string
	holidays map[time.Time]string
}

// New creates a calendar with the given holidays.
func New(name string, holidays ...Holiday) *Calendar {
	c := &Calendar{
		Name:     name,
		holidays: make(map[time.Time]string, len(holidays)),
	}
	for _, h := range holidays {
		c.holidays[day(h.Date)] = h.Name
	}
	return c
}

// fileFormat is the TOML layout of a calendar file:
//
//	name = "TARGET"
//
//	[[holiday]]
//	date = 2024-12-25
//	name = "Christmas Day"
type fileFormat struct {
	Name     string `toml:"name"`
	Holidays []struct {
		Date toml.LocalDate `toml:"date"`
		Name string         `toml:"name"`
	} `toml:"holiday"`
}

// Load reads a calendar from a TOML file.
func Load(path string) (*Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a calendar from TOML.
func Parse(data []byte) (*Calendar, error) {
	var f fileFormat
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	holidays := make([]Holiday, len(f.Holidays))
	for i, h := range f.Holidays {
		holidays[i] = Holiday{Date: h.Date.AsTime(time.UTC), Name: h.Name}
	}
	return New(f.Name, holidays...), nil
}

// IsBusinessDay reports whether date is neither a weekend day nor a holiday.
func (c *Calendar) IsBusinessDay(date time.Time) bool {
	d := day(date)
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := c.holidays[d]
	return !holiday
}

// AddBusinessDays moves date by n business days, backwards when n is negative.
// With n == 0 the date is returned unchanged.
func (c *Calendar) AddBusinessDays(date time.Time, n int) time.Time {
	d := day(date)
	step := 1
	if n < 0 {
		step, n = -1, -n
	}
	for n > 0 {
		d = d.AddDate(0, 0, step)
		if c.IsBusinessDay(d) {
			n--
		}
	}
	return d
}

// BusinessDays returns the business days after start up to and including end.
func (c *Calendar) BusinessDays(start, end time.Time) []time.Time {
	var days []time.Time
	last := day(end)
	for d := day(start).AddDate(0, 0, 1); !d.After(last); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// LastBusinessDays returns the n business days ending at end, oldest first.
// end itself is included when it is a business day.
func (c *Calendar) LastBusinessDays(end time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	d := day(end)
	if !c.IsBusinessDay(d) {
		d = c.AddBusinessDays(d, -1)
	}
	return c.BusinessDays(c.AddBusinessDays(d, -n), d)
}

// Holidays returns the configured holidays in date order.
func (c *Calendar) Holidays() []Holiday {
	out := make([]Holiday, 0, len(c.holidays))
	for d, name := range c.holidays {
		out = append(out, Holiday{Date: d, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
