package domain

import (
	"fmt"
	"time"
)

// DateLayout is the ISO 8601 calendar date format used on every wire format.
const DateLayout = "2006-01-02"

// Period identifies a monthly ledger window.
type Period struct {
	Year  int
	Month int
}

// NewPeriod builds a period, rejecting months outside 1..12.
func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// PeriodOf derives the period a calendar date belongs to. It is the only
// place year/month are computed from a date.
func PeriodOf(date time.Time) Period {
	return Period{Year: date.Year(), Month: int(date.Month())}
}

// Validate checks the month range.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Days returns the number of days in the period.
func (p Period) Days() int {
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// DateOnly truncates t to a UTC calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO 8601 calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
