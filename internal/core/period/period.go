// Package period parses ADX report periods into inclusive date ranges
package period

import (
	"fmt"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

// Unit is the duration unit of an ISO interval
type Unit byte

const (
	// Year is a calendar year step
	Year Unit = 'Y'
	// Month is a calendar month step
	Month Unit = 'M'
	// Week is a seven day step
	Week Unit = 'W'
	// Day is a single day step
	Day Unit = 'D'
)

func (u Unit) valid() bool {
	switch u {
	case Year, Month, Week, Day:
		return true
	}
	return false
}

// Period is an inclusive date range with a canonical ISO form.
// The zero value is not a valid period; build one with New or a Type
type Period struct {
	from time.Time
	to   time.Time
	n    int
	unit Unit
}

// New returns the period starting at from and spanning n units.
// from is truncated to its UTC calendar date
func New(from time.Time, n int, unit Unit) (Period, error) {
	if n < 1 {
		return Period{}, fmt.Errorf("period: length must be positive, got %d", n)
	}
	if !unit.valid() {
		return Period{}, fmt.Errorf("period: unknown unit %q", rune(unit))
	}
	from = dateOf(from)
	return Period{from: from, to: advance(from, n, unit).AddDate(0, 0, -1), n: n, unit: unit}, nil
}

// From is the first day of the period
func (p Period) From() time.Time { return p.from }

// To is the last day of the period, inclusive
func (p Period) To() time.Time { return p.to }

// End is the first instant after the period, handy for half open SQL ranges
func (p Period) End() time.Time { return p.to.AddDate(0, 0, 1) }

// Length returns the interval length and unit
func (p Period) Length() (int, Unit) { return p.n, p.unit }

// IsZero reports whether p was never initialised
func (p Period) IsZero() bool { return p.n == 0 }

// Contains reports whether the calendar date of t falls inside p
func (p Period) Contains(t time.Time) bool {
	d := dateOf(t)
	return !d.Before(p.from) && !d.After(p.to)
}

// Equal compares range and canonical form
func (p Period) Equal(o Period) bool {
	return p.from.Equal(o.from) && p.to.Equal(o.to) && p.n == o.n && p.unit == o.unit
}

// String is the canonical ISO interval, e.g. 2019-01-01/P2Y
func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	return p.from.Format(dateLayout) + "/P" + strconv.Itoa(p.n) + string(rune(p.unit))
}

// MonthOf returns the calendar month containing t
func MonthOf(t time.Time) Period {
	d := dateOf(t)
	p, _ := New(time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC), 1, Month)
	return p
}

// PreviousMonth returns the calendar month before the one containing t
func PreviousMonth(t time.Time) Period {
	d := dateOf(t)
	return MonthOf(time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func advance(t time.Time, n int, unit Unit) time.Time {
	switch unit {
	case Year:
		return addMonths(t, 12*n)
	case Month:
		return addMonths(t, n)
	case Week:
		return t.AddDate(0, 0, 7*n)
	default:
		return t.AddDate(0, 0, n)
	}
}

// addMonths clamps to the last day of the target month, so Jan 31 + 1M is Feb 28
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(t.Day(), last)-1)
}
