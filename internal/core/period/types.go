package period

import (
	"strconv"
	"strings"
	"time"
)

// Type is a period grammar strategy
type Type interface {
	Name() string
	Parse(s string) (Period, error)
	IsValid(s string) bool
}

// Parse parses s with t
func Parse(s string, t Type) (Period, error) {
	return t.Parse(s)
}

// ByName returns the strategy registered under name (iso, iso-extended, monthly, quarterly, yearly)
func ByName(name string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "iso":
		return ISO{}, true
	case "iso-extended":
		return ISOExtended{}, true
	case "monthly":
		return Monthly{}, true
	case "quarterly":
		return Quarterly{}, true
	case "yearly":
		return Yearly{}, true
	}
	return nil, false
}

// ISO accepts <YYYY-MM-DD>/P<n><Y|M>
type ISO struct{}

// Name implements Type
func (ISO) Name() string { return "iso" }

// IsValid implements Type
func (t ISO) IsValid(s string) bool {
	_, err := t.Parse(s)
	return err == nil
}

// Parse implements Type
func (t ISO) Parse(s string) (Period, error) {
	return parseISO(t, s, "YM")
}

// ISOExtended is ISO plus week and day durations, for weekly and daily data sets
type ISOExtended struct{}

// Name implements Type
func (ISOExtended) Name() string { return "iso-extended" }

// IsValid implements Type
func (t ISOExtended) IsValid(s string) bool {
	_, err := t.Parse(s)
	return err == nil
}

// Parse implements Type
func (t ISOExtended) Parse(s string) (Period, error) {
	return parseISO(t, s, "YMWD")
}

// parseISO reads <date>/P<n><unit> where unit is one of units
func parseISO(t Type, s, units string) (Period, error) {
	date, dur, ok := strings.Cut(s, "/")
	if !ok {
		return Period{}, fail(t, s, "missing '/' between start date and duration")
	}
	from, err := time.Parse(dateLayout, date)
	if err != nil {
		return Period{}, fail(t, s, "start date must be YYYY-MM-DD")
	}
	if len(dur) < 3 || dur[0] != 'P' {
		return Period{}, fail(t, s, "duration must look like P<n><unit>")
	}
	unit := Unit(dur[len(dur)-1])
	if !unit.valid() || !strings.ContainsRune(units, rune(unit)) {
		return Period{}, fail(t, s, "unknown duration unit %q", dur[len(dur)-1:])
	}
	digits := dur[1 : len(dur)-1]
	if strings.TrimLeft(digits, "0123456789") != "" {
		return Period{}, fail(t, s, "duration length must be digits")
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 9999 {
		return Period{}, fail(t, s, "duration length out of range")
	}
	return New(from, n, unit)
}

// Monthly accepts DHIS2 month ids (YYYYMM) or a one month ISO interval starting on the 1st
type Monthly struct{}

// Name implements Type
func (Monthly) Name() string { return "monthly" }

// IsValid implements Type
func (t Monthly) IsValid(s string) bool {
	_, err := t.Parse(s)
	return err == nil
}

// Parse implements Type
func (t Monthly) Parse(s string) (Period, error) {
	if len(s) == 6 && isDigits(s) {
		y, _ := strconv.Atoi(s[:4])
		m, _ := strconv.Atoi(s[4:])
		if m < 1 || m > 12 {
			return Period{}, fail(t, s, "month must be 01..12")
		}
		return New(time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC), 1, Month)
	}
	return aligned(t, s, 1, Month, func(d time.Time) bool { return d.Day() == 1 })
}

// Quarterly accepts YYYYQn or a three month ISO interval starting on a quarter
type Quarterly struct{}

// Name implements Type
func (Quarterly) Name() string { return "quarterly" }

// IsValid implements Type
func (t Quarterly) IsValid(s string) bool {
	_, err := t.Parse(s)
	return err == nil
}

// Parse implements Type
func (t Quarterly) Parse(s string) (Period, error) {
	if len(s) == 6 && isDigits(s[:4]) && s[4] == 'Q' {
		q := int(s[5] - '0')
		if q < 1 || q > 4 {
			return Period{}, fail(t, s, "quarter must be Q1..Q4")
		}
		y, _ := strconv.Atoi(s[:4])
		return New(time.Date(y, time.Month(3*(q-1)+1), 1, 0, 0, 0, 0, time.UTC), 3, Month)
	}
	return aligned(t, s, 3, Month, func(d time.Time) bool {
		return d.Day() == 1 && (d.Month()-1)%3 == 0
	})
}

// Yearly accepts YYYY or a one year ISO interval starting on Jan 1
type Yearly struct{}

// Name implements Type
func (Yearly) Name() string { return "yearly" }

// IsValid implements Type
func (t Yearly) IsValid(s string) bool {
	_, err := t.Parse(s)
	return err == nil
}

// Parse implements Type
func (t Yearly) Parse(s string) (Period, error) {
	if len(s) == 4 && isDigits(s) {
		y, _ := strconv.Atoi(s)
		return New(time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), 1, Year)
	}
	return aligned(t, s, 1, Year, func(d time.Time) bool { return d.Day() == 1 && d.Month() == time.January })
}

// aligned parses s as ISO and requires the given length and start alignment
func aligned(t Type, s string, n int, unit Unit, startOK func(time.Time) bool) (Period, error) {
	p, err := parseISO(t, s, "YM")
	if err != nil {
		return Period{}, err
	}
	if gotN, gotU := p.Length(); gotN != n || gotU != unit {
		return Period{}, fail(t, s, "length must be P%d%c", n, rune(unit))
	}
	if !startOK(p.From()) {
		return Period{}, fail(t, s, "start date is not aligned to a %s boundary", t.Name())
	}
	return p, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
