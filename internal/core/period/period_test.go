package period

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestISOParse(t *testing.T) {
	cases := []struct {
		in       string
		from, to time.Time
	}{
		{"2019-01-01/P2Y", day(2019, 1, 1), day(2020, 12, 31)},
		{"2021-03-01/P1M", day(2021, 3, 1), day(2021, 3, 31)},
		{"2020-02-01/P1M", day(2020, 2, 1), day(2020, 2, 29)},
		{"2021-01-31/P1M", day(2021, 1, 31), day(2021, 2, 27)},
		{"2020-02-29/P1Y", day(2020, 2, 29), day(2021, 2, 27)},
		{"2019-07-01/P012M", day(2019, 7, 1), day(2020, 6, 30)},
	}
	for _, c := range cases {
		p, err := Parse(c.in, ISO{})
		if err != nil {
			t.Fatalf("Parse(%q) err = %v", c.in, err)
		}
		if !p.From().Equal(c.from) || !p.To().Equal(c.to) {
			t.Fatalf("Parse(%q) = %s..%s, want %s..%s", c.in,
				p.From().Format(dateLayout), p.To().Format(dateLayout),
				c.from.Format(dateLayout), c.to.Format(dateLayout))
		}
		if p.From().After(p.To()) {
			t.Fatalf("from after to for %q", c.in)
		}
	}
}

func TestISOExtendedParse(t *testing.T) {
	cases := []struct {
		in       string
		from, to time.Time
	}{
		{"2024-01-01/P2W", day(2024, 1, 1), day(2024, 1, 14)},
		{"2024-01-01/P1D", day(2024, 1, 1), day(2024, 1, 1)},
		{"2019-01-01/P2Y", day(2019, 1, 1), day(2020, 12, 31)},
	}
	for _, c := range cases {
		p, err := Parse(c.in, ISOExtended{})
		if err != nil {
			t.Fatalf("Parse(%q) err = %v", c.in, err)
		}
		if !p.From().Equal(c.from) || !p.To().Equal(c.to) {
			t.Fatalf("Parse(%q) = %s..%s", c.in, p.From().Format(dateLayout), p.To().Format(dateLayout))
		}
	}
	if _, err := Parse("2024-01-01/P2Q", ISOExtended{}); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("P2Q err = %v", err)
	}
}

func TestISORejects(t *testing.T) {
	bad := []string{
		"2019-01-01/A2X",
		"2019-01-01P2Y",
		"2019-13-01/P1Y",
		"2019-02-30/P1M",
		"19-01-01/P1Y",
		"2019-01-01/P0Y",
		"2019-01-01/PY",
		"2019-01-01/P-1M",
		"2019-01-01/P2Q",
		"2019-01-01/P2Y/P1M",
		"2024-01-01/P2W",
		"2024-01-01/P1D",
		"",
	}
	for _, in := range bad {
		_, err := Parse(in, ISO{})
		if err == nil {
			t.Fatalf("Parse(%q) should fail", in)
		}
		if !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("Parse(%q) err %v is not ErrInvalidPeriod", in, err)
		}
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Input != in || pe.Type != "iso" {
			t.Fatalf("Parse(%q) ParseError = %+v", in, pe)
		}
		if (ISO{}).IsValid(in) {
			t.Fatalf("IsValid(%q) = true", in)
		}
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	types := []Type{ISO{}, ISOExtended{}, Monthly{}, Quarterly{}, Yearly{}}
	inputs := map[string][]string{
		"iso":          {"2019-01-01/P2Y", "2019-07-01/P012M"},
		"iso-extended": {"2019-01-01/P2Y", "2024-01-01/P2W", "2024-03-05/P10D"},
		"monthly":   {"201902", "2019-02-01/P1M"},
		"quarterly": {"2019Q3", "2019-10-01/P3M"},
		"yearly":    {"2019", "2019-01-01/P1Y"},
	}
	for _, typ := range types {
		for _, in := range inputs[typ.Name()] {
			p, err := typ.Parse(in)
			if err != nil {
				t.Fatalf("%s.Parse(%q) err = %v", typ.Name(), in, err)
			}
			again, err := typ.Parse(p.String())
			if err != nil {
				t.Fatalf("%s.Parse(canonical %q) err = %v", typ.Name(), p.String(), err)
			}
			if !again.Equal(p) {
				t.Fatalf("%s round trip %q -> %q changed the period", typ.Name(), in, p.String())
			}
		}
	}
}

func TestCalendarTypes(t *testing.T) {
	cases := []struct {
		typ  Type
		in   string
		want string
		ok   bool
	}{
		{Monthly{}, "202402", "2024-02-01/P1M", true},
		{Monthly{}, "202413", "", false},
		{Monthly{}, "2024-02-02/P1M", "", false},
		{Monthly{}, "2024-02-01/P2M", "", false},
		{Quarterly{}, "2024Q2", "2024-04-01/P3M", true},
		{Quarterly{}, "2024Q5", "", false},
		{Quarterly{}, "2024-02-01/P3M", "", false},
		{Yearly{}, "2023", "2023-01-01/P1Y", true},
		{Yearly{}, "2023-02-01/P1Y", "", false},
		{Yearly{}, "23", "", false},
	}
	for _, c := range cases {
		p, err := c.typ.Parse(c.in)
		if c.ok != (err == nil) {
			t.Fatalf("%s.Parse(%q) err = %v, want ok=%v", c.typ.Name(), c.in, err, c.ok)
		}
		if c.ok && p.String() != c.want {
			t.Fatalf("%s.Parse(%q) = %q, want %q", c.typ.Name(), c.in, p.String(), c.want)
		}
		if !c.ok && !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("%s.Parse(%q) err kind = %v", c.typ.Name(), c.in, err)
		}
	}
}

func TestContainsAndEnd(t *testing.T) {
	p, _ := Parse("2019-01-01/P2Y", ISO{})
	if !p.Contains(time.Date(2020, 12, 31, 23, 59, 0, 0, time.UTC)) {
		t.Fatalf("last day should be inside")
	}
	if p.Contains(day(2021, 1, 1)) || p.Contains(day(2018, 12, 31)) {
		t.Fatalf("bounds leak")
	}
	if !p.End().Equal(day(2021, 1, 1)) {
		t.Fatalf("End() = %v", p.End())
	}
}

func TestMonthHelpers(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	if got := MonthOf(now).String(); got != "2024-03-01/P1M" {
		t.Fatalf("MonthOf = %q", got)
	}
	if got := PreviousMonth(now).String(); got != "2024-02-01/P1M" {
		t.Fatalf("PreviousMonth = %q", got)
	}
	if got := PreviousMonth(day(2024, 1, 1)).String(); got != "2023-12-01/P1M" {
		t.Fatalf("PreviousMonth across year = %q", got)
	}
}

func TestByNameAndNew(t *testing.T) {
	for _, n := range []string{"", "ISO", "iso-extended", "monthly", " Quarterly ", "yearly"} {
		if _, ok := ByName(n); !ok {
			t.Fatalf("ByName(%q) missing", n)
		}
	}
	if _, ok := ByName("weekly"); ok {
		t.Fatalf("ByName(weekly) should be unknown")
	}
	if _, err := New(day(2024, 1, 1), 0, Month); err == nil {
		t.Fatalf("New with zero length should fail")
	}
	if _, err := New(day(2024, 1, 1), 1, Unit('X')); err == nil {
		t.Fatalf("New with bad unit should fail")
	}
	var zero Period
	if !zero.IsZero() || zero.String() != "" {
		t.Fatalf("zero period misbehaves")
	}
}
