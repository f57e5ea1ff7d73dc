package adx

import (
	"context"
	"time"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
)

// insuree mirrors the rows the builtin cube counts
type insuree struct {
	id        int
	sex       string
	dob       time.Time
	validFrom time.Time
}

type facility struct {
	code     string
	level    string
	insurees []insuree
}

type pred func(insuree) bool

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sliceFilter(_ context.Context, set []insuree, p pred) ([]insuree, error) {
	var out []insuree
	for _, r := range set {
		if p(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

var fiftyYearsAgo = time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -365*50)

var ageGroup = CategoryDefinition[pred]{
	Name: "ageGroup",
	Options: []CategoryOption[pred]{
		{Code: "<=50yo", Name: "<=50yo", Cond: func(r insuree) bool { return !r.dob.Before(fiftyYearsAgo) }},
		{Code: ">50yo", Name: ">50yo", Cond: func(r insuree) bool { return r.dob.Before(fiftyYearsAgo) }},
	},
}

var sex = CategoryDefinition[pred]{
	Name: "sex",
	Options: []CategoryOption[pred]{
		{Code: "M", Name: "M", Cond: func(r insuree) bool { return r.sex == "M" }},
		{Code: "F", Name: "F", Cond: func(r insuree) bool { return r.sex == "F" }},
	},
}

func testFacility() facility {
	return facility{code: "HFT", level: "HC", insurees: []insuree{
		{1, "M", date("1950-01-01"), date("2018-12-01")},
		{2, "M", date("2000-01-01"), date("2020-01-01")},
		{3, "F", date("2000-01-01"), date("2020-02-01")},
		{4, "F", date("2000-01-01"), date("2020-02-01")},
		{5, "F", date("1950-01-01"), date("2022-01-01")},
	}}
}

func insureeCount(_ context.Context, set []insuree) (any, error) { return len(set), nil }

func insureesValue(cats ...CategoryDefinition[pred]) DataValueDefinition[facility, []insuree, pred] {
	return DataValueDefinition[facility, []insuree, pred]{
		DataElement: "NB_INSUREES",
		Dataset:     func(_ context.Context, hf facility) ([]insuree, error) { return hf.insurees, nil },
		PeriodFilter: func(ctx context.Context, set []insuree, p period.Period) ([]insuree, error) {
			return sliceFilter(ctx, set, func(r insuree) bool { return p.Contains(r.validFrom) })
		},
		Aggregate:  insureeCount,
		Categories: cats,
	}
}

func testDefinition(values ...DataValueDefinition[facility, []insuree, pred]) CubeDefinition[facility, []insuree, pred] {
	return CubeDefinition[facility, []insuree, pred]{
		PeriodType: period.ISO{},
		Groups: []GroupDefinition[facility, []insuree, pred]{{
			Comment:     "Test Comment",
			DataSet:     "TEST_HF_ADX_DEFINITION",
			OrgUnitType: func(hf facility) bool { return hf.level == "HC" },
			OrgUnitCode: func(hf facility) string { return hf.code },
			DataValues:  values,
		}},
	}
}
