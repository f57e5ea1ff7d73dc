package adx

import (
	"testing"

	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
)

func TestValidate(t *testing.T) {
	if err := Validate(testDefinition(insureesValue(ageGroup, sex))); err != nil {
		t.Fatalf("valid definition rejected: %v", err)
	}

	cases := []struct {
		name  string
		mut   func(*CubeDefinition[facility, []insuree, pred])
		field string
	}{
		{"no period type", func(d *CubeDefinition[facility, []insuree, pred]) { d.PeriodType = nil }, "PeriodType"},
		{"no groups", func(d *CubeDefinition[facility, []insuree, pred]) { d.Groups = nil }, "Groups"},
		{"no data set", func(d *CubeDefinition[facility, []insuree, pred]) { d.Groups[0].DataSet = "" }, "Groups[0].DataSet"},
		{"no code func", func(d *CubeDefinition[facility, []insuree, pred]) { d.Groups[0].OrgUnitCode = nil }, "Groups[0].OrgUnitCode"},
		{"no aggregate", func(d *CubeDefinition[facility, []insuree, pred]) { d.Groups[0].DataValues[0].Aggregate = nil }, "Groups[0].DataValues[0].Aggregate"},
		{"duplicate category", func(d *CubeDefinition[facility, []insuree, pred]) {
			d.Groups[0].DataValues[0].Categories = []CategoryDefinition[pred]{sex, sex}
		}, "Groups[0].DataValues[0].Categories"},
		{"duplicate option", func(d *CubeDefinition[facility, []insuree, pred]) {
			c := CategoryDefinition[pred]{Name: "sex", Options: []CategoryOption[pred]{sex.Options[0], sex.Options[0]}}
			d.Groups[0].DataValues[0].Categories = []CategoryDefinition[pred]{c}
		}, "Groups[0].DataValues[0].Categories[0].Options"},
		{"empty category", func(d *CubeDefinition[facility, []insuree, pred]) {
			d.Groups[0].DataValues[0].Categories = []CategoryDefinition[pred]{{Name: "sex"}}
		}, "Groups[0].DataValues[0].Categories[0].Options"},
		{"bad label", func(d *CubeDefinition[facility, []insuree, pred]) {
			c := sex
			c.Name = "age group"
			d.Groups[0].DataValues[0].Categories = []CategoryDefinition[pred]{c}
		}, "Groups[0].DataValues[0].Categories[0].Name"},
		{"reserved label", func(d *CubeDefinition[facility, []insuree, pred]) {
			c := sex
			c.Name = "value"
			d.Groups[0].DataValues[0].Categories = []CategoryDefinition[pred]{c}
		}, "Groups[0].DataValues[0].Categories[0].Name"},
	}
	for _, c := range cases {
		def := testDefinition(insureesValue(ageGroup, sex))
		c.mut(&def)
		err := Validate(def)
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("%s: err = %v, want validation", c.name, err)
		}
		if e, _ := perr.As(err); e.Field() != c.field {
			t.Fatalf("%s: field = %q, want %q", c.name, e.Field(), c.field)
		}
	}
}
