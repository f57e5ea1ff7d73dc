package adx

import (
	"fmt"

	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/validate"
)

// attributes already written on every dataValue
var reservedLabels = map[string]bool{"dataElement": true, "value": true}

// Validate checks the structure of def: required fields and funcs, at least
// one option per category, unique option codes and category names, and
// label names usable as XML attributes. Partition overlaps are Lint's job
func Validate[O, S, C any](def CubeDefinition[O, S, C]) error {
	if def.PeriodType == nil {
		return perr.WithField(perr.Validationf("period type is required"), "PeriodType")
	}
	if err := validate.Struct(def); err != nil {
		return err
	}
	for gi, g := range def.Groups {
		for di, dv := range g.DataValues {
			for ci, c := range dv.Categories {
				if reservedLabels[c.Name] {
					return perr.WithField(
						perr.Validationf("category name %q clashes with a dataValue attribute", c.Name),
						fmt.Sprintf("Groups[%d].DataValues[%d].Categories[%d].Name", gi, di, ci),
					)
				}
			}
		}
	}
	return nil
}
