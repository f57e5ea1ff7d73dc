package definitions

import (
	"context"

	"github.com/google/uuid"

	"github.com/openimis/openimis-be-dhis2-py/internal/adapters/dhis2"
	"github.com/openimis/openimis-be-dhis2-py/internal/adapters/records/sqlset"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/store"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/domain"
)

const (
	// InsureesCube is the builtin cube name
	InsureesCube = "insurees"
	// InsureesDataSet is the DHIS2 data set the builtin cube reports to
	InsureesDataSet = "OPENIMIS_HF_INSUREES"
)

// AgeGroup splits insurees at 50 years of age, relative to the run date
var AgeGroup = Category{
	Name: "ageGroup",
	Options: []Option{
		{Code: "<=50yo", Name: "<=50yo", Cond: sqlset.Where(`i."DOB" >= CURRENT_DATE - INTERVAL '50 years'`)},
		{Code: ">50yo", Name: ">50yo", Cond: sqlset.Where(`i."DOB" < CURRENT_DATE - INTERVAL '50 years'`)},
	},
}

// Sex splits insurees by gender code
var Sex = Category{
	Name: "sex",
	Options: []Option{
		{Code: "M", Name: "M", Cond: sqlset.Where(`i."Gender" = ?`, "M")},
		{Code: "F", Name: "F", Cond: sqlset.Where(`i."Gender" = ?`, "F")},
	},
}

// FacilityCode is the DHIS2 org unit id of a facility
func FacilityCode(hf domain.HealthFacility) string { return dhis2.UIDFromUUID(hf.UUID) }

// HasUUID selects facilities that can be mapped to a DHIS2 org unit
func HasUUID(hf domain.HealthFacility) bool { return hf.UUID != uuid.Nil }

func facilityInsurees(_ context.Context, hf domain.HealthFacility) (sqlset.Set, error) {
	return sqlset.New(`"tblInsuree" i`,
		sqlset.Where(`i."ValidityTo" IS NULL`),
		sqlset.Where(`i."HFID" = ?`, hf.ID),
	), nil
}

// Insurees returns the builtin cube: insurees enrolled in the period per
// facility, split by age group and sex, plus family heads split by sex.
// Facilities without a UUID are skipped
func Insurees(q store.RowQuerier) *SQLCube {
	count := sqlset.Count(q, `i."InsureeID"`)
	def := Definition{
		PeriodType: period.ISO{},
		Groups: []Group{{
			Comment:     "openIMIS insurees per health facility",
			DataSet:     InsureesDataSet,
			OrgUnitType: HasUUID,
			OrgUnitCode: FacilityCode,
			DataValues: []Value{
				{
					DataElement:  "NB_INSUREES",
					Dataset:      facilityInsurees,
					PeriodFilter: sqlset.Between(`i."ValidityFrom"`),
					Aggregate:    count,
					Categories:   []Category{AgeGroup, Sex},
				},
				{
					DataElement: "NB_FAMILY_HEADS",
					Dataset: func(ctx context.Context, hf domain.HealthFacility) (sqlset.Set, error) {
						s, err := facilityInsurees(ctx, hf)
						return s.With(sqlset.Where(`i."IsHead" = true`)), err
					},
					PeriodFilter: sqlset.Between(`i."ValidityFrom"`),
					Aggregate:    count,
					Categories:   []Category{Sex},
				},
			},
		}},
	}
	return NewSQLCube(InsureesCube, "builtin", def, sqlset.CountOf(q, `i."InsureeID"`))
}
