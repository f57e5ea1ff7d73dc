// Package adx builds ADX cubes: category cross products over filterable
// record sets, aggregated per organisation unit and period.
//
// The engine is generic over three types supplied by the caller:
// O is the organisation unit, S the record set of the target store and
// C the condition type that store can filter by
package adx

import (
	"context"
	"time"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
)

// Aggregation is one resolved category option attached to a value
type Aggregation struct {
	LabelName  string
	LabelValue string
}

// DataValue is one aggregated value with its category labels
type DataValue struct {
	DataElement  string
	Value        string
	Aggregations []Aggregation
}

// Group holds the values of one org unit, period and data set
type Group struct {
	OrgUnit      string
	Period       string
	DataSet      string
	Comment      string
	CompleteDate time.Time
	DataValues   []DataValue
}

// Cube is a complete export; it belongs to the caller once built
type Cube struct {
	Name     string
	Exported time.Time
	Groups   []Group
}

// ValueCount returns the number of data values across all groups
func (c *Cube) ValueCount() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.DataValues)
	}
	return n
}

// Filter narrows a record set by one condition without mutating it
type Filter[S, C any] func(ctx context.Context, set S, cond C) (S, error)

// CategoryOption is one option of a category; Cond selects its records
type CategoryOption[C any] struct {
	Code string `validate:"required,max=230"`
	Name string
	Cond C
}

// CategoryDefinition is a named dimension. Options are expected to
// partition the records; overlaps are counted twice and only Lint reports them
type CategoryDefinition[C any] struct {
	Name    string              `validate:"required,xmlname"`
	Options []CategoryOption[C] `validate:"min=1,unique=Code,dive"`
}

// DataValueDefinition describes how one data element is computed
type DataValueDefinition[O, S, C any] struct {
	DataElement string `validate:"required"`

	// Dataset returns the records of an org unit
	Dataset func(ctx context.Context, orgUnit O) (S, error) `validate:"required"`
	// PeriodFilter keeps the records inside the report period
	PeriodFilter func(ctx context.Context, set S, p period.Period) (S, error) `validate:"required"`
	// Aggregate reduces a record set to a scalar, see FormatValue
	Aggregate func(ctx context.Context, set S) (any, error) `validate:"required"`

	Categories []CategoryDefinition[C] `validate:"unique=Name,dive"`
}

// GroupDefinition produces one Group per selected org unit
type GroupDefinition[O, S, C any] struct {
	Comment string
	DataSet string `validate:"required"`

	// OrgUnitType selects the org units this group applies to; nil selects all
	OrgUnitType func(O) bool
	OrgUnitCode func(O) string `validate:"required"`

	DataValues []DataValueDefinition[O, S, C] `validate:"min=1,dive"`
}

// CubeDefinition is static configuration, read but never mutated by a build
type CubeDefinition[O, S, C any] struct {
	PeriodType period.Type
	Groups     []GroupDefinition[O, S, C] `validate:"min=1,dive"`
}
