// Package definitions holds the cubes adxexport can build: the builtin
// insuree cube and cubes declared in YAML mapping files
package definitions

import (
	"context"

	"github.com/samber/lo"

	"github.com/openimis/openimis-be-dhis2-py/internal/adapters/records/sqlset"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/adx"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/domain"
)

// Definition is a cube over health facilities and SQL record sets
type Definition = adx.CubeDefinition[domain.HealthFacility, sqlset.Set, sqlset.Cond]

type (
	// Group is a group definition over health facilities
	Group = adx.GroupDefinition[domain.HealthFacility, sqlset.Set, sqlset.Cond]
	// Value is a data value definition over SQL record sets
	Value = adx.DataValueDefinition[domain.HealthFacility, sqlset.Set, sqlset.Cond]
	// Category is a category whose options are SQL conditions
	Category = adx.CategoryDefinition[sqlset.Cond]
	// Option is one SQL backed category option
	Option = adx.CategoryOption[sqlset.Cond]
)

// SQLCube binds a Definition to a name and a counting operator for lint
type SQLCube struct {
	name   string
	source string
	def    Definition
	count  func(context.Context, sqlset.Set) (int64, error)
}

// NewSQLCube returns a cube source; count is used by Lint only
func NewSQLCube(name, source string, def Definition, count func(context.Context, sqlset.Set) (int64, error)) *SQLCube {
	return &SQLCube{name: name, source: source, def: def, count: count}
}

// Info implements domain.CubeSource
func (c *SQLCube) Info() domain.CubeInfo {
	info := domain.CubeInfo{Name: c.name, Source: c.source}
	if c.def.PeriodType != nil {
		info.PeriodType = c.def.PeriodType.Name()
	}
	info.DataSets = lo.Uniq(lo.Map(c.def.Groups, func(g Group, _ int) string { return g.DataSet }))
	info.DataElements = lo.Uniq(lo.FlatMap(c.def.Groups, func(g Group, _ int) []string {
		return lo.Map(g.DataValues, func(v Value, _ int) string { return v.DataElement })
	}))
	return info
}

// PeriodType implements domain.CubeSource
func (c *SQLCube) PeriodType() period.Type { return c.def.PeriodType }

// Validate implements domain.CubeSource
func (c *SQLCube) Validate() error { return adx.Validate(c.def) }

// Build implements domain.CubeSource
func (c *SQLCube) Build(ctx context.Context, periodString string, facilities []domain.HealthFacility, opts ...adx.BuildOption) (*adx.Cube, error) {
	return adx.NewBuilder(c.def, sqlset.Filter, opts...).Build(ctx, periodString, facilities)
}

// Lint implements domain.CubeSource
func (c *SQLCube) Lint(ctx context.Context, p period.Period, hf domain.HealthFacility) ([]adx.PartitionFinding, error) {
	return adx.Lint(ctx, c.def, sqlset.Filter, c.count, hf, p)
}
