package domain

import (
	"context"

	"github.com/openimis/openimis-be-dhis2-py/internal/adapters/dhis2"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/adx"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
)

// ServicePort is the public entrypoint exposed by the module
type ServicePort interface {
	// Cubes lists registered cubes in registration order
	Cubes(ctx context.Context) []CubeInfo

	// Export builds a cube for the period over the configured facilities
	Export(ctx context.Context, in ExportInput) (*ExportResult, error)

	// Push exports then submits the document to DHIS2
	Push(ctx context.Context, in ExportInput) (*PushResult, error)

	// SyncMonthly pushes every registered cube for month; failures do not stop the others
	SyncMonthly(ctx context.Context, month period.Period) ([]PushResult, error)

	// Lint reports category options that overlap or leave gaps
	Lint(ctx context.Context, in LintInput) (*LintResult, error)
}

// FacilityRepo reads current health facilities from the records store
type FacilityRepo interface {
	// Facilities returns current facilities ordered by code; empty levels means all
	Facilities(ctx context.Context, levels []string) ([]HealthFacility, error)
}

// CubeSource is one exportable cube bound to its record store
type CubeSource interface {
	Info() CubeInfo
	PeriodType() period.Type
	Validate() error
	Build(ctx context.Context, periodString string, facilities []HealthFacility, opts ...adx.BuildOption) (*adx.Cube, error)
	Lint(ctx context.Context, p period.Period, hf HealthFacility) ([]adx.PartitionFinding, error)
}

// Catalog resolves cubes by name
type Catalog interface {
	Get(name string) (CubeSource, bool)
	List() []CubeSource
}

// Archive keeps a copy of every exported value
type Archive interface {
	Store(ctx context.Context, name string, cube *adx.Cube) error
}

// Submitter delivers ADX documents to DHIS2
type Submitter interface {
	SubmitADX(ctx context.Context, payload []byte) (*dhis2.ImportSummary, error)
}
