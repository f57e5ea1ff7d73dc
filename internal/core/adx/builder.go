package adx

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
)

// BuildOption configures a Builder
type BuildOption func(*buildConfig)

type buildConfig struct {
	workers int
	now     func() time.Time
}

// WithWorkers bounds the number of (group, org unit) pairs aggregated at once.
// Values below 1 mean sequential
func WithWorkers(n int) BuildOption {
	return func(c *buildConfig) { c.workers = max(n, 1) }
}

// WithClock overrides the export timestamp source
func WithClock(now func() time.Time) BuildOption {
	return func(c *buildConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Builder assembles cubes for one definition
type Builder[O, S, C any] struct {
	def CubeDefinition[O, S, C]
	agg Aggregator[O, S, C]
	cfg buildConfig
}

// NewBuilder binds def to the store's filter capability
func NewBuilder[O, S, C any](def CubeDefinition[O, S, C], filter Filter[S, C], opts ...BuildOption) *Builder[O, S, C] {
	if filter == nil {
		panic("adx.NewBuilder: nil filter")
	}
	cfg := buildConfig{workers: 1, now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}
	return &Builder[O, S, C]{def: def, agg: Aggregator[O, S, C]{Filter: filter}, cfg: cfg}
}

// Definition returns the bound cube definition
func (b *Builder[O, S, C]) Definition() CubeDefinition[O, S, C] { return b.def }

// Build parses periodString and aggregates every group over the org units
// its OrgUnitType selects. A bad period fails before any data access. The
// first data access failure cancels the remaining work and is returned as a
// *BuildError; no partial cube is returned
func (b *Builder[O, S, C]) Build(ctx context.Context, periodString string, orgUnits []O) (*Cube, error) {
	if b.def.PeriodType == nil {
		return nil, errors.New("adx: cube definition has no period type")
	}
	p, err := period.Parse(periodString, b.def.PeriodType)
	if err != nil {
		return nil, err
	}

	now := b.cfg.now()
	completeDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	slots := make([][]Group, len(b.def.Groups))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.cfg.workers)

	for gi, gdef := range b.def.Groups {
		selected := lo.Filter(orgUnits, func(o O, _ int) bool {
			return gdef.OrgUnitType == nil || gdef.OrgUnitType(o)
		})
		slots[gi] = make([]Group, len(selected))
		for ui, ou := range selected {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				grp, err := b.group(egCtx, gdef, ou, p)
				if err != nil {
					return err
				}
				grp.CompleteDate = completeDate
				slots[gi][ui] = grp
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cube := &Cube{Exported: now, Groups: lo.Flatten(slots)}
	if len(b.def.Groups) > 0 {
		cube.Name = b.def.Groups[0].DataSet
	}
	return cube, nil
}

func (b *Builder[O, S, C]) group(ctx context.Context, gdef GroupDefinition[O, S, C], ou O, p period.Period) (Group, error) {
	code := gdef.OrgUnitCode(ou)
	grp := Group{
		OrgUnit: code,
		Period:  p.String(),
		DataSet: gdef.DataSet,
		Comment: gdef.Comment,
	}
	for _, dv := range gdef.DataValues {
		values, err := b.agg.Aggregate(ctx, dv, ou, p)
		if err != nil {
			return Group{}, &BuildError{DataSet: gdef.DataSet, OrgUnit: code, DataElement: dv.DataElement, Err: err}
		}
		grp.DataValues = append(grp.DataValues, values...)
	}
	return grp, nil
}
