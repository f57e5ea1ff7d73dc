package adx

import (
	"context"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/period"
)

// FindingKind classifies a partition problem
type FindingKind string

const (
	// Overlap means some records match more than one option
	Overlap FindingKind = "overlap"
	// Gap means some records match no option
	Gap FindingKind = "gap"
)

// OptionCount is the record count of one option
type OptionCount struct {
	Code  string `json:"code"`
	Count int64  `json:"count"`
}

// PartitionFinding reports a category whose options do not partition the records
type PartitionFinding struct {
	Kind        FindingKind   `json:"kind"`
	DataSet     string        `json:"dataSet"`
	OrgUnit     string        `json:"orgUnit"`
	DataElement string        `json:"dataElement"`
	Category    string        `json:"category"`
	Total       int64         `json:"total"`
	Sum         int64         `json:"sum"`
	Options     []OptionCount `json:"options"`
}

// Lint compares, for every category, the sum of per option counts with the
// count of the whole period filtered set of orgUnit. It reports but never
// changes what Build emits
func Lint[O, S, C any](
	ctx context.Context,
	def CubeDefinition[O, S, C],
	filter Filter[S, C],
	count func(context.Context, S) (int64, error),
	orgUnit O,
	p period.Period,
) ([]PartitionFinding, error) {
	var out []PartitionFinding
	for _, g := range def.Groups {
		if g.OrgUnitType != nil && !g.OrgUnitType(orgUnit) {
			continue
		}
		code := g.OrgUnitCode(orgUnit)
		for _, dv := range g.DataValues {
			if len(dv.Categories) == 0 {
				continue
			}
			wrap := func(err error) error {
				return &BuildError{DataSet: g.DataSet, OrgUnit: code, DataElement: dv.DataElement, Err: err}
			}
			set, err := dv.Dataset(ctx, orgUnit)
			if err != nil {
				return nil, wrap(err)
			}
			if set, err = dv.PeriodFilter(ctx, set, p); err != nil {
				return nil, wrap(err)
			}
			total, err := count(ctx, set)
			if err != nil {
				return nil, wrap(err)
			}
			for _, cat := range dv.Categories {
				f := PartitionFinding{
					DataSet:     g.DataSet,
					OrgUnit:     code,
					DataElement: dv.DataElement,
					Category:    cat.Name,
					Total:       total,
				}
				for _, opt := range cat.Options {
					sub, err := filter(ctx, set, opt.Cond)
					if err != nil {
						return nil, wrap(err)
					}
					n, err := count(ctx, sub)
					if err != nil {
						return nil, wrap(err)
					}
					f.Sum += n
					f.Options = append(f.Options, OptionCount{Code: opt.Code, Count: n})
				}
				switch {
				case f.Sum > total:
					f.Kind = Overlap
				case f.Sum < total:
					f.Kind = Gap
				default:
					continue
				}
				out = append(out, f)
			}
		}
	}
	return out, nil
}
