package repo

import (
	"context"
	"time"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/adx"
	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/store"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/domain"
)

// ArchiveTable receives one row per exported data value:
//
//	CREATE TABLE adx_data_values (
//	  exported_at DateTime64(3, 'UTC'), cube LowCardinality(String), data_set LowCardinality(String),
//	  org_unit String, period String, data_element LowCardinality(String), value String,
//	  label_names Array(String), label_values Array(String)
//	) ENGINE = MergeTree ORDER BY (cube, period, org_unit, data_element)
const ArchiveTable = "adx_data_values"

// NewArchive returns the ClickHouse archive
func NewArchive(ch store.Clickhouse) domain.Archive {
	if ch == nil {
		panic("repo.NewArchive requires a non nil Clickhouse")
	}
	return &chArchive{ch: ch}
}

type chArchive struct{ ch store.Clickhouse }

// Store flattens the cube into archive rows and inserts them in one batch
func (a *chArchive) Store(ctx context.Context, name string, cube *adx.Cube) error {
	rows := ArchiveRows(name, cube)
	if len(rows) == 0 {
		return nil
	}
	if err := a.ch.Insert(ctx, ArchiveTable, rows); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "archive %d values of %s", len(rows), name)
	}
	return nil
}

// ArchiveRows returns the insert rows for cube in column order
func ArchiveRows(name string, cube *adx.Cube) [][]any {
	rows := make([][]any, 0, cube.ValueCount())
	at := cube.Exported.UTC().Truncate(time.Millisecond)
	for _, g := range cube.Groups {
		for _, dv := range g.DataValues {
			names := make([]string, len(dv.Aggregations))
			values := make([]string, len(dv.Aggregations))
			for i, a := range dv.Aggregations {
				names[i], values[i] = a.LabelName, a.LabelValue
			}
			rows = append(rows, []any{at, name, g.DataSet, g.OrgUnit, g.Period, dv.DataElement, dv.Value, names, values})
		}
	}
	return rows
}
