// Package repo provides the adxexport storage implementations
package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/openimis/openimis-be-dhis2-py/internal/modkit/repokit"
	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/store"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/domain"
)

// NewPG returns a binder for the Postgres facility repo
func NewPG() repokit.Binder[domain.FacilityRepo] {
	return repokit.BindFunc[domain.FacilityRepo](func(q repokit.Queryer) domain.FacilityRepo {
		return &pgFacilities{q: q}
	})
}

type pgFacilities struct{ q repokit.Queryer }

const facilitiesSQL = `
	SELECT hf."HfID", COALESCE(hf."HfUUID"::text, ''), hf."HFCode", hf."HFName",
	       hf."HFLevel", COALESCE(hf."LocationId", 0)
	  FROM "tblHF" hf
	 WHERE hf."ValidityTo" IS NULL`

// Facilities returns current rows of tblHF, optionally restricted to levels
func (r *pgFacilities) Facilities(ctx context.Context, levels []string) ([]domain.HealthFacility, error) {
	sql := facilitiesSQL
	var args []any
	if len(levels) > 0 {
		sql += ` AND hf."HFLevel" = ANY($1)`
		args = append(args, levels)
	}
	sql += ` ORDER BY hf."HFCode", hf."HfID"`

	out, err := store.Many(ctx, r.q, scanFacility, sql, args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "list health facilities")
	}
	return out, nil
}

func scanFacility(row store.Row) (domain.HealthFacility, error) {
	var (
		hf  domain.HealthFacility
		raw string
	)
	if err := row.Scan(&hf.ID, &raw, &hf.Code, &hf.Name, &hf.Level, &hf.LocationID); err != nil {
		return hf, err
	}
	hf.Code = strings.TrimSpace(hf.Code)
	hf.Level = strings.TrimSpace(hf.Level)
	if raw != "" {
		u, err := uuid.Parse(raw)
		if err != nil {
			return hf, perr.Wrapf(err, perr.ErrorCodeDB, "health facility %s has a malformed uuid", hf.Code)
		}
		hf.UUID = u
	}
	return hf, nil
}
