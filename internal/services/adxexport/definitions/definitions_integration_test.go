//go:build integration_pg

package definitions

import (
	"context"
	"testing"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/adxml"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/store"
	kit "github.com/openimis/openimis-be-dhis2-py/internal/platform/testkit"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/testkit/pgcontainer"
	"github.com/openimis/openimis-be-dhis2-py/internal/services/adxexport/repo"
)

func TestInsureesAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: pgcontainer.Start(t)}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(ctx) })

	for _, stmt := range []string{
		`CREATE TABLE "tblHF" ("HfID" int PRIMARY KEY, "HfUUID" uuid, "HFCode" char(8), "HFName" text,
			"HFLevel" char(1), "LocationId" int, "ValidityTo" timestamp)`,
		`INSERT INTO "tblHF" VALUES
			(1, '6d0eea8c-62eb-11ea-94d6-c36229a16c2f', 'HF1', 'Central', 'C', 3, NULL),
			(2, '7e1ffb9d-62eb-11ea-94d6-c36229a16c2f', 'HF0', 'Closed', 'C', 3, '2019-01-01')`,
		`CREATE TABLE "tblInsuree" ("InsureeID" int PRIMARY KEY, "HFID" int, "Gender" char(1), "DOB" date,
			"IsHead" boolean, "ValidityFrom" timestamp, "ValidityTo" timestamp)`,
		`INSERT INTO "tblInsuree" VALUES
			(1, 1, 'M', '1950-01-01', true, '2018-12-01', NULL),
			(2, 1, 'M', '2000-01-01', true, '2020-01-01', NULL),
			(3, 1, 'F', '2000-01-01', false, '2020-02-01', NULL),
			(4, 1, 'F', '2000-01-01', false, '2020-02-01', NULL),
			(5, 1, 'F', '1950-01-01', true, '2022-01-01', NULL),
			(6, 1, 'F', '1950-01-01', true, '2020-03-01', '2020-04-01')`,
	} {
		if _, err := s.PG.Exec(ctx, stmt); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	hfs, err := repo.NewPG().Bind(s.PG).Facilities(ctx, nil)
	if err != nil || len(hfs) != 1 {
		t.Fatalf("facilities = %+v, %v", hfs, err)
	}

	c, err := Insurees(s.PG).Build(ctx, "2019-01-01/P2Y", hfs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	vals := c.Groups[0].DataValues
	want := []string{"1", "2", "0", "0", "1", "0"}
	for i, w := range want {
		if vals[i].Value != w {
			t.Fatalf("value %d (%s %+v) = %s, want %s", i, vals[i].DataElement, vals[i].Aggregations, vals[i].Value, w)
		}
	}

	out, err := adxml.Format(c)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	kit.MustContain(t, string(out), `ageGroup="&lt;=50yo" sex="F" />`)
}
