//go:build integration_pg

package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openimis/openimis-be-dhis2-py/internal/platform/testkit/pgcontainer"

	"github.com/rs/zerolog"
)

func TestPGAdapter_TracesAndRollsBack(t *testing.T) {
	dsn := pgcontainer.Start(t)
	ctx := context.Background()

	var buf bytes.Buffer
	s, err := Open(ctx, Config{PG: PGConfig{Enabled: true, URL: dsn, LogSQL: true, SlowQueryMs: -1}},
		WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(ctx) })

	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard: %v", err)
	}
	if _, err := s.PG.Exec(ctx, `CREATE TABLE "tblHF" ("HfID" int PRIMARY KEY, "HFCode" text)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("abort")
	err = s.PG.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO "tblHF" VALUES (1, 'HF1')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Tx = %v", err)
	}
	n, err := Scalar[int64](ctx, s.PG, `SELECT COUNT(*) FROM "tblHF"`)
	if err != nil || n != 0 {
		t.Fatalf("rollback failed: n=%d err=%v", n, err)
	}

	if err := s.PG.Tx(ctx, func(q RowQuerier) error {
		_, err := q.Exec(ctx, `INSERT INTO "tblHF" VALUES ($1, $2)`, 2, "HF2")
		return err
	}); err != nil {
		t.Fatalf("commit Tx: %v", err)
	}
	codes, err := Many(ctx, s.PG, func(r Row) (string, error) {
		var c string
		return c, r.Scan(&c)
	}, `SELECT "HFCode" FROM "tblHF"`)
	if err != nil || len(codes) != 1 || codes[0] != "HF2" {
		t.Fatalf("Many = %v, %v", codes, err)
	}

	if !strings.Contains(buf.String(), `"sql":"SELECT COUNT(*) FROM \"tblHF\""`) {
		t.Fatalf("tracer did not log statements: %s", buf.String())
	}
}
