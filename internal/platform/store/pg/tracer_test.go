package pg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestTracer_CompactsSQLAndPicksLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	tr.OnQuery(context.Background(), QueryEvent{
		SQL:  "SELECT COUNT(*)\n\tFROM \"tblInsuree\"   WHERE \"HFID\" = $1",
		Args: []any{7},
	})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 1", Slow: true})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT x", Err: errors.New("undefined column")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 log lines, got %d: %s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"sql":"SELECT COUNT(*) FROM \"tblInsuree\" WHERE \"HFID\" = $1"`) {
		t.Fatalf("sql not compacted: %s", lines[0])
	}
	if !strings.Contains(lines[0], `"level":"debug"`) {
		t.Fatalf("normal queries log at debug: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"level":"warn"`) {
		t.Fatalf("slow queries log at warn: %s", lines[1])
	}
	if !strings.Contains(lines[2], `"level":"error"`) || !strings.Contains(lines[2], "undefined column") {
		t.Fatalf("failed queries log at error: %s", lines[2])
	}
}
