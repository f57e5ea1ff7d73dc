package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "github.com/openimis/openimis-be-dhis2-py/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"panic", "panic"},
		{"", "info"},
		{"  loud  ", "info"},
	}
	for _, c := range cases {
		if got := strings.ToLower(parseLevel(c.in).String()); got != c.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInit_ExportFieldsFlowIntoChildLoggers(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		Level:        "debug",
		Format:       "console",
		Service:      "dhis2-adx",
		Writer:       &buf,
		SampleEvery:  2,
		StaticFields: map[string]string{"build": "test"},
	})

	r := Get().Sample(&zerolog.BasicSampler{N: 1})
	r.Info().Msg("root-msg")

	n := Named("adxml").Sample(&zerolog.BasicSampler{N: 1})
	n.Info().Msg("named-msg")

	ctx := WithRequest(context.Background(), "req-7")
	ctx = WithExport(ctx, "OPENIMIS_HF_INSUREES", "2019-01-01/P2Y")
	c := C(ctx).Sample(&zerolog.BasicSampler{N: 1})
	c.Info().Msg("export-msg")

	out := buf.String()
	for _, want := range []string{
		"root-msg", "named-msg", "export-msg",
		"component=", "adxml",
		"request_id=", "req-7",
		"cube=", "OPENIMIS_HF_INSUREES",
		"period=", "2019-01-01/P2Y",
		"build=", "service=",
	} {
		kit.MustContain(t, out, want)
	}
}

func TestWithExport_EmptyValuesAreSkipped(t *testing.T) {
	ctx := WithExport(context.Background(), "", "")
	if ctx.Value(keyCube) != nil || ctx.Value(keyPeriod) != nil {
		t.Fatalf("empty export tags should not be stored")
	}
	if WithRequest(ctx, "") != ctx {
		t.Fatalf("empty request id should return ctx unchanged")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "sync")
	t.Setenv("LOG_COMPONENT", "cli")
	t.Setenv("LOG_CALLER", "yes")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "sync" || opt.Component != "cli" {
		t.Fatalf("FromEnv mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 5 {
		t.Fatalf("FromEnv caller/sample mismatch: %+v", opt)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	opt := FromEnv()
	if opt.Service != "dhis2-adx" || opt.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", opt)
	}
}
