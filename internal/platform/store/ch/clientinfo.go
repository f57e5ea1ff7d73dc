package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo describes this process in system.query_log.
// role is the CLI command ("export", "sync-monthly", "serve")
func BuildClientInfo(role, tag string) clickhouse.ClientInfo {
	host, _ := os.Hostname()
	return clickhouse.ClientInfo{
		Products: []struct {
			Name    string
			Version string
		}{
			{Name: "dhis2-adx", Version: strings.TrimSpace(tag)},
			{Name: "role", Version: strings.TrimSpace(role)},
			{Name: "go", Version: runtime.Version()},
			{Name: "commit", Version: vcsShortSHA()},
			{Name: "host", Version: strings.TrimSpace(host)},
		},
	}
}

func vcsShortSHA() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "unknown"
}
