package store

import (
	"time"

	"github.com/openimis/openimis-be-dhis2-py/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	PG PGConfig
	CH CHConfig
}

// PGConfig configures the openIMIS Postgres connection
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
	ReadOnly    bool

	// ConnectRetries bounds the boot ping loop; 0 means 20
	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures the cube archive
type CHConfig struct {
	Enabled    bool
	URL        string
	ClientRole string
	ClientTag  string
}

// ConfigFromEnv reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_*.
// Postgres is enabled when requirePG is set or a DBURL is present; ClickHouse only when its DBURL is present
func ConfigFromEnv(root config.Conf, role string, requirePG bool) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")

	cfg := Config{
		PG: PGConfig{
			Enabled:     requirePG || pg.Has("DBURL"),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
			ReadOnly:    pg.MayBool("READ_ONLY", true),
			PingTimeout: pg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			Enabled:    ch.Has("DBURL"),
			URL:        ch.MayString("DBURL", ""),
			ClientRole: role,
			ClientTag:  ch.MayString("CLIENT_TAG", "dev"),
		},
	}
	if cfg.PG.Enabled {
		cfg.PG.URL = pg.MustString("DBURL")
	}
	return cfg
}
