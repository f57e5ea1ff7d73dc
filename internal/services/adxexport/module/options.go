package module

import (
	"time"

	"github.com/openimis/openimis-be-dhis2-py/internal/adapters/dhis2"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/config"
)

// Options holds configuration settings for the adxexport module
type Options struct {
	Workers     int
	Namespace   bool
	MappingFile string
	Archive     bool
	Levels      []string

	// DHIS2.BaseURL is empty when pushing is disabled
	DHIS2 dhis2.Options
}

// FromConfig reads ADX_* and DHIS2_* settings
func FromConfig(cfg config.Conf) Options {
	a := cfg.Prefix("ADX_")
	d := cfg.Prefix("DHIS2_")
	return Options{
		Workers:     a.MayInt("WORKERS", 4),
		Namespace:   a.MayBool("NAMESPACE", true),
		MappingFile: a.MayString("MAPPING_FILE", ""),
		Archive:     a.MayBool("ARCHIVE", true),
		Levels:      a.MayCSV("ORGUNIT_LEVELS", nil),
		DHIS2: dhis2.Options{
			BaseURL:    d.MayString("URL", ""),
			Username:   d.MayString("USERNAME", ""),
			Password:   d.MayString("PASSWORD", ""),
			Timeout:    d.MayDuration("TIMEOUT", 30*time.Second),
			MaxRetries: d.MayInt("MAX_RETRIES", dhis2.DefaultMaxRetries),
			RetryBase:  d.MayDuration("RETRY_BASE", 500*time.Millisecond),
			DryRun:     d.MayBool("DRY_RUN", false),
		},
	}
}
