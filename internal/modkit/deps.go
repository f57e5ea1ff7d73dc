package modkit

import (
	"github.com/openimis/openimis-be-dhis2-py/internal/modkit/repokit"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/config"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/logger"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/store"
)

// Deps holds the core dependencies handed to modules.
// PG is required by the export module; CH is optional and nil when no archive is configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
