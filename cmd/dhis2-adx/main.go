// @title         openIMIS DHIS2 ADX API
// @version       0.1.0
// @description   Builds ADX cubes from the openIMIS records store and pushes them to DHIS2

package main

import (
	"os"

	"github.com/openimis/openimis-be-dhis2-py/internal/platform/logger"
)

func main() {
	logger.Init(logger.FromEnv())

	if err := newCLI(os.Stdout).Execute(); err != nil {
		logger.Get().Error().Err(err).Msg("dhis2-adx failed")
		os.Exit(1)
	}
}
