// Package modkit holds the wiring types shared by service modules
package modkit

import (
	phttp "github.com/openimis/openimis-be-dhis2-py/internal/platform/net/http"
)

// Module is what the serve command mounts
type Module interface {
	// MountRoutes mounts the module's routes under its prefix
	MountRoutes(r phttp.Router)
	// Ports returns the module's port set for cross wiring
	Ports() any
	// Name returns the module name used in logs
	Name() string
}
