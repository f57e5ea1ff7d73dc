// Package domain defines the adxexport types and ports
package domain

import (
	"github.com/google/uuid"

	"github.com/openimis/openimis-be-dhis2-py/internal/adapters/dhis2"
	"github.com/openimis/openimis-be-dhis2-py/internal/core/adx"
)

// HealthFacility is the org unit every cube is built over
type HealthFacility struct {
	ID         int       `json:"id"`
	UUID       uuid.UUID `json:"uuid"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Level      string    `json:"level"`
	LocationID int       `json:"locationId"`
}

// CubeInfo describes a registered cube
type CubeInfo struct {
	Name         string   `json:"name"`
	DataSets     []string `json:"dataSets"`
	DataElements []string `json:"dataElements"`
	PeriodType   string   `json:"periodType"`
	Source       string   `json:"source"` // builtin | mapping
}

// ExportInput selects a cube and period
type ExportInput struct {
	Cube   string `json:"cube" validate:"required"`
	Period string `json:"period" validate:"required"`

	// Namespace adds xmlns to the root element; Push always sets it
	Namespace bool `json:"namespace"`
	Indent    bool `json:"indent"`
	// Exported writes the build time on the root element
	Exported bool `json:"exported"`
}

// ExportResult is a built cube and its XML form
type ExportResult struct {
	Cube   *adx.Cube `json:"-"`
	XML    []byte    `json:"-"`
	Name   string    `json:"cube"`
	Period string    `json:"period"`
	Groups int       `json:"groups"`
	Values int       `json:"values"`
}

// PushResult is an export accepted by DHIS2
type PushResult struct {
	Export  ExportResult         `json:"export"`
	Summary *dhis2.ImportSummary `json:"summary"`
}

// LintInput selects a cube, a period and optionally one facility by code,
// UUID or org unit UID
type LintInput struct {
	Cube     string `json:"cube" validate:"required"`
	Period   string `json:"period" validate:"required"`
	Facility string `json:"facility,omitempty"`
}

// LintResult lists partition findings across facilities
type LintResult struct {
	Cube       string                 `json:"cube"`
	Period     string                 `json:"period"`
	Facilities int                    `json:"facilities"`
	Findings   []adx.PartitionFinding `json:"findings"`
}
