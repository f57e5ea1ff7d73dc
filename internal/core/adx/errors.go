package adx

import "fmt"

// BuildError is a data access failure for one group, org unit and data element
type BuildError struct {
	DataSet     string
	OrgUnit     string
	DataElement string
	Err         error
}

// Error implements error
func (e *BuildError) Error() string {
	return fmt.Sprintf("adx: data set %s, org unit %s, data element %s: %v", e.DataSet, e.OrgUnit, e.DataElement, e.Err)
}

// Unwrap returns the data access failure
func (e *BuildError) Unwrap() error { return e.Err }
