// Package version reports the build of the dhis2-adx binary
package version

// BuildInfo is stamped at link time
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set with -ldflags "-X github.com/openimis/openimis-be-dhis2-py/internal/core/version.version=v0.3.0 ..."
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build information
func Info() BuildInfo {
	return BuildInfo{Service: "dhis2-adx", Version: version, Commit: commit, Date: date}
}

// String is the one line form used by --version
func (b BuildInfo) String() string {
	return b.Version + " (" + b.Commit + ", " + b.Date + ")"
}
