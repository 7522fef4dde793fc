// Package version reports what build of readnfc is running
package version

import "fmt"

// stamped at link time:
//
//	go build -ldflags "-X readnfc/internal/core/version.version=v0.3.0 -X readnfc/internal/core/version.commit=$(git rev-parse --short HEAD)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// BuildInfo is served by /meta/version and embedded in the API document
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the stamped build info for the API service
func Info() BuildInfo {
	return BuildInfo{Service: "readnfc-api", Version: version, Commit: commit, Date: date}
}

// String renders the build on one line, as printed by readnfc --version
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", b.Version, b.Commit, b.Date)
}
