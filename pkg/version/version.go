// Package version exposes the build metadata stamped into the binary.
package version

import (
	"fmt"
	"runtime"
)

// Version is the ScoutMCP release version. Release builds stamp it via
// -ldflags "-X github.com/scoutmcp/scoutmcp/pkg/version.Version=...";
// a plain go build reports dev.
var Version = "dev"

var (
	// Commit is the short git commit hash of the build, stamped the
	// same way as Version.
	Commit = "unknown"

	// Date is the build timestamp in RFC3339, stamped the same way.
	Date = "unknown"

	// GoVersion is the toolchain that produced the binary.
	GoVersion = runtime.Version()
)

// BuildInfo is the structured form of the build metadata, used for
// JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// String renders the full one-line version banner.
func String() string {
	return fmt.Sprintf("scoutmcp %s (commit: %s, built: %s, go: %s)",
		Version, Commit, Date, GoVersion)
}

// Short returns the bare version.
func Short() string {
	return Version
}

// GetInfo returns the build metadata with the host platform filled in.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
