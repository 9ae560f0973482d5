// Package version holds build metadata injected at link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/framedoc/internal/version.Version=v1.0.0"
package version

import "fmt"

// Version contains the application version information.
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the version line printed by --version.
func String() string {
	return fmt.Sprintf("framedoc %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
