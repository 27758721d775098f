// Package version holds build-time version information, injected via ldflags.
package version

var (
	// Version is the semantic version of this build
	Version = "dev"

	// Commit is the git commit hash of this build
	Commit = "none"

	// BuildTime is the timestamp of this build
	BuildTime = "unknown"
)
