// Package version holds build metadata, overridable at link time via
// -ldflags "-X splice/internal/version.Version=... -X splice/internal/version.Commit=...".
package version

var (
	// Version is the semantic version of this build.
	Version = "0.1.0"

	// Commit is the short git hash of this build.
	Commit = "dev"
)
