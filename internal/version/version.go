// Package version holds build-time version info injected via ldflags.
//
// Build with:
//
//	go build -ldflags "-X github.com/coredeck/coredeck/internal/version.version=v0.3.0"
package version

// version is set at build time via -ldflags.
var version = "dev"

// Version returns the build version string.
func Version() string {
	return version
}

// UserAgent identifies coredeck clients to the daemon ("coredeck/v0.3.0").
func UserAgent() string {
	return "coredeck/" + version
}
