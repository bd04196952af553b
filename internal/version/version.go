// Package version holds build metadata injected at link time.
package version

// Version is overridden via -ldflags at release build time.
var Version = "dev"

// Commit is the short git hash of the build, when known.
var Commit = "unknown"
