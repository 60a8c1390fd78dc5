// Package version holds the build-time version string reported by
// --version.
package version

// Version is overridden at build time via -ldflags "-X ...Version=...".
var Version = "dev"
