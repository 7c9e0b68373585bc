// Package version contains the client version identifier reported in request metadata
// and in the status resource.
package version

// Version is the product version string. It is set at build time for release builds.
var Version = "0.9.0" //nolint:gochecknoglobals
