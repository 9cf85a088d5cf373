// Package fgrdb keeps version information of the forest genetic
// resources catalogue services.
package fgrdb

var (
	// Version of the app. Set during the build.
	Version = "v0.1.0"

	// Build timestamp. Set during the build.
	Build = "n/a"
)
