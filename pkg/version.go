package dwcagent

var (
	// Version of the package, set during build.
	Version = "v0.1.0"

	// Build timestamp, set during build.
	Build string
)
