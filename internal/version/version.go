// Package version contains build version information set at link time.
package version

// Build information, overridden with -ldflags "-X ...".
var (
	Version   = "0.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the build information as a JSON-friendly map.
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     GitCommit,
		"build_date": BuildDate,
	}
}
