// Package buildinfo carries version metadata stamped at link time via
// -ldflags "-X github.com/longevity-genie/biolink-mcp-go/internal/buildinfo.Version=...".
package buildinfo

var (
	// Version is the semantic version of the build, or "dev" for local builds.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = "none"
	// Date is the build timestamp in RFC 3339 form.
	Date = "unknown"
)

// String renders the version with commit and date suffixes when present.
func String() string {
	s := Version
	if Commit != "none" {
		s += " (" + Commit + ")"
	}
	if Date != "unknown" {
		s += " built " + Date
	}
	return s
}
