// Package buildinfo carries version information stamped in at build time.
//
//	go build -ldflags "-X github.com/matzehuels/krampus/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/krampus/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/krampus/pkg/buildinfo.Date=$(date -u +%Y-%m-%d)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information on one line, for log output.
func String() string {
	return fmt.Sprintf("krampus %s (%s, %s)", Version, Commit, Date)
}

// Template returns the version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
