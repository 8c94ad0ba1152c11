package version

import "fmt"

// Build variables set through ldflags:
// -X 'github.com/tinkerfai/tinkerfai/pkg/version.Version=v1.0.0'
// -X 'github.com/tinkerfai/tinkerfai/pkg/version.CommitHash=abc123'
// -X 'github.com/tinkerfai/tinkerfai/pkg/version.BuildDate=2024-01-01T00:00:00Z'
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Info returns build information in a structured format
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildDate  string `json:"build_date"`
}

// Get returns the current build information
func Get() Info {
	return Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildDate:  BuildDate,
	}
}

// String formats the build information for --version.
func (i Info) String() string {
	if i.CommitHash == "unknown" {
		return i.Version
	}
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.CommitHash, i.BuildDate)
}
