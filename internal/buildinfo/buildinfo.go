package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("sampletest %s (commit=%s, date=%s)", Version, Commit, Date)
}

// UserAgent identifies the launcher to the pipeline API.
func UserAgent() string {
	return "sampletest/" + Version
}
