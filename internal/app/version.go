package app

import "fmt"

// Set via ldflags, e.g.
// go build -ldflags "-X github.com/heartmarshall/myenglish-lookup/internal/app.Version=0.3.0" ./cmd/lookup
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion is printed by the dev shell and logged on startup.
func BuildVersion() string {
	return fmt.Sprintf("myenglish-lookup %s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
