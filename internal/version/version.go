// Package version provides build-time version information for the trivia API.
// The variables are set with -ldflags "-X triviaapi/internal/version.Version=...".
package version

import "runtime/debug"

var (
	// Version is the application version (e.g., git tag or "dev")
	Version = "dev"
	// Commit is the git commit hash
	Commit = "dev"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Info is the build metadata reported by GET /version
type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// Get returns the build metadata for service. A "dev" commit falls back to the VCS
// revision stamped by the Go toolchain when one is available.
func Get(service string) Info {
	info := Info{
		Service:   service,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: "unknown",
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = buildInfo.GoVersion
	if info.Commit == "dev" {
		for _, setting := range buildInfo.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				info.Commit = setting.Value
			}
		}
	}
	return info
}
