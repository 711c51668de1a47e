// Package version reports build information for the taxonomy binary
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build information. These variables are set at build time via ldflags.
var (
	// CommitHash is the git commit hash when the binary was built
	CommitHash = "dev"

	// BuildTime is when the binary was built
	BuildTime = "unknown"

	// Version is the semantic version (if tagged)
	Version = "dev"
)

// Info contains version and build information. LibraryVersion is filled in
// by callers that have a library at hand.
type Info struct {
	CommitHash     string `json:"commit_hash"`
	BuildTime      string `json:"build_time"`
	Version        string `json:"version"`
	GoVersion      string `json:"go_version"`
	Platform       string `json:"platform"`
	LibraryVersion string `json:"library_version,omitempty"`
}

// Get returns the current version information. Without ldflags the commit
// falls back to the VCS stamp Go embeds in the binary.
func Get() Info {
	info := Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if info.CommitHash == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				switch s.Key {
				case "vcs.revision":
					info.CommitHash = s.Value
				case "vcs.time":
					if info.BuildTime == "unknown" {
						info.BuildTime = s.Value
					}
				}
			}
		}
	}
	return info
}

// String returns a human-readable version string
func (i Info) String() string {
	s := fmt.Sprintf("taxonomy %s (commit %s, built %s)", i.Version, i.Short(), i.BuildTime)
	if i.LibraryVersion != "" {
		s += ", library " + i.LibraryVersion
	}
	return s
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
