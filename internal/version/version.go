package version

import (
	"fmt"
	"runtime/debug"
)

// Version, GitCommit and BuildTime are set via ldflags in release builds:
// go build -ldflags "-X git.home.luguber.info/inful/apiref/internal/version.Version=v1.0.0".
var (
	Version   = "unknown"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the version line printed by --version. When no commit was
// injected, the VCS revision recorded by the Go toolchain is used.
func String() string {
	commit := GitCommit
	if commit == "unknown" {
		if rev, ok := vcsRevision(); ok {
			commit = rev
		}
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("apiref %s (commit %s, built %s)", Version, commit, BuildTime)
}

func vcsRevision() (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value, true
		}
	}
	return "", false
}
