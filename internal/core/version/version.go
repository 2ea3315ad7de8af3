// Package version reports build information for the policyxray binaries
package version

import "runtime/debug"

// DefaultService is the service name reported when none is stamped
const DefaultService = "policyxray-api"

// Stamped with -ldflags "-X policyxray/internal/core/version.version=v0.1.0" and friends
var (
	service = DefaultService
	version = "dev"
	commit  = ""
	date    = ""
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the stamped build info. Unstamped commit and date fall back to
// the vcs settings the go tool embeds, then to "none" and "unknown"
func Info() BuildInfo {
	bi := BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
	if bi.Commit == "" || bi.Date == "" {
		fromVCS(&bi, debug.ReadBuildInfo)
	}
	if bi.Commit == "" {
		bi.Commit = "none"
	}
	if bi.Date == "" {
		bi.Date = "unknown"
	}
	return bi
}

func fromVCS(bi *BuildInfo, read func() (*debug.BuildInfo, bool)) {
	info, ok := read()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && bi.Commit == "":
			bi.Commit = s.Value
			if len(bi.Commit) > 12 {
				bi.Commit = bi.Commit[:12]
			}
		case s.Key == "vcs.time" && bi.Date == "":
			bi.Date = s.Value
		}
	}
}
