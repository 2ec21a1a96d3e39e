package epubtl

import "runtime/debug"

// Name is the command and module name.
const Name = "epubtl"

// Version is the release version.
const Version = "0.1.0"

// Set with -ldflags "-X github.com/ZaguanLabs/epubtl.GitCommit=...".
var (
	GitCommit = ""
	BuildDate = ""
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

// String formats the version with a short commit suffix when known.
func (b BuildInfo) String() string {
	v := b.Version
	if b.Commit != "" {
		short := b.Commit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
		if b.Modified {
			v += "-dirty"
		}
	}
	return v
}

// ReadBuildInfo returns the linker-provided values, falling back to the
// VCS stamp the go command embeds in module builds.
func ReadBuildInfo() BuildInfo {
	info := BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate}
	if info.Commit != "" {
		return info
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}
