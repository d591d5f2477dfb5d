// Package buildinfo carries the version stamped into the waypoint binary.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/AbdelazizMoustafa10m/Waypoint/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the build metadata printed by `waypoint version`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
}

// GetInfo returns the stamped build metadata. Binaries built with
// `go install module@version` carry no ldflags, so a "dev" version falls back
// to the module version recorded by the toolchain.
func GetInfo() Info {
	return resolve(Version, Commit, Date, debug.ReadBuildInfo)
}

func resolve(version, commit, date string, read func() (*debug.BuildInfo, bool)) Info {
	info := Info{Version: version, Commit: commit, Date: date, GoVersion: runtime.Version()}
	if version != "dev" || read == nil {
		return info
	}
	bi, ok := read()
	if !ok || bi == nil {
		return info
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "unknown" && len(s.Value) >= 7 {
				info.Commit = s.Value[:7]
			}
		case "vcs.time":
			if date == "unknown" {
				info.Date = s.Value
			}
		}
	}
	return info
}

// String renders "waypoint v0.3.0 (commit: a1b2c3d, built: 2026-10-01T10:00:00Z)".
func (i Info) String() string {
	return fmt.Sprintf("waypoint v%s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}
