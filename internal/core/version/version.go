// Package version reports what build is running
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Stamped by the release build:
//
//	-ldflags "-X magnetinfo/internal/core/version.version=v0.3.0 -X magnetinfo/internal/core/version.commit=abcd -X magnetinfo/internal/core/version.date=2026-01-02"
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// BuildInfo is served by /api/v1/version and printed by the cli
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	Dirty   bool   `json:"dirty,omitempty"`
}

// Info returns the stamped values, filling commit and date from the
// toolchain's vcs stamp when the build skipped ldflags
func Info() BuildInfo {
	bi := BuildInfo{
		Service: "magnetinfo-api",
		Version: version,
		Commit:  commit,
		Date:    date,
		Go:      runtime.Version(),
	}
	if bi.Commit != "" {
		return bi
	}
	if rb, ok := debug.ReadBuildInfo(); ok {
		fromVCS(&bi, rb.Settings)
	}
	if bi.Commit == "" {
		bi.Commit = "none"
	}
	if bi.Date == "" {
		bi.Date = "unknown"
	}
	return bi
}

func fromVCS(bi *BuildInfo, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			bi.Commit = s.Value
			if len(bi.Commit) > 12 {
				bi.Commit = bi.Commit[:12]
			}
		case "vcs.time":
			if bi.Date == "" {
				bi.Date = s.Value
			}
		case "vcs.modified":
			bi.Dirty = s.Value == "true"
		}
	}
}

// String is the one line form the cli prints
func (bi BuildInfo) String() string {
	s := fmt.Sprintf("%s (%s, %s, %s)", bi.Version, bi.Commit, bi.Date, bi.Go)
	if bi.Dirty {
		s += " dirty"
	}
	return s
}
