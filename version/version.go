// Package version reports the build identity of mdtool.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at link time:
//
//	go build -ldflags "-X multidict/version.Tag=v1.0.0 -X multidict/version.GitCommit=abc1234 -X multidict/version.BuildTime=2026-02-26T00:00:00Z" ./cmd/mdtool
var (
	Tag       = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info is the resolved build identity.
type Info struct {
	Tag       string
	Commit    string
	BuildTime string
	GoVersion string
}

// Get resolves the build identity. Linker values win; missing ones are read
// from the module's VCS stamp and default to "unknown".
func Get() Info {
	info := Info{Tag: Tag, Commit: GitCommit, BuildTime: BuildTime, GoVersion: runtime.Version()}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "" && len(s.Value) >= 8:
				info.Commit = s.Value[:8]
			case s.Key == "vcs.time" && info.BuildTime == "":
				info.BuildTime = s.Value
			}
		}
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.BuildTime == "" {
		info.BuildTime = "unknown"
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("multidict %s (commit %s, built %s, %s)", i.Tag, i.Commit, i.BuildTime, i.GoVersion)
}

// String is shorthand for Get().String().
func String() string {
	return Get().String()
}
