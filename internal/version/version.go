// Package version reports how the resrepo binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time with -ldflags "-X github.com/conneroisu/resrepo/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info is the build information of the running binary.
type Info struct {
	Version    string    `json:"version" yaml:"version"`
	GitCommit  string    `json:"git_commit" yaml:"git_commit"`
	BuildTime  time.Time `json:"build_time,omitzero" yaml:"build_time,omitempty"`
	GoVersion  string    `json:"go_version" yaml:"go_version"`
	Platform   string    `json:"platform" yaml:"platform"`
	DumpFormat int       `json:"dump_format" yaml:"dump_format"`
	Dirty      bool      `json:"dirty" yaml:"dirty"`
	Release    bool      `json:"release" yaml:"release"`
}

// Get collects the build information. dumpFormat is the dump file version
// the binary reads and writes.
func Get(dumpFormat int) Info {
	settings := vcsSettings()

	v := resolveVersion(settings)
	commit := GitCommit
	if commit == "" || commit == "unknown" {
		commit = orDefault(settings["vcs.revision"], "unknown")
	}

	return Info{
		Version:    v,
		GitCommit:  commit,
		BuildTime:  parseTime(BuildTime),
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		DumpFormat: dumpFormat,
		Dirty:      settings["vcs.modified"] == "true",
		Release:    v != "dev" && !strings.HasPrefix(v, "dev-"),
	}
}

// Short returns the version with an abbreviated commit, e.g. "v1.2.0 (abc1234)".
func (i Info) Short() string {
	if len(i.GitCommit) < 7 || i.GitCommit == "unknown" {
		return i.Version
	}

	commit := i.GitCommit[:7]
	if i.Version == "dev" {
		return "dev-" + commit
	}
	if strings.HasSuffix(i.Version, commit) {
		return i.Version
	}

	return fmt.Sprintf("%s (%s)", i.Version, commit)
}

// Detailed returns one "Key: value" line per known attribute.
func (i Info) Detailed() string {
	lines := []string{"Version: " + i.Version}
	if i.GitCommit != "unknown" {
		lines = append(lines, "Commit: "+i.GitCommit)
	}
	if !i.BuildTime.IsZero() {
		lines = append(lines, "Built: "+i.BuildTime.Format(time.RFC3339))
	}
	lines = append(lines,
		"Go: "+i.GoVersion,
		"Platform: "+i.Platform,
		fmt.Sprintf("Dump format: %d", i.DumpFormat),
	)
	if i.Dirty {
		lines = append(lines, "Working directory: dirty")
	}
	if i.Release {
		lines = append(lines, "Build type: release")
	} else {
		lines = append(lines, "Build type: development")
	}

	return strings.Join(lines, "\n")
}

func resolveVersion(settings map[string]string) string {
	if Version != "" && Version != "dev" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	if rev := settings["vcs.revision"]; len(rev) >= 7 {
		return "dev-" + rev[:7]
	}

	return "dev"
}

func vcsSettings() map[string]string {
	out := make(map[string]string)
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if strings.HasPrefix(s.Key, "vcs.") {
				out[s.Key] = s.Value
			}
		}
	}

	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}

// parseTime accepts RFC3339 and a few common variants, and returns the zero
// time otherwise.
func parseTime(s string) time.Time {
	if s == "" || s == "unknown" {
		return time.Time{}
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.000Z",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
