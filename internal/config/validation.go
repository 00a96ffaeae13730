package config

import (
	"fmt"
	"path/filepath"
	"strings"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/logging"
)

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	errs := &rerrors.ValidationErrorCollection{}

	validateRepositoryConfig(&c.Repository, errs)
	validateHistoryConfig(&c.History, errs)
	validateDumpConfig(&c.Dump, errs)
	validateWatchConfig(&c.Watch, errs)
	validateLogConfig(&c.Log, errs)

	return errs.AsError()
}

func validateRepositoryConfig(config *RepositoryConfig, errs *rerrors.ValidationErrorCollection) {
	if config.RootDir == "" {
		errs.AddField("repository.root_dir", config.RootDir, "root directory must not be empty",
			"use \".\" for the working directory")
	}

	for i, m := range config.Mounts {
		field := fmt.Sprintf("repository.mounts[%d]", i)
		if !isRepositoryPath(m.Path) {
			errs.AddField(field+".path", m.Path, "mount path must be an absolute repository path",
				"repository paths start with \"/\"")
		}
		if strings.TrimSpace(m.Source) == "" {
			errs.AddField(field+".source", m.Source, "mount source must not be empty")
		}
	}

	for i, l := range config.Links {
		field := fmt.Sprintf("repository.links[%d]", i)
		if !isRepositoryPath(l.Path) {
			errs.AddField(field+".path", l.Path, "link path must be an absolute repository path")
		}
		if strings.TrimSpace(l.Ref) == "" {
			errs.AddField(field+".ref", l.Ref, "link reference must not be empty")
		}
	}

	for i, t := range config.Tags {
		field := fmt.Sprintf("repository.tags[%d]", i)
		if strings.TrimSpace(t.Pattern) == "" {
			errs.AddField(field+".pattern", t.Pattern, "tag pattern must not be empty")
		}
		if strings.TrimSpace(t.Tag) == "" {
			errs.AddField(field+".tag", t.Tag, "tag name must not be empty")
		}
	}
}

func validateHistoryConfig(config *HistoryConfig, errs *rerrors.ValidationErrorCollection) {
	if config.MaxVersions < 0 {
		errs.AddField("history.max_versions", config.MaxVersions, "must not be negative",
			"use 0 to keep every version")
	}
}

func validateDumpConfig(config *DumpConfig, errs *rerrors.ValidationErrorCollection) {
	if config.File == "" {
		errs.AddField("dump.file", config.File, "dump file must not be empty")
		return
	}

	// Reject path traversal attempts
	for _, part := range strings.Split(filepath.ToSlash(config.File), "/") {
		if part == ".." {
			errs.AddField("dump.file", config.File, "dump file contains path traversal")
			return
		}
	}
}

func validateWatchConfig(config *WatchConfig, errs *rerrors.ValidationErrorCollection) {
	if config.Debounce < 0 {
		errs.AddField("watch.debounce", config.Debounce, "must not be negative")
	}
	for _, pattern := range config.Ignore {
		if strings.TrimSpace(pattern) == "" {
			errs.AddField("watch.ignore", pattern, "ignore patterns must not be empty")
		}
	}
}

func validateLogConfig(config *LogConfig, errs *rerrors.ValidationErrorCollection) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		errs.AddField("log.level", config.Level, err.Error(), "use debug, info, warn or error")
	}

	switch config.Format {
	case "", "text", "json":
	default:
		errs.AddField("log.format", config.Format, "unknown log format", "use text or json")
	}
}

func isRepositoryPath(path string) bool {
	return strings.HasPrefix(path, "/")
}
