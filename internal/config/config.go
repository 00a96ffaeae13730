// Package config provides configuration management for resrepo using Viper
// for loading from files, environment variables, and command-line flags.
//
// The configuration describes how the repository is populated (mounts,
// links and tag rules), whether change tracking is enabled, where the dump
// lives, how the watcher debounces and how logs are written. Environment
// variables override file values with the RESREPO_ prefix, e.g.
// RESREPO_HISTORY_MAX_VERSIONS.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "RESREPO"

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = ".resrepo.yml"

type Config struct {
	Repository RepositoryConfig `yaml:"repository" mapstructure:"repository"`
	History    HistoryConfig    `yaml:"history" mapstructure:"history"`
	Dump       DumpConfig       `yaml:"dump" mapstructure:"dump"`
	Watch      WatchConfig      `yaml:"watch" mapstructure:"watch"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

type RepositoryConfig struct {
	RootDir string    `yaml:"root_dir" mapstructure:"root_dir"`
	Mounts  []Mount   `yaml:"mounts" mapstructure:"mounts"`
	Links   []Link    `yaml:"links" mapstructure:"links"`
	Tags    []TagRule `yaml:"tags" mapstructure:"tags"`
}

// Mount attaches a physical source at a repository path.
type Mount struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Source string `yaml:"source" mapstructure:"source"`
}

// Link attaches an opaque reference at a repository path.
type Link struct {
	Path string `yaml:"path" mapstructure:"path"`
	Ref  string `yaml:"ref" mapstructure:"ref"`
}

// TagRule tags every resource selected by Pattern.
type TagRule struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tag     string `yaml:"tag" mapstructure:"tag"`
}

type HistoryConfig struct {
	Enabled     bool `yaml:"enabled" mapstructure:"enabled"`
	MaxVersions int  `yaml:"max_versions" mapstructure:"max_versions"`
}

type DumpConfig struct {
	File     string `yaml:"file" mapstructure:"file"`
	ReadOnly bool   `yaml:"read_only" mapstructure:"read_only"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
	Ignore   []string      `yaml:"ignore" mapstructure:"ignore"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("repository.root_dir", ".")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.max_versions", 0)
	v.SetDefault("dump.file", ".resrepo/dump.yml")
	v.SetDefault("dump.read_only", false)
	v.SetDefault("watch.debounce", 300*time.Millisecond)
	v.SetDefault("watch.ignore", []string{".git", "node_modules"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	// Handle slices set via viper (workaround for viper slice handling)
	if v.IsSet("watch.ignore") && len(config.Watch.Ignore) == 0 {
		config.Watch.Ignore = v.GetStringSlice("watch.ignore")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
