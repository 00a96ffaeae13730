package config

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
)

const sampleConfig = `
repository:
  root_dir: ./project
  mounts:
    - path: /
      source: resources/base
    - path: /css
      source: resources/theme/css
  links:
    - path: /archive/item
      ref: zip:///bundle.zip#item
  tags:
    - pattern: /css/*
      tag: stylesheet
history:
  enabled: false
  max_versions: 5
dump:
  file: cache/dump.yml
  read_only: true
watch:
  debounce: 1s
  ignore: [".git", "dist"]
log:
  level: debug
  format: json
`

func readSample(t *testing.T) {
	t.Helper()

	viper.Reset()
	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(bytes.NewBufferString(sampleConfig)))
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()

	config, err := Load()
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, ".", config.Repository.RootDir)
	assert.Empty(t, config.Repository.Mounts)
	assert.True(t, config.History.Enabled)
	assert.Equal(t, 0, config.History.MaxVersions)
	assert.Equal(t, ".resrepo/dump.yml", config.Dump.File)
	assert.False(t, config.Dump.ReadOnly)
	assert.Equal(t, 300*time.Millisecond, config.Watch.Debounce)
	assert.Equal(t, []string{".git", "node_modules"}, config.Watch.Ignore)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
}

func TestLoad_FromYAML(t *testing.T) {
	readSample(t)

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./project", config.Repository.RootDir)
	assert.Equal(t, []Mount{
		{Path: "/", Source: "resources/base"},
		{Path: "/css", Source: "resources/theme/css"},
	}, config.Repository.Mounts)
	assert.Equal(t, []Link{{Path: "/archive/item", Ref: "zip:///bundle.zip#item"}}, config.Repository.Links)
	assert.Equal(t, []TagRule{{Pattern: "/css/*", Tag: "stylesheet"}}, config.Repository.Tags)

	assert.False(t, config.History.Enabled)
	assert.Equal(t, 5, config.History.MaxVersions)
	assert.Equal(t, "cache/dump.yml", config.Dump.File)
	assert.True(t, config.Dump.ReadOnly)
	assert.Equal(t, time.Second, config.Watch.Debounce)
	assert.Equal(t, []string{".git", "dist"}, config.Watch.Ignore)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
}

// TestLoadWithEnvironment tests loading config with environment variables
func TestLoadWithEnvironment(t *testing.T) {
	t.Setenv("RESREPO_HISTORY_MAX_VERSIONS", "12")
	t.Setenv("RESREPO_LOG_LEVEL", "warn")

	readSample(t)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(KeyReplacer())
	viper.AutomaticEnv()

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12, config.History.MaxVersions)
	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
}

func TestLoadFrom_IsolatedInstance(t *testing.T) {
	viper.Reset()
	viper.Set("history.max_versions", 99)

	v := viper.New()
	v.Set("history.max_versions", 3)

	config, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 3, config.History.MaxVersions)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
		field string
	}{
		{
			name:  "relative mount path",
			setup: func() { viper.Set("repository.mounts", []map[string]string{{"path": "css", "source": "x"}}) },
			field: "repository.mounts[0].path",
		},
		{
			name:  "empty mount source",
			setup: func() { viper.Set("repository.mounts", []map[string]string{{"path": "/css", "source": ""}}) },
			field: "repository.mounts[0].source",
		},
		{
			name:  "empty link ref",
			setup: func() { viper.Set("repository.links", []map[string]string{{"path": "/x", "ref": ""}}) },
			field: "repository.links[0].ref",
		},
		{
			name:  "empty tag name",
			setup: func() { viper.Set("repository.tags", []map[string]string{{"pattern": "/*", "tag": ""}}) },
			field: "repository.tags[0].tag",
		},
		{
			name:  "negative max versions",
			setup: func() { viper.Set("history.max_versions", -1) },
			field: "history.max_versions",
		},
		{
			name:  "dump traversal",
			setup: func() { viper.Set("dump.file", "../../etc/dump.yml") },
			field: "dump.file",
		},
		{
			name:  "unknown log level",
			setup: func() { viper.Set("log.level", "loud") },
			field: "log.level",
		},
		{
			name:  "unknown log format",
			setup: func() { viper.Set("log.format", "xml") },
			field: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			tt.setup()

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, rerrors.KindConfig, rerrors.KindOf(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

// validConfig returns a configuration that passes Validate.
func validConfig() *Config {
	return &Config{
		Repository: RepositoryConfig{
			RootDir: ".",
			Mounts:  []Mount{{Path: "/", Source: "base"}},
		},
		History: HistoryConfig{Enabled: true},
		Dump:    DumpConfig{File: ".resrepo/dump.yml"},
		Watch:   WatchConfig{Debounce: time.Second},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	config := &Config{
		Repository: RepositoryConfig{
			RootDir: "",
			Mounts:  []Mount{{Path: "rel", Source: ""}},
		},
		History: HistoryConfig{MaxVersions: -2},
		Dump:    DumpConfig{File: ""},
		Log:     LogConfig{Level: "info", Format: "text"},
	}

	err := config.Validate()
	require.Error(t, err)

	var collection *rerrors.ValidationErrorCollection
	require.ErrorAs(t, err, &collection)
	assert.Len(t, collection.Errors, 5)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	assert.Equal(t, "", FindConfigFile(""))

	require.NoError(t, os.WriteFile(DefaultFile, []byte("log:\n  level: debug\n"), 0o644))
	assert.Equal(t, DefaultFile, FindConfigFile(""))

	t.Setenv("RESREPO_CONFIG_FILE", "custom.yml")
	assert.Equal(t, "custom.yml", FindConfigFile(""))
	assert.Equal(t, "flag.yml", FindConfigFile("flag.yml"))
}

func TestInit_ReadsExplicitFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("custom.yml", []byte(sampleConfig), 0o644))
	t.Setenv("RESREPO_LOG_FORMAT", "text")

	v := viper.New()
	used, err := Init(v, "custom.yml")
	require.NoError(t, err)
	assert.Equal(t, "custom.yml", used)

	config, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)

	_, err = Init(viper.New(), "missing.yml")
	assert.Error(t, err)

	used, err = Init(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "", used)
}
