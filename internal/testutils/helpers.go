// Package testutils provides fixtures shared by resrepo tests: source trees
// on afero or the OS filesystem and a matching configuration.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/resrepo/internal/config"
)

// LayeredFiles is a base layer with a theme that shadows one stylesheet,
// relative to a project root.
var LayeredFiles = map[string]string{
	"base/css/style.css":  "body{}",
	"base/index.html":     "<html></html>",
	"theme/css/style.css": "body{color:red}",
	"theme/css/theme.css": ".t{}",
}

// WriteFiles creates every file below root on fs, with parent directories.
func WriteFiles(t *testing.T, fs afero.Fs, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
}

// NewMemFs returns an in-memory filesystem holding files below root.
func NewMemFs(t *testing.T, root string, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	WriteFiles(t, fs, root, files)

	return fs
}

// CreateTempProject writes files into a fresh temporary directory and
// returns it.
func CreateTempProject(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	WriteFiles(t, afero.NewOsFs(), dir, files)

	return dir
}

// CreateTestConfig creates a configuration mounting base at / and
// theme/css at /css below rootDir, with the stylesheet tag rule.
func CreateTestConfig(rootDir string) *config.Config {
	return &config.Config{
		Repository: config.RepositoryConfig{
			RootDir: rootDir,
			Mounts: []config.Mount{
				{Path: "/", Source: "base"},
				{Path: "/css", Source: "theme/css"},
			},
			Tags: []config.TagRule{{Pattern: "/css/*", Tag: "stylesheet"}},
		},
		History: config.HistoryConfig{Enabled: true},
		Dump:    config.DumpConfig{File: ".resrepo/dump.yml"},
		Watch:   config.WatchConfig{Debounce: 10 * time.Millisecond},
		Log:     config.LogConfig{Level: "info", Format: "text"},
	}
}

// ReadFile reads a file below dir and fails the test on error.
func ReadFile(t *testing.T, dir, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)

	return string(data)
}
