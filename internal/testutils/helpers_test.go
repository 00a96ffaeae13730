package testutils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemFs(t *testing.T) {
	fs := NewMemFs(t, "/project", LayeredFiles)

	for name, content := range LayeredFiles {
		data, err := afero.ReadFile(fs, filepath.Join("/project", name))
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	}

	isDir, err := afero.IsDir(fs, "/project/theme/css")
	require.NoError(t, err)
	assert.True(t, isDir)
}

func TestCreateTempProject(t *testing.T) {
	dir := CreateTempProject(t, map[string]string{"a/b.txt": "b"})

	assert.FileExists(t, filepath.Join(dir, "a", "b.txt"))
	assert.Equal(t, "b", ReadFile(t, dir, "a/b.txt"))
}

func TestCreateTestConfig(t *testing.T) {
	cfg := CreateTestConfig("/project")

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/project", cfg.Repository.RootDir)
	require.Len(t, cfg.Repository.Mounts, 2)
	assert.Equal(t, "/css", cfg.Repository.Mounts[1].Path)
	assert.True(t, cfg.History.Enabled)
}

type recordingT struct {
	errors int
}

func (r *recordingT) Helper()                                   {}
func (r *recordingT) Errorf(format string, args ...interface{}) { r.errors++ }
func (r *recordingT) Logf(format string, args ...interface{})   {}

func TestGoroutineTracker(t *testing.T) {
	tracker := NewGoroutineTracker("clean")
	done := make(chan struct{})
	go func() { <-done }()
	close(done)
	tracker.CheckLeaks(t, 0, time.Second)

	leaky := NewGoroutineTracker("leaky")
	block := make(chan struct{})
	go func() { <-block }()
	defer close(block)

	rec := &recordingT{}
	leaky.CheckLeaks(rec, 0, 50*time.Millisecond)
	assert.Equal(t, 1, rec.errors)
}
