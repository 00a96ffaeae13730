package locator

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
)

func newMemLocator(t *testing.T) *FS {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/project/res/css", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/project/res/css/style.css", []byte("body{}"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/project/res/b.txt", []byte("b"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/project/res/a.txt", []byte("aaa"), 0o644))

	return New(fs, WithBaseDir("/project"))
}

func TestFS_Stat(t *testing.T) {
	l := newMemLocator(t)

	entry, err := l.Stat("res")
	require.NoError(t, err)
	assert.True(t, entry.IsDir)
	assert.Equal(t, "/project/res", entry.Path)

	entry, err = l.Stat("/project/res/a.txt")
	require.NoError(t, err)
	assert.False(t, entry.IsDir)
	assert.Equal(t, "a.txt", entry.Name)

	_, err = l.Stat("res/missing")
	require.Error(t, err)
	assert.True(t, rerrors.IsNotFound(err))
}

func TestFS_ReadDirSorted(t *testing.T) {
	l := newMemLocator(t)

	entries, err := l.ReadDir("res")
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "css"}, names)
	assert.True(t, entries[2].IsDir)
	assert.Equal(t, "/project/res/css", entries[2].Path)

	_, err = l.ReadDir("res/a.txt")
	assert.True(t, rerrors.IsNotADirectory(err))
}

func TestFS_Metadata(t *testing.T) {
	l := newMemLocator(t)
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, l.Fs().Chtimes("/project/res/a.txt", mtime, mtime))

	md, err := l.Metadata("res/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(3), md.Size)
	assert.True(t, md.ModTime.Equal(mtime))
	assert.False(t, md.IsZero())

	_, err = l.Metadata("res/none")
	assert.True(t, rerrors.IsNotFound(err))
}

func TestFS_Abs(t *testing.T) {
	l := New(afero.NewMemMapFs(), WithBaseDir("/base"))

	assert.Equal(t, "/base/x/y", l.Abs("x/y"))
	assert.Equal(t, "/abs/z", l.Abs("/abs/./z"))
	assert.Equal(t, "/base", l.BaseDir())

	noBase := New(afero.NewMemMapFs())
	assert.Equal(t, "rel", noBase.Abs("./rel"))
}

func TestNewReadOnly(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/f", []byte("x"), 0o644))

	l := NewReadOnly(base)
	entry, err := l.Stat("/f")
	require.NoError(t, err)
	assert.False(t, entry.IsDir)

	assert.Error(t, afero.WriteFile(l.Fs(), "/g", []byte("y"), 0o644))
}
