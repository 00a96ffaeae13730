// Package locator resolves physical sources for the repository. It answers
// three questions about a concrete path: does it exist, is it a directory,
// and which entries does a directory hold. Metadata for filesystem-backed
// resources is read here too.
//
// The default implementation runs on an afero.Fs so that the operating
// system filesystem, an in-memory filesystem or a read-only overlay can be
// swapped without touching repository code.
package locator

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/resource"
)

// Entry describes one physical path.
type Entry struct {
	Path  string
	Name  string
	IsDir bool
}

// Locator is the physical-location capability consumed by the repository.
type Locator interface {
	// Stat describes the physical path.
	Stat(path string) (Entry, error)
	// ReadDir lists the immediate entries of a directory sorted by name.
	ReadDir(path string) ([]Entry, error)
	// Metadata reports size and timestamps of a physical path.
	Metadata(path string) (resource.Metadata, error)
	// Abs resolves a source against the locator's base directory.
	Abs(path string) string
}

// FS is a Locator backed by an afero filesystem.
type FS struct {
	fs   afero.Fs
	base string
}

// Option configures an FS locator.
type Option func(*FS)

// WithBaseDir sets the directory that relative sources are resolved
// against.
func WithBaseDir(dir string) Option {
	return func(l *FS) {
		l.base = dir
	}
}

// New creates a locator on fs.
func New(fs afero.Fs, opts ...Option) *FS {
	l := &FS{fs: fs}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// NewOS creates a locator on the operating system filesystem.
func NewOS(opts ...Option) *FS {
	return New(afero.NewOsFs(), opts...)
}

// NewReadOnly wraps fs so the locator can never write through it.
func NewReadOnly(fs afero.Fs, opts ...Option) *FS {
	return New(afero.NewReadOnlyFs(fs), opts...)
}

// Fs exposes the underlying filesystem.
func (l *FS) Fs() afero.Fs {
	return l.fs
}

// BaseDir returns the directory relative sources are resolved against.
func (l *FS) BaseDir() string {
	return l.base
}

// Abs resolves path against the base directory and cleans it.
func (l *FS) Abs(path string) string {
	if filepath.IsAbs(path) || l.base == "" {
		return filepath.Clean(path)
	}

	return filepath.Join(l.base, path)
}

// Stat describes the physical path.
func (l *FS) Stat(path string) (Entry, error) {
	abs := l.Abs(path)

	info, err := l.fs.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, rerrors.NewSourceNotFound(abs, err)
		}
		return Entry{}, rerrors.NewIOError(abs, "failed to stat source", err)
	}

	return Entry{
		Path:  abs,
		Name:  info.Name(),
		IsDir: info.IsDir(),
	}, nil
}

// ReadDir lists the immediate entries of a directory sorted by name.
func (l *FS) ReadDir(path string) ([]Entry, error) {
	abs := l.Abs(path)

	entry, err := l.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !entry.IsDir {
		return nil, rerrors.NewNotADirectory(abs)
	}

	infos, err := afero.ReadDir(l.fs, abs)
	if err != nil {
		return nil, rerrors.NewIOError(abs, "failed to read directory", err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{
			Path:  filepath.Join(abs, info.Name()),
			Name:  info.Name(),
			IsDir: info.IsDir(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// Metadata reports size and timestamps of a physical path. Access and change
// times are filled in where the platform exposes them.
func (l *FS) Metadata(path string) (resource.Metadata, error) {
	abs := l.Abs(path)

	info, err := l.fs.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return resource.Metadata{}, rerrors.NewSourceNotFound(abs, err)
		}
		return resource.Metadata{}, rerrors.NewIOError(abs, "failed to stat source", err)
	}

	md := resource.Metadata{
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	fillTimes(info, &md)

	return md, nil
}
