package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/pathpattern"
	"github.com/conneroisu/resrepo/internal/repository"
	"github.com/conneroisu/resrepo/internal/resource"
)

// Export captures repo. Physical paths below rootDir are stored relative to
// it. Nodes are written in pre-order, so replaying the entries rebuilds
// every directory with its children in the same order.
func Export(repo *repository.Repository, rootDir string) *Dump {
	rel := func(p string) string {
		if rootDir == "" || !filepath.IsAbs(p) {
			return filepath.ToSlash(p)
		}
		r, err := filepath.Rel(rootDir, p)
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(p)
		}
		return filepath.ToSlash(r)
	}

	var paths OrderedMap
	repo.Walk(func(n *resource.Node) {
		if !n.HasLocations() {
			return
		}

		locs := n.Locations()
		values := make([]string, len(locs))
		for i, loc := range locs {
			values[i] = encodeLocation(loc, rel)
		}

		paths = append(paths, Entry{Key: n.Path(), Values: values})
	})

	tags := make(OrderedMap, 0, len(repo.Tags()))
	for _, name := range repo.Tags() {
		members := repo.GetByTag(name)
		values := make([]string, len(members))
		for i, n := range members {
			values[i] = n.Path()
		}
		tags = append(tags, Entry{Key: name, Values: values})
	}

	return &Dump{
		Version: FormatVersion,
		Config:  Config{RootDir: rootDir},
		Paths:   paths,
		Tags:    tags,
	}
}

// Option configures Restore.
type Option func(*restoreOptions)

type restoreOptions struct {
	repoOpts []repository.Option
	readOnly bool
	rootDir  string
}

// WithRepositoryOptions passes options to the rebuilt repository.
func WithRepositoryOptions(opts ...repository.Option) Option {
	return func(o *restoreOptions) {
		o.repoOpts = append(o.repoOpts, opts...)
	}
}

// ReadOnly freezes the rebuilt repository.
func ReadOnly() Option {
	return func(o *restoreOptions) {
		o.readOnly = true
	}
}

// WithRootDir resolves relative locations against dir instead of the
// dump's own root directory.
func WithRootDir(dir string) Option {
	return func(o *restoreOptions) {
		o.rootDir = dir
	}
}

// Restore rebuilds a repository from d without consulting the filesystem.
//
// A location that sits directly below a directory location of its parent
// joins that directory's layer, so removing the directory layer later
// detaches it as well.
func Restore(d *Dump, opts ...Option) (*repository.Repository, error) {
	if d.Version != FormatVersion {
		return nil, rerrors.NewConfigError(fmt.Sprintf("unsupported dump version %d", d.Version), nil)
	}

	o := &restoreOptions{rootDir: d.Config.RootDir}
	for _, opt := range opts {
		opt(o)
	}

	abs := func(p string) string {
		p = filepath.FromSlash(p)
		if filepath.IsAbs(p) || o.rootDir == "" {
			return filepath.Clean(p)
		}
		return filepath.Join(o.rootDir, p)
	}

	repo := repository.New(o.repoOpts...)

	for _, e := range replayOrder(d.Paths) {
		path := pathpattern.Canonicalize(e.Key)

		for _, raw := range e.Values {
			kind, physical := decodeLocation(raw, abs)
			loc := resource.NewLocation(kind, physical, path)
			if kind != resource.KindGeneric {
				if mount, source, ok := inheritedLayer(repo, path, physical); ok {
					loc.Mount, loc.Source = mount, source
				}
			}

			if _, err := repo.AddLocation(path, loc); err != nil {
				return nil, fmt.Errorf("failed to restore %s: %w", e.Key, err)
			}
		}
	}

	for _, e := range d.Tags {
		for _, member := range e.Values {
			if _, err := repo.Tag(pathpattern.Escape(member), e.Key); err != nil {
				return nil, fmt.Errorf("failed to restore tag %s: %w", e.Key, err)
			}
		}
	}

	if o.readOnly {
		repo.Freeze()
	}

	return repo, nil
}

// replayOrder keeps the listed order but moves an entry ahead of its
// descendants when the file lists it after them.
func replayOrder(paths OrderedMap) OrderedMap {
	index := make(map[string]int, len(paths))
	for i, e := range paths {
		if _, ok := index[pathpattern.Canonicalize(e.Key)]; !ok {
			index[pathpattern.Canonicalize(e.Key)] = i
		}
	}

	done := make([]bool, len(paths))
	out := make(OrderedMap, 0, len(paths))

	var emit func(i int)
	emit = func(i int) {
		if done[i] {
			return
		}
		done[i] = true

		path := pathpattern.Canonicalize(paths[i].Key)
		var ancestors []int
		for dir := path; dir != resource.RootPath; {
			dir = pathpattern.Dir(dir)
			if j, ok := index[dir]; ok && !done[j] {
				ancestors = append(ancestors, j)
			}
		}
		for k := len(ancestors) - 1; k >= 0; k-- {
			emit(ancestors[k])
		}

		out = append(out, paths[i])
	}

	for i := range paths {
		emit(i)
	}

	return out
}

// inheritedLayer finds the directory location of the parent node that
// physical was grafted from.
func inheritedLayer(repo *repository.Repository, path, physical string) (string, string, bool) {
	if path == resource.RootPath {
		return "", "", false
	}

	parent, err := repo.Get(pathpattern.Dir(path))
	if err != nil {
		return "", "", false
	}

	locs := parent.Locations()
	for i := len(locs) - 1; i >= 0; i-- {
		loc := locs[i]
		if loc.Kind == resource.KindDirectory && filepath.Join(loc.Path, pathpattern.Base(path)) == physical {
			return loc.Mount, loc.Source, true
		}
	}

	return "", "", false
}

// Read loads a dump file.
func Read(fs afero.Fs, file string) (*Dump, error) {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, rerrors.NewSourceNotFound(file, err)
		}
		return nil, rerrors.NewIOError(file, "failed to read dump", err)
	}

	var d Dump
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, rerrors.NewConfigError("failed to parse dump "+file, err)
	}

	return &d, nil
}

// Write stores d, creating the parent directory when needed.
func Write(fs afero.Fs, file string, d *Dump) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode dump: %w", err)
	}

	if dir := filepath.Dir(file); dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return rerrors.NewIOError(dir, "failed to create dump directory", err)
		}
	}

	if err := afero.WriteFile(fs, file, data, 0o644); err != nil {
		return rerrors.NewIOError(file, "failed to write dump", err)
	}

	return nil
}
