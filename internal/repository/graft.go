package repository

import (
	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/locator"
	"github.com/conneroisu/resrepo/internal/pathpattern"
	"github.com/conneroisu/resrepo/internal/resource"
)

// step is one location to layer onto one repository path.
type step struct {
	path string
	loc  resource.Location
}

// plan resolves a physical entry into steps in pre-order. Every location of
// a directory graft shares the layer of the directory handed to Add.
func (r *Repository) plan(path string, entry locator.Entry, mount, source string) ([]step, error) {
	if !entry.IsDir {
		return []step{{
			path: path,
			loc:  resource.Location{Kind: resource.KindFile, Path: entry.Path, Mount: mount, Source: source},
		}}, nil
	}

	steps := []step{{
		path: path,
		loc:  resource.Location{Kind: resource.KindDirectory, Path: entry.Path, Mount: mount, Source: source},
	}}

	entries, err := r.locator.ReadDir(entry.Path)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		sub, err := r.plan(pathpattern.Join(path, e.Name), e, mount, source)
		if err != nil {
			return nil, err
		}
		steps = append(steps, sub...)
	}

	return steps, nil
}

// checkPlan rejects a plan that would fail halfway so that nothing is
// mutated on error.
func (r *Repository) checkPlan(steps []step) error {
	if len(steps) == 0 {
		return nil
	}

	if first := steps[0].path; !r.tree.Contains(first) {
		for dir := pathpattern.Dir(first); ; dir = pathpattern.Dir(dir) {
			if n, ok := r.tree.Get(dir); ok {
				if !n.IsDirectory() {
					return rerrors.NewNotADirectory(dir).WithContext("path", first)
				}
				break
			}
		}
	}

	for _, s := range steps {
		if !s.loc.Kind.Valid() {
			return rerrors.NewUnsupported(s.path, s.loc.Kind.String())
		}

		node, ok := r.tree.Get(s.path)
		if !ok || s.loc.Kind == resource.KindDirectory {
			continue
		}
		if node.HasChildren() || s.path == resource.RootPath {
			return rerrors.NewNotADirectory(s.path).WithContext("location", s.loc.Path)
		}
	}

	return nil
}

// apply layers every step and records the touched paths.
func (r *Repository) apply(steps []step) error {
	for _, s := range steps {
		if err := r.recordPrior(s.path); err != nil {
			return err
		}
	}

	for _, s := range steps {
		if _, err := r.tree.AddLocation(s.path, s.loc); err != nil {
			return err
		}
	}

	for _, s := range steps {
		if err := r.record(s.path); err != nil {
			return err
		}
	}

	return nil
}
