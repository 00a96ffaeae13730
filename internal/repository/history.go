package repository

import (
	"context"

	"github.com/conneroisu/resrepo/internal/changestream"
	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/resource"
)

// recordPrior stores the current state of path before its first tracked
// change, so that the version preceding the change is never lost.
func (r *Repository) recordPrior(path string) error {
	if r.history == nil || r.history.Contains(path) {
		return nil
	}

	node, ok := r.tree.Get(path)
	if !ok {
		return nil
	}

	_, err := r.history.Record(node)

	return err
}

// record stores the current state of path as its newest version.
func (r *Repository) record(path string) error {
	if r.history == nil {
		return nil
	}

	node, ok := r.tree.Get(path)
	if !ok {
		return nil
	}

	_, err := r.history.Record(node)

	return err
}

// ChangeStream returns the stream backing History, or nil when tracking is
// disabled.
func (r *Repository) ChangeStream() *changestream.Stream {
	return r.history
}

// History returns the recorded versions of path, newest last. The path does
// not need to exist any more.
func (r *Repository) History(path string) (*changestream.Stack, error) {
	canonical, err := resolveLiteral(path)
	if err != nil {
		return nil, err
	}
	if r.history == nil {
		return nil, rerrors.NewNoHistory(canonical).WithContext("reason", "change tracking disabled")
	}

	return r.history.BuildStack(r, canonical)
}

// Restore reinstates the locations of the given version at path and records
// the result as a new version. It returns nil when the restored version
// leaves no node behind.
func (r *Repository) Restore(path string, version int) (*resource.Node, error) {
	if err := r.checkWritable("restore"); err != nil {
		return nil, err
	}

	stack, err := r.History(path)
	if err != nil {
		return nil, err
	}

	old, err := stack.Get(version)
	if err != nil {
		return nil, err
	}

	canonical := stack.Path()
	if err := r.recordPrior(canonical); err != nil {
		return nil, err
	}

	node, err := r.tree.ReplaceLocations(canonical, old.Locations())
	if err != nil {
		return nil, err
	}
	r.tags.retain(r.tree.Contains)

	if err := r.record(canonical); err != nil {
		return node, err
	}

	r.logger.Debug(context.Background(), "restored version",
		"path", canonical, "version", version)

	return node, nil
}

// Metadata reports size and timestamps of the winning location of path.
// Nodes without a filesystem backing report zero metadata.
func (r *Repository) Metadata(path string) (resource.Metadata, error) {
	node, err := r.Get(path)
	if err != nil {
		return resource.Metadata{}, err
	}

	loc, ok := node.Location()
	if !ok || loc.Kind == resource.KindGeneric {
		return resource.Metadata{}, nil
	}

	return r.locator.Metadata(loc.Path)
}
