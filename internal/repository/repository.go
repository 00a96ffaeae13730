// Package repository implements the virtual resource repository: a tree of
// repository paths backed by physical locations, queried by path, selector
// or tag.
//
// Adding a second source at a path layers it on top of the first. The newest
// layer wins for single reads while directory listings merge the children
// of every layer.
//
// A Repository carries no locks. Hosts that share one across goroutines
// serialize access themselves; see internal/services.
package repository

import (
	"context"

	"github.com/conneroisu/resrepo/internal/changestream"
	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/locator"
	"github.com/conneroisu/resrepo/internal/logging"
	"github.com/conneroisu/resrepo/internal/pathpattern"
	"github.com/conneroisu/resrepo/internal/resource"
)

// Repository is the aggregate root over the resource tree, the tag index
// and the optional change stream.
type Repository struct {
	tree     *resource.Tree
	locator  locator.Locator
	history  *changestream.Stream
	tags     *tagIndex
	logger   logging.Logger
	readOnly bool
}

// Option configures a Repository.
type Option func(*Repository)

// WithLocator sets the physical-location resolver used by Add.
func WithLocator(l locator.Locator) Option {
	return func(r *Repository) {
		r.locator = l
	}
}

// WithChangeStream enables change tracking on the given stream.
func WithChangeStream(s *changestream.Stream) Option {
	return func(r *Repository) {
		r.history = s
	}
}

// WithHistory enables change tracking on a new stream.
func WithHistory(opts ...changestream.Option) Option {
	return func(r *Repository) {
		r.history = changestream.New(opts...)
	}
}

// WithLogger sets the logger. Mutations are logged at debug level.
func WithLogger(logger logging.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// WithReadOnly makes every mutation fail with a read-only violation.
func WithReadOnly() Option {
	return func(r *Repository) {
		r.readOnly = true
	}
}

// New creates an empty repository holding only the root directory.
func New(opts ...Option) *Repository {
	r := &Repository{
		tree:   resource.NewTree(),
		tags:   newTagIndex(),
		logger: logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.locator == nil {
		r.locator = locator.NewOS()
	}
	r.logger = r.logger.WithComponent("repository")

	return r
}

// Freeze turns the repository read-only. It cannot be undone.
func (r *Repository) Freeze() {
	r.readOnly = true
}

// ReadOnly reports whether mutations are rejected.
func (r *Repository) ReadOnly() bool {
	return r.readOnly
}

// Tracking reports whether change tracking is enabled.
func (r *Repository) Tracking() bool {
	return r.history != nil
}

// Locator returns the physical-location resolver.
func (r *Repository) Locator() locator.Locator {
	return r.locator
}

// Len returns the number of nodes including the root.
func (r *Repository) Len() int {
	return r.tree.Len()
}

func (r *Repository) checkWritable(operation string) error {
	if r.readOnly {
		return rerrors.NewReadOnly(operation)
	}

	return nil
}

// resolvePath canonicalizes a repository path given by the caller.
func resolvePath(path string) (string, error) {
	if path == "" {
		return "", rerrors.NewInvalidPath(path, "path must not be empty")
	}

	canonical := pathpattern.Canonicalize(path)
	if !pathpattern.IsAbsolute(canonical) {
		return "", rerrors.NewInvalidPath(path, "path must be absolute")
	}

	return canonical, nil
}

// resolveLiteral turns a selector without wildcards into the path it names.
func resolveLiteral(selector string) (string, error) {
	if selector == "" {
		return "", rerrors.NewInvalidPath(selector, "path must not be empty")
	}

	return resolvePath(pathpattern.Unescape(selector))
}

// Contains reports whether path has a node.
func (r *Repository) Contains(path string) bool {
	return r.tree.Contains(path)
}

// Get returns the node at path.
func (r *Repository) Get(path string) (*resource.Node, error) {
	canonical, err := resolveLiteral(path)
	if err != nil {
		return nil, err
	}

	node, ok := r.tree.Get(canonical)
	if !ok {
		return nil, rerrors.NewNotFound(canonical)
	}

	return node, nil
}

// Find returns the nodes selected by pattern in pre-order. A selector
// without wildcards behaves exactly like Get; a wildcard selector that
// matches nothing returns an empty slice.
func (r *Repository) Find(pattern string) ([]*resource.Node, error) {
	if pattern == "" {
		return nil, rerrors.NewInvalidPath(pattern, "selector must not be empty")
	}

	if !pathpattern.IsPattern(pattern) {
		node, err := r.Get(pattern)
		if err != nil {
			return nil, err
		}
		return []*resource.Node{node}, nil
	}

	p, err := pathpattern.Compile(pathpattern.CanonicalizePattern(pattern))
	if err != nil {
		return nil, err
	}

	base := p.BasePath()
	if base == "" {
		base = resource.RootPath
	}

	matches := []*resource.Node{}
	r.tree.Walk(base, func(n *resource.Node) {
		if p.Match(n.Path()) {
			matches = append(matches, n)
		}
	})

	return matches, nil
}

// ListChildren returns the children of a directory node in insertion order.
func (r *Repository) ListChildren(path string) ([]*resource.Node, error) {
	canonical, err := resolveLiteral(path)
	if err != nil {
		return nil, err
	}

	return r.tree.ListChildren(canonical)
}

// Walk visits every node in pre-order starting at the root.
func (r *Repository) Walk(visit func(*resource.Node)) {
	r.tree.Walk(resource.RootPath, visit)
}

// Paths returns every node path in pre-order.
func (r *Repository) Paths() []string {
	return r.tree.Paths()
}

// Add attaches source at path. A file source backs a single node; a
// directory source grafts its whole subtree below path. When path already
// exists the new source is layered on top of the existing ones.
func (r *Repository) Add(path, source string) (*resource.Node, error) {
	if err := r.checkWritable("add"); err != nil {
		return nil, err
	}

	canonical, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if source == "" {
		return nil, rerrors.NewInvalidPath(source, "source must not be empty")
	}

	entry, err := r.locator.Stat(source)
	if err != nil {
		return nil, err
	}

	return r.graft(canonical, entry, canonical, entry.Path)
}

// Extend grafts source at path as part of layer, the location of an
// existing add. Removing that add's directory later detaches what Extend
// grafted as well. It is used for sources that appear below a mounted
// directory after the mount.
func (r *Repository) Extend(path, source string, layer resource.Location) (*resource.Node, error) {
	if err := r.checkWritable("extend"); err != nil {
		return nil, err
	}

	canonical, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if layer.Mount == "" || layer.Source == "" {
		return nil, rerrors.NewInvalidPath(canonical, "layer has no mount")
	}

	entry, err := r.locator.Stat(source)
	if err != nil {
		return nil, err
	}

	return r.graft(canonical, entry, layer.Mount, layer.Source)
}

func (r *Repository) graft(path string, entry locator.Entry, mount, source string) (*resource.Node, error) {
	steps, err := r.plan(path, entry, mount, source)
	if err != nil {
		return nil, err
	}
	if err := r.checkPlan(steps); err != nil {
		return nil, err
	}

	if err := r.apply(steps); err != nil {
		return nil, err
	}

	r.logger.Debug(context.Background(), "added source",
		"path", path, "source", entry.Path, "layer", source, "nodes", len(steps))

	node, _ := r.tree.Get(path)

	return node, nil
}

// Link attaches an opaque non-filesystem reference at path, such as an
// archive member.
func (r *Repository) Link(path, ref string) (*resource.Node, error) {
	if err := r.checkWritable("link"); err != nil {
		return nil, err
	}

	canonical, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		return nil, rerrors.NewInvalidPath(ref, "reference must not be empty")
	}

	steps := []step{{path: canonical, loc: resource.NewLocation(resource.KindGeneric, ref, canonical)}}
	if err := r.checkPlan(steps); err != nil {
		return nil, err
	}
	if err := r.apply(steps); err != nil {
		return nil, err
	}

	r.logger.Debug(context.Background(), "linked reference", "path", canonical, "ref", ref)

	node, _ := r.tree.Get(canonical)

	return node, nil
}

// AddLocation layers a prepared location at path without consulting the
// locator. It is used to rebuild repositories from dumps.
func (r *Repository) AddLocation(path string, loc resource.Location) (*resource.Node, error) {
	if err := r.checkWritable("add location"); err != nil {
		return nil, err
	}

	canonical, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	steps := []step{{path: canonical, loc: loc}}
	if err := r.checkPlan(steps); err != nil {
		return nil, err
	}
	if err := r.apply(steps); err != nil {
		return nil, err
	}

	node, _ := r.tree.Get(canonical)

	return node, nil
}

// Remove deletes every node selected by pattern together with its subtree
// and returns the removed paths. The root cannot be removed; wildcard
// selectors skip it.
func (r *Repository) Remove(pattern string) ([]string, error) {
	if err := r.checkWritable("remove"); err != nil {
		return nil, err
	}

	matches, err := r.Find(pattern)
	if err != nil {
		return nil, err
	}

	targets := make([]string, 0, len(matches))
	for _, n := range matches {
		if n.Path() == resource.RootPath {
			if !pathpattern.IsPattern(pattern) {
				return nil, rerrors.NewRemovalNotAllowed(n.Path())
			}
			continue
		}
		targets = append(targets, n.Path())
	}

	var removed []string
	for _, path := range targets {
		if !r.tree.Contains(path) {
			continue
		}
		gone, err := r.tree.RemoveNode(path)
		if err != nil {
			return removed, err
		}
		removed = append(removed, gone...)
	}

	r.tags.retain(r.tree.Contains)

	r.logger.Debug(context.Background(), "removed resources",
		"pattern", pattern, "removed", len(removed))

	return removed, nil
}

// RemoveLocation detaches one backing layer from path. Removing a directory
// layer also detaches what it grafted below path. Nodes left without
// locations or children are pruned and returned.
func (r *Repository) RemoveLocation(path, physical string) ([]string, error) {
	if err := r.checkWritable("remove location"); err != nil {
		return nil, err
	}

	node, err := r.Get(path)
	if err != nil {
		return nil, err
	}

	target := physical
	if !hasLocation(node, target) {
		target = r.locator.Abs(physical)
	}
	if !hasLocation(node, target) {
		return nil, rerrors.NewLocationNotFound(node.Path(), physical)
	}

	canonical := node.Path()
	touched := r.tree.LayerNodes(canonical, target)
	for _, p := range touched {
		if err := r.recordPrior(p); err != nil {
			return nil, err
		}
	}

	pruned, err := r.tree.RemoveLocation(canonical, target)
	if err != nil {
		return nil, err
	}
	r.tags.retain(r.tree.Contains)

	for _, p := range touched {
		if err := r.record(p); err != nil {
			return pruned, err
		}
	}

	r.logger.Debug(context.Background(), "removed location",
		"path", canonical, "location", target, "pruned", len(pruned))

	return pruned, nil
}

func hasLocation(node *resource.Node, physical string) bool {
	for _, loc := range node.Locations() {
		if loc.Path == physical {
			return true
		}
	}

	return false
}
