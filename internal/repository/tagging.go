package repository

import (
	"context"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/resource"
)

// Tag adds every node selected by pattern to the named tag, creating the tag
// on first use. The selected nodes are returned.
func (r *Repository) Tag(pattern, name string) ([]*resource.Node, error) {
	if err := r.checkWritable("tag"); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, rerrors.NewInvalidPath(name, "tag name must not be empty")
	}

	matches, err := r.Find(pattern)
	if err != nil {
		return nil, err
	}

	added := 0
	for _, n := range matches {
		if r.tags.add(name, n.Path()) {
			added++
		}
	}

	r.logger.Debug(context.Background(), "tagged resources",
		"pattern", pattern, "tag", name, "added", added)

	return matches, nil
}

// Untag removes every node selected by pattern from the named tags. Without
// names the nodes leave every tag they belong to. Tags left without members
// are destroyed.
func (r *Repository) Untag(pattern string, names ...string) ([]*resource.Node, error) {
	if err := r.checkWritable("untag"); err != nil {
		return nil, err
	}

	matches, err := r.Find(pattern)
	if err != nil {
		return nil, err
	}

	removed := 0
	for _, n := range matches {
		if len(names) == 0 {
			removed += r.tags.clear(n.Path())
			continue
		}
		for _, name := range names {
			if r.tags.remove(name, n.Path()) {
				removed++
			}
		}
	}

	r.logger.Debug(context.Background(), "untagged resources",
		"pattern", pattern, "tags", names, "removed", removed)

	return matches, nil
}

// GetByTag returns the current members of a tag in the order they were
// tagged. An unknown tag has no members.
func (r *Repository) GetByTag(name string) []*resource.Node {
	paths := r.tags.membersOf(name)
	out := make([]*resource.Node, 0, len(paths))
	for _, path := range paths {
		if node, ok := r.tree.Get(path); ok {
			out = append(out, node)
		}
	}

	return out
}

// Tags returns every tag name in creation order.
func (r *Repository) Tags() []string {
	return r.tags.names()
}

// TagsOf returns the tags of the node at path.
func (r *Repository) TagsOf(path string) ([]string, error) {
	node, err := r.Get(path)
	if err != nil {
		return nil, err
	}

	return r.tags.tagsOf(node.Path()), nil
}
