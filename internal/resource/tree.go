package resource

import (
	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/pathpattern"
)

// RootPath is the path of the repository root.
const RootPath = "/"

// Tree is the arena that owns every node, keyed by canonical path. Parent and
// child links are names resolved through the arena, never pointers.
//
// Every node except the root has at least one location or at least one
// child; operations that would break this prune the offending nodes and
// report their paths.
//
// A Tree is not safe for concurrent use.
type Tree struct {
	nodes map[string]*Node
}

// NewTree creates a tree holding only the root directory.
func NewTree() *Tree {
	return &Tree{
		nodes: map[string]*Node{RootPath: newNode(RootPath)},
	}
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.nodes[RootPath]
}

// Get returns the node at path.
func (t *Tree) Get(path string) (*Node, bool) {
	n, ok := t.nodes[path]
	return n, ok
}

// Contains reports whether path has a node.
func (t *Tree) Contains(path string) bool {
	_, ok := t.nodes[path]
	return ok
}

// Len returns the number of nodes including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// ValidatePath checks that path is a non-empty canonical absolute path.
func ValidatePath(path string) error {
	if path == "" {
		return rerrors.NewInvalidPath(path, "path must not be empty")
	}
	if !pathpattern.IsAbsolute(path) {
		return rerrors.NewInvalidPath(path, "path must be absolute")
	}
	if pathpattern.Canonicalize(path) != path {
		return rerrors.NewInvalidPath(path, "path is not canonical")
	}

	return nil
}

// AddLocation layers loc on top of the node at path, creating the node and
// any missing ancestor directories.
func (t *Tree) AddLocation(path string, loc Location) (*Node, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	if !loc.Kind.Valid() {
		return nil, rerrors.NewUnsupported(path, loc.Kind.String())
	}

	if node, ok := t.nodes[path]; ok {
		if loc.Kind != KindDirectory && (node.HasChildren() || path == RootPath) {
			return nil, rerrors.NewNotADirectory(path).WithContext("location", loc.Path)
		}
		node.appendLocation(loc)
		return node, nil
	}

	parent, err := t.ensureParent(path)
	if err != nil {
		return nil, err
	}

	node := newNode(path)
	node.appendLocation(loc)
	t.nodes[path] = node
	parent.addChild(node.Name())

	return node, nil
}

// ensureParent returns the parent directory of path, creating implicit
// directories for missing ancestors. Nothing is created when an existing
// ancestor is not a directory.
func (t *Tree) ensureParent(path string) (*Node, error) {
	var missing []string

	dir := pathpattern.Dir(path)
	for {
		if n, ok := t.nodes[dir]; ok {
			if !n.IsDirectory() {
				return nil, rerrors.NewNotADirectory(dir)
			}
			break
		}
		missing = append(missing, dir)
		dir = pathpattern.Dir(dir)
	}

	for i := len(missing) - 1; i >= 0; i-- {
		p := missing[i]
		node := newNode(p)
		t.nodes[p] = node
		t.nodes[pathpattern.Dir(p)].addChild(node.Name())
	}

	return t.nodes[pathpattern.Dir(path)], nil
}

// ListChildren returns the children of a directory node in insertion order.
func (t *Tree) ListChildren(path string) ([]*Node, error) {
	node, ok := t.nodes[path]
	if !ok {
		return nil, rerrors.NewNotFound(path)
	}
	if !node.IsDirectory() {
		return nil, rerrors.NewNotADirectory(path)
	}

	out := make([]*Node, 0, len(node.children))
	for _, name := range node.children {
		out = append(out, t.nodes[pathpattern.Join(path, name)])
	}

	return out, nil
}

// RemoveLocation detaches the location with the given physical path. When
// it is a directory location the locations it grafted onto descendants go
// with it. Nodes left without locations or children are pruned; their
// paths are returned.
func (t *Tree) RemoveLocation(path, physical string) ([]string, error) {
	node, ok := t.nodes[path]
	if !ok {
		return nil, rerrors.NewNotFound(path)
	}

	i := node.indexOfLocation(physical)
	if i < 0 {
		return nil, rerrors.NewLocationNotFound(path, physical)
	}

	removed := node.locations[i]
	node.locations = append(node.locations[:i], node.locations[i+1:]...)

	if removed.Kind == KindDirectory {
		for _, d := range t.Subtree(path)[1:] {
			kept := d.locations[:0]
			for _, loc := range d.locations {
				if !loc.SameLayer(removed) {
					kept = append(kept, loc)
				}
			}
			d.locations = kept
		}
	}

	return t.prune(path), nil
}

// LayerNodes returns path followed by the descendants that carry locations
// of the layer RemoveLocation(path, physical) would detach, in pre-order.
// It is empty when path has no such location.
func (t *Tree) LayerNodes(path, physical string) []string {
	node, ok := t.nodes[path]
	if !ok {
		return nil
	}

	i := node.indexOfLocation(physical)
	if i < 0 {
		return nil
	}

	out := []string{path}
	layer := node.locations[i]
	if layer.Kind != KindDirectory {
		return out
	}

	for _, d := range t.Subtree(path)[1:] {
		for _, loc := range d.locations {
			if loc.SameLayer(layer) {
				out = append(out, d.path)
				break
			}
		}
	}

	return out
}

// ReplaceLocations sets the node's locations wholesale, creating the node
// when needed. An empty set on a missing node is a no-op and returns nil.
func (t *Tree) ReplaceLocations(path string, locs []Location) (*Node, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	node, ok := t.nodes[path]
	if !ok {
		if len(locs) == 0 {
			return nil, nil
		}
		node = newNode(path)
		parent, err := t.ensureParent(path)
		if err != nil {
			return nil, err
		}
		t.nodes[path] = node
		parent.addChild(node.Name())
	}

	if len(locs) > 0 {
		last := locs[len(locs)-1]
		if last.Kind != KindDirectory && (node.HasChildren() || path == RootPath) {
			return nil, rerrors.NewNotADirectory(path)
		}
	}

	node.locations = append([]Location(nil), locs...)
	t.prune(path)

	if n, ok := t.nodes[path]; ok {
		return n, nil
	}

	return nil, nil
}

// RemoveNode deletes the node and its whole subtree, then prunes implicit
// ancestors left empty. The removed paths are returned in pre-order.
func (t *Tree) RemoveNode(path string) ([]string, error) {
	if path == RootPath {
		return nil, rerrors.NewRemovalNotAllowed(path)
	}

	node, ok := t.nodes[path]
	if !ok {
		return nil, rerrors.NewNotFound(path)
	}

	sub := t.Subtree(path)
	removed := make([]string, 0, len(sub))
	for _, n := range sub {
		delete(t.nodes, n.path)
		removed = append(removed, n.path)
	}
	t.nodes[pathpattern.Dir(path)].removeChild(node.Name())

	return append(removed, t.pruneAncestors(pathpattern.Dir(path))...), nil
}

// prune removes empty nodes inside the subtree at path and then walks up
// through its ancestors.
func (t *Tree) prune(path string) []string {
	var removed []string

	sub := t.Subtree(path)
	for i := len(sub) - 1; i >= 0; i-- {
		n := sub[i]
		if n.path == RootPath || n.HasLocations() || n.HasChildren() {
			continue
		}
		t.detach(n)
		removed = append(removed, n.path)
	}

	if _, ok := t.nodes[path]; ok {
		return removed
	}

	return append(removed, t.pruneAncestors(pathpattern.Dir(path))...)
}

func (t *Tree) pruneAncestors(dir string) []string {
	var removed []string

	for dir != RootPath {
		n, ok := t.nodes[dir]
		if !ok || n.HasLocations() || n.HasChildren() {
			break
		}
		t.detach(n)
		removed = append(removed, dir)
		dir = pathpattern.Dir(dir)
	}

	return removed
}

func (t *Tree) detach(n *Node) {
	delete(t.nodes, n.path)
	if parent, ok := t.nodes[pathpattern.Dir(n.path)]; ok {
		parent.removeChild(n.Name())
	}
}

// Subtree returns the node at path followed by its descendants in pre-order,
// children in insertion order. It is empty when path does not exist.
func (t *Tree) Subtree(path string) []*Node {
	var out []*Node
	t.Walk(path, func(n *Node) {
		out = append(out, n)
	})

	return out
}

// Walk visits the node at path and its descendants in pre-order.
func (t *Tree) Walk(path string, visit func(*Node)) {
	node, ok := t.nodes[path]
	if !ok {
		return
	}

	visit(node)
	for _, name := range node.children {
		t.Walk(pathpattern.Join(path, name), visit)
	}
}

// Paths returns every node path in pre-order starting at the root.
func (t *Tree) Paths() []string {
	out := make([]string, 0, len(t.nodes))
	t.Walk(RootPath, func(n *Node) {
		out = append(out, n.path)
	})

	return out
}
