package resource

import "github.com/conneroisu/resrepo/internal/pathpattern"

// Node is one repository path. Nodes are created and mutated only through a
// Tree; the exported methods are read-only.
type Node struct {
	path      string
	locations []Location
	children  []string
}

func newNode(path string) *Node {
	return &Node{path: path}
}

// Path returns the canonical repository path.
func (n *Node) Path() string {
	return n.path
}

// Name returns the last path segment, or "" for the root.
func (n *Node) Name() string {
	return pathpattern.Base(n.path)
}

// Kind derives the node's variant. A node with children is a directory; a
// node without locations only exists as an implicit ancestor and is a
// directory too. Otherwise the winning location decides.
func (n *Node) Kind() Kind {
	if len(n.children) > 0 || len(n.locations) == 0 {
		return KindDirectory
	}

	return n.locations[len(n.locations)-1].Kind
}

// IsDirectory reports whether children can be listed.
func (n *Node) IsDirectory() bool {
	return n.Kind() == KindDirectory
}

// Location returns the winning (last added) backing location.
func (n *Node) Location() (Location, bool) {
	if len(n.locations) == 0 {
		return Location{}, false
	}

	return n.locations[len(n.locations)-1], true
}

// Locations returns every backing location, earliest first.
func (n *Node) Locations() []Location {
	out := make([]Location, len(n.locations))
	copy(out, n.locations)

	return out
}

// HasLocations reports whether the node has its own backing.
func (n *Node) HasLocations() bool {
	return len(n.locations) > 0
}

// ChildNames returns child names in insertion order.
func (n *Node) ChildNames() []string {
	out := make([]string, len(n.children))
	copy(out, n.children)

	return out
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	return len(n.children) > 0
}

// Equal compares nodes by path.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}

	return n.path == other.path
}

func (n *Node) indexOfLocation(physical string) int {
	for i, loc := range n.locations {
		if loc.Path == physical {
			return i
		}
	}

	return -1
}

func (n *Node) appendLocation(loc Location) {
	if i := n.indexOfLocation(loc.Path); i >= 0 {
		n.locations = append(n.locations[:i], n.locations[i+1:]...)
	}
	n.locations = append(n.locations, loc)
}

func (n *Node) addChild(name string) {
	for _, existing := range n.children {
		if existing == name {
			return
		}
	}
	n.children = append(n.children, name)
}

func (n *Node) removeChild(name string) {
	for i, existing := range n.children {
		if existing == name {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// NewDetached builds a node that belongs to no tree, e.g. a historical
// version rebuilt from a snapshot. Its child names are informational.
func NewDetached(path string, locations []Location, children []string) *Node {
	return &Node{
		path:      path,
		locations: append([]Location(nil), locations...),
		children:  append([]string(nil), children...),
	}
}
