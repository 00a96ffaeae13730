// Package resource holds the in-memory node model of a repository: node
// kinds, physical backing locations and the path-keyed arena tree that owns
// every node.
//
// Nodes are addressed by canonical repository path. A node has zero or more
// ordered backing locations; the last one wins for single-valued reads while
// directory nodes list the union of the children grafted from every layer.
package resource

import "strings"

// Kind is the closed set of resource variants.
type Kind int

const (
	// KindGeneric is a resource backed by an opaque, non-filesystem reference.
	KindGeneric Kind = iota
	// KindFile is a resource backed by a physical file.
	KindFile
	// KindDirectory is a resource that can have children.
	KindDirectory
)

// Kinds lists every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindGeneric, KindFile, KindDirectory}
}

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name back into a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "generic":
		return KindGeneric, true
	case "file":
		return KindFile, true
	case "directory", "dir":
		return KindDirectory, true
	default:
		return 0, false
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindGeneric && k <= KindDirectory
}
