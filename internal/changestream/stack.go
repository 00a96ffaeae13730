package changestream

import (
	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/resource"
)

// Source is the live repository a stack is built against.
type Source interface {
	Contains(path string) bool
}

// Stack is the materialized history of one path, newest last.
type Stack struct {
	path      string
	live      bool
	first     int
	snapshots []Snapshot
	nodes     []*resource.Node
}

// Path returns the repository path.
func (s *Stack) Path() string {
	return s.path
}

// Live reports whether the path existed in the repository when the stack
// was built.
func (s *Stack) Live() bool {
	return s.live
}

// Len returns the number of versions.
func (s *Stack) Len() int {
	return len(s.nodes)
}

// Versions returns the version numbers in ascending order.
func (s *Stack) Versions() []int {
	out := make([]int, len(s.nodes))
	for i := range s.nodes {
		out[i] = s.first + i
	}

	return out
}

// Get returns the node rebuilt from the given version.
func (s *Stack) Get(version int) (*resource.Node, error) {
	i := version - s.first
	if i < 0 || i >= len(s.nodes) {
		return nil, rerrors.NewOutOfRange(s.path, version, s.first, s.first+len(s.nodes)-1)
	}

	return s.nodes[i], nil
}

// Snapshot returns the raw snapshot of the given version.
func (s *Stack) Snapshot(version int) (Snapshot, error) {
	i := version - s.first
	if i < 0 || i >= len(s.snapshots) {
		return Snapshot{}, rerrors.NewOutOfRange(s.path, version, s.first, s.first+len(s.snapshots)-1)
	}

	return s.snapshots[i], nil
}

// Current returns the newest version.
func (s *Stack) Current() *resource.Node {
	return s.nodes[len(s.nodes)-1]
}

// First returns the oldest retained version.
func (s *Stack) First() *resource.Node {
	return s.nodes[0]
}
