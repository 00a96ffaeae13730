package changestream

import (
	"sort"
	"time"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/resource"
)

// Stream holds one VersionList per recorded path. It is not safe for
// concurrent use.
type Stream struct {
	lists       map[string]*VersionList
	normalizers *Normalizers
	maxVersions int
	now         func() time.Time
}

// Option configures a Stream.
type Option func(*Stream)

// WithMaxVersions bounds every list to n retained snapshots. Zero keeps
// everything.
func WithMaxVersions(n int) Option {
	return func(s *Stream) {
		s.maxVersions = n
	}
}

// WithNormalizers replaces the default codec table.
func WithNormalizers(n *Normalizers) Option {
	return func(s *Stream) {
		s.normalizers = n
	}
}

// WithClock sets the time source used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Stream) {
		s.now = now
	}
}

// New creates an empty stream.
func New(opts ...Option) *Stream {
	s := &Stream{
		lists:       make(map[string]*VersionList),
		normalizers: DefaultNormalizers(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Normalizers returns the codec table used by Record and BuildStack.
func (s *Stream) Normalizers() *Normalizers {
	return s.normalizers
}

// Append stores a snapshot as the newest version of its path and returns
// the assigned version number.
func (s *Stream) Append(snap Snapshot) (int, error) {
	if err := resource.ValidatePath(snap.Path()); err != nil {
		return 0, err
	}

	list, ok := s.lists[snap.Path()]
	if !ok {
		list = &VersionList{path: snap.Path()}
		s.lists[snap.Path()] = list
	}

	return list.push(snap.withRecorded(s.now()), s.maxVersions), nil
}

// Record normalizes a live node and appends it.
func (s *Stream) Record(node *resource.Node) (int, error) {
	snap, err := s.normalizers.Normalize(node)
	if err != nil {
		return 0, err
	}

	return s.Append(snap)
}

// Contains reports whether any version was recorded for path.
func (s *Stream) Contains(path string) bool {
	_, ok := s.lists[path]
	return ok
}

// Versions returns the list of path.
func (s *Stream) Versions(path string) (*VersionList, error) {
	list, ok := s.lists[path]
	if !ok {
		return nil, rerrors.NewNoHistory(path)
	}

	return list, nil
}

// Paths returns every recorded path in lexical order.
func (s *Stream) Paths() []string {
	out := make([]string, 0, len(s.lists))
	for path := range s.lists {
		out = append(out, path)
	}
	sort.Strings(out)

	return out
}

// BuildStack rebuilds every retained version of path as a detached node.
// The path does not need to exist in src; Live reports whether it does.
func (s *Stream) BuildStack(src Source, path string) (*Stack, error) {
	list, err := s.Versions(path)
	if err != nil {
		return nil, err
	}

	stack := &Stack{
		path:      path,
		first:     list.FirstVersion(),
		snapshots: list.Snapshots(),
	}
	if src != nil {
		stack.live = src.Contains(path)
	}

	for _, snap := range stack.snapshots {
		node, err := s.normalizers.Denormalize(snap)
		if err != nil {
			return nil, err
		}
		stack.nodes = append(stack.nodes, node)
	}

	return stack, nil
}
