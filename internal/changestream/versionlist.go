package changestream

import (
	"iter"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
)

// VersionList is the ordered history of one path. It has no exported
// mutators: snapshots are appended only through the owning Stream.
type VersionList struct {
	path      string
	first     int
	snapshots []Snapshot
}

// NewVersionList builds a standalone list from at least one snapshot of the
// same path. Versions are numbered from 0 in the given order.
func NewVersionList(path string, snapshots ...Snapshot) (*VersionList, error) {
	if len(snapshots) == 0 {
		return nil, rerrors.NewNoHistory(path)
	}

	l := &VersionList{path: path}
	for _, s := range snapshots {
		if s.Path() != path {
			return nil, rerrors.NewInvalidPath(s.Path(), "snapshot belongs to another path").
				WithContext("list", path)
		}
		l.snapshots = append(l.snapshots, s)
	}

	return l, nil
}

// Path returns the repository path the list belongs to.
func (l *VersionList) Path() string {
	return l.path
}

// Count returns the number of retained versions.
func (l *VersionList) Count() int {
	return len(l.snapshots)
}

// FirstVersion returns the oldest retained version number.
func (l *VersionList) FirstVersion() int {
	return l.first
}

// CurrentVersion returns the newest version number.
func (l *VersionList) CurrentVersion() int {
	return l.first + len(l.snapshots) - 1
}

// First returns the oldest retained snapshot.
func (l *VersionList) First() Snapshot {
	return l.snapshots[0]
}

// Current returns the newest snapshot.
func (l *VersionList) Current() Snapshot {
	return l.snapshots[len(l.snapshots)-1]
}

// Contains reports whether version is retained.
func (l *VersionList) Contains(version int) bool {
	return version >= l.first && version <= l.CurrentVersion()
}

// Get returns the snapshot with the given version number.
func (l *VersionList) Get(version int) (Snapshot, error) {
	if !l.Contains(version) {
		return Snapshot{}, rerrors.NewOutOfRange(l.path, version, l.first, l.CurrentVersion())
	}

	return l.snapshots[version-l.first], nil
}

// Versions returns the retained version numbers in ascending order.
func (l *VersionList) Versions() []int {
	out := make([]int, len(l.snapshots))
	for i := range l.snapshots {
		out[i] = l.first + i
	}

	return out
}

// Snapshots returns the retained snapshots, oldest first.
func (l *VersionList) Snapshots() []Snapshot {
	return append([]Snapshot(nil), l.snapshots...)
}

// All iterates versions in ascending order.
func (l *VersionList) All() iter.Seq2[int, Snapshot] {
	return func(yield func(int, Snapshot) bool) {
		for i, s := range l.snapshots {
			if !yield(l.first+i, s) {
				return
			}
		}
	}
}

func (l *VersionList) push(s Snapshot, limit int) int {
	l.snapshots = append(l.snapshots, s)

	if limit > 0 && len(l.snapshots) > limit {
		drop := len(l.snapshots) - limit
		l.snapshots = append([]Snapshot(nil), l.snapshots[drop:]...)
		l.first += drop
	}

	return l.CurrentVersion()
}
