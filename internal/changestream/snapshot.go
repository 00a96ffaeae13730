// Package changestream records the history of repository resources.
//
// Every recorded state is an immutable Snapshot appended to the VersionList
// of its path. Version numbers start at 0, grow by one per append and are
// never renumbered, also when a bounded stream drops old snapshots. History
// outlives the live resource: a removed path keeps its list.
//
// Snapshots are produced and consumed by Normalizers, a closed dispatch
// table keyed on resource.Kind.
package changestream

import (
	"time"

	"github.com/conneroisu/resrepo/internal/resource"
)

// Snapshot is the recorded state of one resource. It is immutable; accessors
// return copies.
type Snapshot struct {
	path      string
	kind      resource.Kind
	locations []resource.Location
	children  []string
	recorded  time.Time
}

// NewSnapshot creates a snapshot, copying the given slices.
func NewSnapshot(path string, kind resource.Kind, locations []resource.Location, children []string) Snapshot {
	return Snapshot{
		path:      path,
		kind:      kind,
		locations: append([]resource.Location(nil), locations...),
		children:  append([]string(nil), children...),
	}
}

// Path returns the repository path.
func (s Snapshot) Path() string {
	return s.path
}

// Kind returns the resource kind at recording time.
func (s Snapshot) Kind() resource.Kind {
	return s.kind
}

// Locations returns the backing locations, earliest first.
func (s Snapshot) Locations() []resource.Location {
	return append([]resource.Location(nil), s.locations...)
}

// Children returns the child names of a directory snapshot.
func (s Snapshot) Children() []string {
	return append([]string(nil), s.children...)
}

// Recorded returns when the stream stored the snapshot. It is zero for
// snapshots that were never appended.
func (s Snapshot) Recorded() time.Time {
	return s.recorded
}

// Equivalent reports whether both snapshots describe the same state,
// ignoring the recording time.
func (s Snapshot) Equivalent(other Snapshot) bool {
	if s.path != other.path || s.kind != other.kind {
		return false
	}
	if len(s.locations) != len(other.locations) || len(s.children) != len(other.children) {
		return false
	}
	for i := range s.locations {
		if s.locations[i] != other.locations[i] {
			return false
		}
	}
	for i := range s.children {
		if s.children[i] != other.children[i] {
			return false
		}
	}

	return true
}

func (s Snapshot) withRecorded(t time.Time) Snapshot {
	s.recorded = t
	return s
}
