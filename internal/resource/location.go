package resource

import (
	"fmt"
	"time"
)

// Location is one physical backing of a repository path.
//
// Mount and Source identify the layer the location belongs to: Source is the
// physical path handed to the repository and Mount the repository path it was
// attached at. Locations grafted from a directory share their parent's layer.
type Location struct {
	Kind   Kind
	Path   string
	Mount  string
	Source string
}

// NewLocation returns a location that forms its own layer.
func NewLocation(kind Kind, physical, mount string) Location {
	return Location{
		Kind:   kind,
		Path:   physical,
		Mount:  mount,
		Source: physical,
	}
}

// SameLayer reports whether both locations were attached by the same add.
func (l Location) SameLayer(other Location) bool {
	return l.Mount == other.Mount && l.Source == other.Source
}

// String implements fmt.Stringer.
func (l Location) String() string {
	return fmt.Sprintf("%s:%s", l.Kind, l.Path)
}

// Metadata describes a resource's backing as reported by the locator. Zero
// values mean the backing does not expose the attribute.
type Metadata struct {
	Size       int64
	ModTime    time.Time
	AccessTime time.Time
	ChangeTime time.Time
}

// IsZero reports whether no attribute is known.
func (m Metadata) IsZero() bool {
	return m.Size == 0 && m.ModTime.IsZero() && m.AccessTime.IsZero() && m.ChangeTime.IsZero()
}
