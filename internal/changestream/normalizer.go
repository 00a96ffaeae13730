package changestream

import (
	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/resource"
)

// Codec turns a live node of one kind into a snapshot and back.
type Codec struct {
	Encode func(*resource.Node) (Snapshot, error)
	Decode func(Snapshot) (*resource.Node, error)
}

// Normalizers is the dispatch table of codecs keyed on resource kind. Each
// kind is claimed by at most one codec.
type Normalizers struct {
	codecs map[resource.Kind]Codec
}

// NewNormalizers returns a table holding the given codecs.
func NewNormalizers(codecs map[resource.Kind]Codec) *Normalizers {
	n := &Normalizers{codecs: make(map[resource.Kind]Codec, len(codecs))}
	for kind, codec := range codecs {
		n.codecs[kind] = codec
	}

	return n
}

// DefaultNormalizers returns a table covering every resource kind.
func DefaultNormalizers() *Normalizers {
	return NewNormalizers(map[resource.Kind]Codec{
		resource.KindGeneric:   {Encode: encodeGeneric, Decode: decodeGeneric},
		resource.KindFile:      {Encode: encodeFile, Decode: decodeFile},
		resource.KindDirectory: {Encode: encodeDirectory, Decode: decodeDirectory},
	})
}

// Supports reports whether a codec claims the node's kind.
func (n *Normalizers) Supports(node *resource.Node) bool {
	_, ok := n.codecs[node.Kind()]
	return ok
}

// Normalize encodes a live node.
func (n *Normalizers) Normalize(node *resource.Node) (Snapshot, error) {
	codec, ok := n.codecs[node.Kind()]
	if !ok {
		return Snapshot{}, rerrors.NewUnsupported(node.Path(), node.Kind().String())
	}

	return codec.Encode(node)
}

// Denormalize rebuilds a detached node from a snapshot.
func (n *Normalizers) Denormalize(s Snapshot) (*resource.Node, error) {
	codec, ok := n.codecs[s.Kind()]
	if !ok {
		return nil, rerrors.NewUnsupported(s.Path(), s.Kind().String())
	}

	return codec.Decode(s)
}

func encodeGeneric(node *resource.Node) (Snapshot, error) {
	return NewSnapshot(node.Path(), resource.KindGeneric, node.Locations(), nil), nil
}

func decodeGeneric(s Snapshot) (*resource.Node, error) {
	if len(s.locations) == 0 {
		return nil, rerrors.NewInvalidPath(s.path, "generic snapshot has no reference")
	}
	if last := s.locations[len(s.locations)-1]; last.Kind != resource.KindGeneric {
		return nil, rerrors.NewUnsupported(s.path, last.Kind.String())
	}

	return resource.NewDetached(s.path, s.locations, nil), nil
}

func encodeFile(node *resource.Node) (Snapshot, error) {
	return NewSnapshot(node.Path(), resource.KindFile, node.Locations(), nil), nil
}

func decodeFile(s Snapshot) (*resource.Node, error) {
	if len(s.locations) == 0 {
		return nil, rerrors.NewInvalidPath(s.path, "file snapshot has no location")
	}
	if last := s.locations[len(s.locations)-1]; last.Kind != resource.KindFile {
		return nil, rerrors.NewUnsupported(s.path, last.Kind.String())
	}

	return resource.NewDetached(s.path, s.locations, nil), nil
}

func encodeDirectory(node *resource.Node) (Snapshot, error) {
	return NewSnapshot(node.Path(), resource.KindDirectory, node.Locations(), node.ChildNames()), nil
}

func decodeDirectory(s Snapshot) (*resource.Node, error) {
	n := resource.NewDetached(s.path, s.locations, s.children)
	if !n.IsDirectory() {
		return nil, rerrors.NewUnsupported(s.path, n.Kind().String())
	}

	return n, nil
}
