// Package dump reads and writes the serialized form of a repository: a map
// from repository path to its physical locations, a map from tag to member
// paths and a config record holding the root directory that relative
// locations are stored against.
//
// A repository can be rebuilt from a dump without touching the filesystem.
package dump

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/resrepo/internal/resource"
)

// FormatVersion is written to every dump and checked on read.
const FormatVersion = 1

// RefPrefix marks a location that is an opaque reference rather than a
// filesystem path.
const RefPrefix = "ref:"

// dirSuffix marks a directory location.
const dirSuffix = "/"

// Config is the dump's config record.
type Config struct {
	RootDir string `yaml:"root_dir"`
}

// Dump is the serialized repository.
type Dump struct {
	Version int        `yaml:"version"`
	Config  Config     `yaml:"config"`
	Paths   OrderedMap `yaml:"paths"`
	Tags    OrderedMap `yaml:"tags"`
}

// Entry is one key of an OrderedMap.
type Entry struct {
	Key    string
	Values []string
}

// OrderedMap is a string-list mapping that keeps its key order through a
// YAML round trip.
type OrderedMap []Entry

// Get returns the values stored under key.
func (m OrderedMap) Get(key string) ([]string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Values, true
		}
	}

	return nil, false
}

// Keys returns the keys in order.
func (m OrderedMap) Keys() []string {
	out := make([]string, len(m))
	for i, e := range m {
		out[i] = e.Key
	}

	return out
}

// Map converts to a plain map.
func (m OrderedMap) Map() map[string][]string {
	out := make(map[string][]string, len(m))
	for _, e := range m {
		out[e.Key] = append(out[e.Key], e.Values...)
	}

	return out
}

// MarshalYAML implements yaml.Marshaler.
func (m OrderedMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}

		values := e.Values
		if values == nil {
			values = []string{}
		}
		val := &yaml.Node{}
		if err := val.Encode(values); err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", e.Key, err)
		}

		node.Content = append(node.Content, key, val)
	}

	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *OrderedMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*m = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", value.Line)
	}

	out := make(OrderedMap, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var values []string
		if err := value.Content[i+1].Decode(&values); err != nil {
			return fmt.Errorf("line %d: %w", value.Content[i+1].Line, err)
		}
		out = append(out, Entry{Key: value.Content[i].Value, Values: values})
	}
	*m = out

	return nil
}

// anchor marks a relative path that would otherwise read as a reference.
const anchor = "./"

// encodeLocation renders one location. Directories carry a trailing slash
// and references the RefPrefix.
func encodeLocation(loc resource.Location, rel func(string) string) string {
	if loc.Kind == resource.KindGeneric {
		return RefPrefix + loc.Path
	}

	p := rel(loc.Path)
	if strings.HasPrefix(p, RefPrefix) {
		p = anchor + p
	}
	if loc.Kind == resource.KindDirectory {
		return strings.TrimSuffix(p, dirSuffix) + dirSuffix
	}

	return p
}

// decodeLocation parses a stored location into its kind and physical path.
func decodeLocation(s string, abs func(string) string) (resource.Kind, string) {
	switch {
	case strings.HasPrefix(s, RefPrefix):
		return resource.KindGeneric, strings.TrimPrefix(s, RefPrefix)
	case strings.HasSuffix(s, dirSuffix) && s != dirSuffix:
		return resource.KindDirectory, abs(strings.TrimSuffix(s, dirSuffix))
	case s == dirSuffix:
		return resource.KindDirectory, abs(s)
	default:
		return resource.KindFile, abs(s)
	}
}
