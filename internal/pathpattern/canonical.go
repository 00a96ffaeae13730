// Package pathpattern canonicalizes repository paths and compiles glob-style
// selectors into matchers.
//
// A selector may contain any number of `*` wildcards. Unlike shell globs a
// wildcard matches any run of characters including `/`, so "/css/*.css"
// selects stylesheets at any depth below /css. `\*` denotes a literal star and
// `\\` a literal backslash.
package pathpattern

import "strings"

// Separator is the repository path separator.
const Separator = "/"

// Canonicalize normalizes a repository path: backslashes become slashes,
// empty and "." segments are dropped, ".." removes the previous segment. A
// ".." that would climb above the root of an absolute path is discarded.
// Relative paths keep their leading ".." segments.
func Canonicalize(path string) string {
	if path == "" {
		return ""
	}

	return canonicalize(strings.ReplaceAll(path, `\`, Separator))
}

// CanonicalizePattern resolves "." and ".." segments of a selector while
// leaving backslash escapes untouched.
func CanonicalizePattern(pattern string) string {
	if pattern == "" {
		return ""
	}

	return canonicalize(pattern)
}

func canonicalize(path string) string {
	absolute := strings.HasPrefix(path, Separator)
	segments := strings.Split(path, Separator)
	out := make([]string, 0, len(segments))

	for _, segment := range segments {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
				continue
			}
			if !absolute {
				out = append(out, segment)
			}
		default:
			out = append(out, segment)
		}
	}

	joined := strings.Join(out, Separator)
	if absolute {
		return Separator + joined
	}

	return joined
}

// IsAbsolute reports whether path starts at the repository root.
func IsAbsolute(path string) bool {
	return strings.HasPrefix(path, Separator)
}

// Join appends a child name to a canonical directory path.
func Join(dir, name string) string {
	if dir == Separator {
		return Separator + name
	}

	return dir + Separator + name
}

// Dir returns the parent of a canonical absolute path. The parent of the
// root is the root.
func Dir(path string) string {
	idx := strings.LastIndex(path, Separator)
	if idx <= 0 {
		return Separator
	}

	return path[:idx]
}

// Base returns the last segment of a canonical path, or "" for the root.
func Base(path string) string {
	return path[strings.LastIndex(path, Separator)+1:]
}

// IsAncestor reports whether ancestor is a proper ancestor of path. Both
// must be canonical and absolute.
func IsAncestor(ancestor, path string) bool {
	if ancestor == path {
		return false
	}
	if ancestor == Separator {
		return true
	}

	return strings.HasPrefix(path, ancestor+Separator)
}
