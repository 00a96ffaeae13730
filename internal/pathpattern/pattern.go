package pathpattern

import (
	"regexp"
	"strings"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
)

// Wildcard is the only selector metacharacter.
const Wildcard = '*'

const escape = '\\'

// Pattern is a compiled selector. It is immutable and safe to reuse.
type Pattern struct {
	raw      string
	prefix   string
	literal  string
	base     string
	wildcard bool
	re       *regexp.Regexp
}

// scanned is the result of a single escape-aware pass over a selector.
type scanned struct {
	// prefix holds the unescaped characters before the first wildcard.
	prefix string
	// literal holds the whole selector unescaped; only meaningful without
	// wildcards.
	literal  string
	wildcard bool
	expr     string
}

// scan walks the selector once. Escapes are consumed in pairs from the
// left, so an even run of backslashes before `*` leaves the star active and
// an odd run neutralizes it.
func scan(pattern string) scanned {
	var (
		out      scanned
		unesc    strings.Builder
		chunk    strings.Builder
		expr     strings.Builder
		wildcard bool
	)

	expr.WriteString(`(?s)^`)

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]

		switch {
		case c == escape && i+1 < len(pattern) && (pattern[i+1] == Wildcard || pattern[i+1] == escape):
			unesc.WriteByte(pattern[i+1])
			chunk.WriteByte(pattern[i+1])
			i++
		case c == Wildcard:
			if !wildcard {
				out.prefix = unesc.String()
				wildcard = true
			}
			expr.WriteString(regexp.QuoteMeta(chunk.String()))
			expr.WriteString(".*")
			chunk.Reset()
		default:
			unesc.WriteByte(c)
			chunk.WriteByte(c)
		}
	}

	expr.WriteString(regexp.QuoteMeta(chunk.String()))
	expr.WriteString("$")

	out.literal = unesc.String()
	out.wildcard = wildcard
	out.expr = expr.String()
	if !wildcard {
		out.prefix = out.literal
	}

	return out
}

// IsPattern reports whether s contains an unescaped wildcard.
func IsPattern(s string) bool {
	if strings.IndexByte(s, Wildcard) < 0 {
		return false
	}

	return scan(s).wildcard
}

// StaticPrefix returns the unescaped characters before the first unescaped
// wildcard, or the whole unescaped selector if it has none.
func StaticPrefix(pattern string) string {
	return scan(pattern).prefix
}

// BasePath returns the deepest literal directory that contains every path
// the selector can match: the static prefix cut at its last slash. It is "/"
// when that slash is the first character and "" when there is none.
func BasePath(pattern string) string {
	return basePath(StaticPrefix(pattern))
}

func basePath(prefix string) string {
	idx := strings.LastIndex(prefix, Separator)
	switch {
	case idx < 0:
		return ""
	case idx == 0:
		return Separator
	default:
		return prefix[:idx]
	}
}

// Unescape removes selector escapes, turning `\*` into `*` and `\\` into `\`.
func Unescape(pattern string) string {
	if strings.IndexByte(pattern, escape) < 0 {
		return pattern
	}

	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == escape && i+1 < len(pattern) && (pattern[i+1] == Wildcard || pattern[i+1] == escape) {
			b.WriteByte(pattern[i+1])
			i++
			continue
		}
		b.WriteByte(c)
	}

	return b.String()
}

// Escape quotes a literal path so that it can be embedded in a selector.
func Escape(path string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`)
	return r.Replace(path)
}

// Compile parses a selector into a Pattern.
func Compile(pattern string) (*Pattern, error) {
	if pattern == "" {
		return nil, rerrors.NewInvalidPattern(pattern, "selector must not be empty", nil)
	}

	s := scan(pattern)
	p := &Pattern{
		raw:      pattern,
		prefix:   s.prefix,
		literal:  s.literal,
		base:     basePath(s.prefix),
		wildcard: s.wildcard,
	}

	if s.wildcard {
		re, err := regexp.Compile(s.expr)
		if err != nil {
			return nil, rerrors.NewInvalidPattern(pattern, "selector does not compile", err)
		}
		p.re = re
	}

	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}

	return p
}

// String returns the selector as written.
func (p *Pattern) String() string {
	return p.raw
}

// IsPattern reports whether the selector contains a wildcard.
func (p *Pattern) IsPattern() bool {
	return p.wildcard
}

// StaticPrefix returns the unescaped text before the first wildcard.
func (p *Pattern) StaticPrefix() string {
	return p.prefix
}

// BasePath returns the deepest literal directory of the selector.
func (p *Pattern) BasePath() string {
	return p.base
}

// Literal returns the unescaped selector. For wildcard selectors this is not
// a path and should not be used for lookups.
func (p *Pattern) Literal() string {
	return p.literal
}

// Match reports whether path is selected. Literal selectors match by string
// equality only.
func (p *Pattern) Match(path string) bool {
	if !p.wildcard {
		return path == p.literal
	}

	if !strings.HasPrefix(path, p.prefix) {
		return false
	}

	return p.re.MatchString(path)
}

// Filter returns the paths selected by p, preserving order.
func (p *Pattern) Filter(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if p.Match(path) {
			out = append(out, path)
		}
	}

	return out
}

// Filter compiles pattern and returns the selected paths in input order.
func Filter(paths []string, pattern string) ([]string, error) {
	p, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	return p.Filter(paths), nil
}
