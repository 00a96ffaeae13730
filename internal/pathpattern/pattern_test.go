package pathpattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
)

func TestCanonicalize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"/", "/"},
		{"/a/b/../c", "/a/c"},
		{"/a/../../b", "/b"},
		{"/../a", "/a"},
		{"/a/./b/", "/a/b"},
		{"//a///b", "/a/b"},
		{`\app\css\style.css`, "/app/css/style.css"},
		{`/app\css/..\js`, "/app/js"},
		{"a/b/..", "a"},
		{"../a", "../a"},
		{"a/../../b", "../b"},
		{".", ""},
		{"/.", "/"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Canonicalize(tc.input))
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{"/a/b/../c", "/a/../../b", `..\x\..\y`, "a/./b//c/", "/"}

	for _, input := range inputs {
		once := Canonicalize(input)
		assert.Equal(t, once, Canonicalize(once), "input %q", input)
	}
}

func TestCanonicalizePattern_KeepsEscapes(t *testing.T) {
	assert.Equal(t, `/foo/\*.js~`, CanonicalizePattern(`/foo/./bar/../\*.js~`))
	assert.Equal(t, "/*", CanonicalizePattern("/*"))
	assert.Equal(t, "*", CanonicalizePattern("*"))
}

func TestIsPattern(t *testing.T) {
	assert.True(t, IsPattern("/foo/*"))
	assert.True(t, IsPattern("*"))
	assert.True(t, IsPattern(`/foo/\\*`), "even backslash run leaves the star active")
	assert.False(t, IsPattern("/foo/bar"))
	assert.False(t, IsPattern(`/foo/\*`))
	assert.False(t, IsPattern(`/foo/\\\*`), "odd backslash run neutralizes the star")
}

func TestStaticPrefix(t *testing.T) {
	assert.Equal(t, "/foo/baz/bar", StaticPrefix("/foo/baz/bar*"))
	assert.Equal(t, "", StaticPrefix("*"))
	assert.Equal(t, "/", StaticPrefix("/*"))
	assert.Equal(t, "/foo/bar", StaticPrefix("/foo/bar"))
	assert.Equal(t, "/foo/*.js", StaticPrefix(`/foo/\*.js*`))
	assert.Equal(t, `/foo\`, StaticPrefix(`/foo\\*`))
}

func TestBasePath(t *testing.T) {
	testCases := []struct {
		pattern  string
		expected string
	}{
		{"/foo/baz/bar*", "/foo/baz"},
		{"/*", "/"},
		{"foo*", ""},
		{"*", ""},
		{"/foo/*/bar", "/foo"},
		{"/foo/bar", "/foo"},
		{`/a\*b/c*`, "/a*b"},
	}

	for _, tc := range testCases {
		t.Run(tc.pattern, func(t *testing.T) {
			assert.Equal(t, tc.expected, BasePath(tc.pattern))
		})
	}
}

func TestPattern_MatchCrossesSeparators(t *testing.T) {
	p := MustCompile("/foo/*.js~")

	assert.True(t, p.IsPattern())
	assert.True(t, p.Match("/foo/baz.js~"))
	assert.True(t, p.Match("/foo/bar/baz.js~"))
	assert.False(t, p.Match("/bar/baz.js~"))
	assert.False(t, p.Match("foo/baz.js~"))
	assert.False(t, p.Match("/foo/baz.js"))
}

func TestPattern_EscapedWildcard(t *testing.T) {
	p := MustCompile(`/foo/\*.js~`)

	assert.False(t, p.IsPattern())
	assert.True(t, p.Match("/foo/*.js~"))
	assert.False(t, p.Match("/foo/baz.js~"))
}

func TestPattern_EscapedBackslashBeforeWildcard(t *testing.T) {
	p := MustCompile(`/foo\\*`)

	assert.True(t, p.IsPattern())
	assert.True(t, p.Match(`/foo\bar`))
	assert.False(t, p.Match("/foobar"))
}

func TestPattern_LiteralIsNeverPrefixMatch(t *testing.T) {
	p := MustCompile("/foo/bar")

	assert.True(t, p.Match("/foo/bar"))
	assert.False(t, p.Match("/foo/bar/baz"))
	assert.False(t, p.Match("/foo/barbaz"))
}

func TestPattern_RegexMetacharactersAreLiteral(t *testing.T) {
	p := MustCompile("/a.b/(x)+*")

	assert.True(t, p.Match("/a.b/(x)+y"))
	assert.False(t, p.Match("/aXb/(x)+y"))
	assert.False(t, p.Match("/a.b/xx"))
}

func TestPattern_MultipleWildcards(t *testing.T) {
	p := MustCompile("/app/*/css/*.css")

	assert.Equal(t, "/app/", p.StaticPrefix())
	assert.Equal(t, "/app", p.BasePath())
	assert.True(t, p.Match("/app/blog/css/style.css"))
	assert.True(t, p.Match("/app/a/b/css/x/y.css"))
	assert.False(t, p.Match("/app/blog/js/style.css"))
}

func TestCompile_Empty(t *testing.T) {
	_, err := Compile("")
	require.Error(t, err)
	assert.True(t, rerrors.IsInvalidPath(err))
}

func TestFilter(t *testing.T) {
	paths := []string{"/css/a.css", "/js/a.js", "/css/sub/b.css", "/css", "/cssx/c.css"}

	got, err := Filter(paths, "/css/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"/css/a.css", "/css/sub/b.css"}, got)

	got, err = Filter(paths, "/css")
	require.NoError(t, err)
	assert.Equal(t, []string{"/css"}, got)

	got, err = Filter(paths, "*.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"/js/a.js"}, got)
}

func TestUnescapeAndEscape(t *testing.T) {
	assert.Equal(t, `/foo/*.js`, Unescape(`/foo/\*.js`))
	assert.Equal(t, `/foo\bar`, Unescape(`/foo\\bar`))
	assert.Equal(t, `/foo\bar`, Unescape(`/foo\bar`))

	for _, path := range []string{"/plain", "/with*star", `/back\slash*`} {
		p := MustCompile(Escape(path))
		assert.False(t, p.IsPattern(), path)
		assert.True(t, p.Match(path), path)
	}
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "/a", Join("/", "a"))
	assert.Equal(t, "/a/b", Join("/a", "b"))
	assert.Equal(t, "/", Dir("/a"))
	assert.Equal(t, "/a", Dir("/a/b"))
	assert.Equal(t, "/", Dir("/"))
	assert.Equal(t, "b", Base("/a/b"))
	assert.Equal(t, "", Base("/"))
	assert.True(t, IsAncestor("/", "/a"))
	assert.True(t, IsAncestor("/a", "/a/b/c"))
	assert.False(t, IsAncestor("/a", "/ab"))
	assert.False(t, IsAncestor("/a", "/a"))
}
