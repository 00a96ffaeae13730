package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
)

func dirLoc(physical, mount, source string) Location {
	return Location{Kind: KindDirectory, Path: physical, Mount: mount, Source: source}
}

func fileLoc(physical, mount, source string) Location {
	return Location{Kind: KindFile, Path: physical, Mount: mount, Source: source}
}

func paths(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Path()
	}
	return out
}

func TestNewTree(t *testing.T) {
	tree := NewTree()

	assert.Equal(t, 1, tree.Len())
	assert.Equal(t, RootPath, tree.Root().Path())
	assert.True(t, tree.Root().IsDirectory())
	assert.Equal(t, "", tree.Root().Name())
}

func TestTree_AddLocationCreatesAncestors(t *testing.T) {
	tree := NewTree()

	node, err := tree.AddLocation("/app/css/style.css", NewLocation(KindFile, "/src/style.css", "/app/css/style.css"))
	require.NoError(t, err)

	assert.Equal(t, KindFile, node.Kind())
	assert.Equal(t, "style.css", node.Name())
	assert.True(t, tree.Contains("/app"))
	assert.True(t, tree.Contains("/app/css"))

	app, _ := tree.Get("/app")
	assert.True(t, app.IsDirectory())
	assert.False(t, app.HasLocations())
	assert.Equal(t, []string{"css"}, app.ChildNames())

	// A second file below the existing implicit directory must not fail.
	_, err = tree.AddLocation("/app/css/reset.css", NewLocation(KindFile, "/src/reset.css", "/app/css/reset.css"))
	require.NoError(t, err)

	children, err := tree.ListChildren("/app/css")
	require.NoError(t, err)
	assert.Equal(t, []string{"/app/css/style.css", "/app/css/reset.css"}, paths(children))
}

func TestTree_LastLocationWins(t *testing.T) {
	tree := NewTree()

	_, err := tree.AddLocation("/a.txt", NewLocation(KindFile, "/v1/a.txt", "/a.txt"))
	require.NoError(t, err)
	node, err := tree.AddLocation("/a.txt", NewLocation(KindFile, "/v2/a.txt", "/a.txt"))
	require.NoError(t, err)

	loc, ok := node.Location()
	require.True(t, ok)
	assert.Equal(t, "/v2/a.txt", loc.Path)
	assert.Len(t, node.Locations(), 2)

	// Re-adding an earlier location moves it back on top.
	node, err = tree.AddLocation("/a.txt", NewLocation(KindFile, "/v1/a.txt", "/a.txt"))
	require.NoError(t, err)
	loc, _ = node.Location()
	assert.Equal(t, "/v1/a.txt", loc.Path)
	assert.Len(t, node.Locations(), 2)
}

func TestTree_AddBelowFileFails(t *testing.T) {
	tree := NewTree()

	_, err := tree.AddLocation("/a", NewLocation(KindFile, "/src/a", "/a"))
	require.NoError(t, err)

	_, err = tree.AddLocation("/a/b/c", NewLocation(KindFile, "/src/c", "/a/b/c"))
	require.Error(t, err)
	assert.True(t, rerrors.IsNotADirectory(err))
	assert.False(t, tree.Contains("/a/b"), "no ancestor is created on failure")
}

func TestTree_FileOverDirectoryWithChildrenFails(t *testing.T) {
	tree := NewTree()

	_, err := tree.AddLocation("/a/b", NewLocation(KindFile, "/src/b", "/a/b"))
	require.NoError(t, err)

	_, err = tree.AddLocation("/a", NewLocation(KindFile, "/src/a", "/a"))
	assert.True(t, rerrors.IsNotADirectory(err))

	_, err = tree.AddLocation("/", NewLocation(KindFile, "/src/root", "/"))
	assert.True(t, rerrors.IsNotADirectory(err))
}

func TestTree_InvalidPaths(t *testing.T) {
	tree := NewTree()

	for _, p := range []string{"", "relative", "/a/../b", "/a/"} {
		_, err := tree.AddLocation(p, NewLocation(KindFile, "/x", p))
		assert.True(t, rerrors.IsInvalidPath(err), "path %q", p)
	}
}

func TestTree_ListChildrenOnFile(t *testing.T) {
	tree := NewTree()
	_, err := tree.AddLocation("/a", NewLocation(KindFile, "/src/a", "/a"))
	require.NoError(t, err)

	_, err = tree.ListChildren("/a")
	assert.True(t, rerrors.IsNotADirectory(err))

	_, err = tree.ListChildren("/missing")
	assert.True(t, rerrors.IsNotFound(err))
}

func TestTree_RemoveDirectoryLayerPrunesGraftedNodes(t *testing.T) {
	tree := NewTree()

	// Layer 1: /src grafted at /app.
	_, err := tree.AddLocation("/app", dirLoc("/src", "/app", "/src"))
	require.NoError(t, err)
	_, err = tree.AddLocation("/app/a.txt", fileLoc("/src/a.txt", "/app", "/src"))
	require.NoError(t, err)
	_, err = tree.AddLocation("/app/sub", dirLoc("/src/sub", "/app", "/src"))
	require.NoError(t, err)
	_, err = tree.AddLocation("/app/sub/b.txt", fileLoc("/src/sub/b.txt", "/app", "/src"))
	require.NoError(t, err)

	// Independently added file below the grafted directory.
	_, err = tree.AddLocation("/app/sub/own.txt", NewLocation(KindFile, "/other/own.txt", "/app/sub/own.txt"))
	require.NoError(t, err)

	removed, err := tree.RemoveLocation("/app", "/src")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"/app/a.txt", "/app/sub/b.txt"}, removed)
	assert.True(t, tree.Contains("/app/sub/own.txt"))

	sub, ok := tree.Get("/app/sub")
	require.True(t, ok)
	assert.False(t, sub.HasLocations())
	assert.True(t, sub.IsDirectory())

	app, ok := tree.Get("/app")
	require.True(t, ok, "directory with independently added children is kept")
	assert.False(t, app.HasLocations())
}

func TestTree_LayerNodes(t *testing.T) {
	tree := NewTree()
	_, err := tree.AddLocation("/app", dirLoc("/src", "/app", "/src"))
	require.NoError(t, err)
	_, err = tree.AddLocation("/app/a.txt", fileLoc("/src/a.txt", "/app", "/src"))
	require.NoError(t, err)
	_, err = tree.AddLocation("/app/own.txt", NewLocation(KindFile, "/other/own.txt", "/app/own.txt"))
	require.NoError(t, err)

	assert.Equal(t, []string{"/app", "/app/a.txt"}, tree.LayerNodes("/app", "/src"))
	assert.Equal(t, []string{"/app/own.txt"}, tree.LayerNodes("/app/own.txt", "/other/own.txt"))
	assert.Empty(t, tree.LayerNodes("/app", "/elsewhere"))
	assert.Empty(t, tree.LayerNodes("/missing", "/src"))
}

func TestTree_RemoveLastLocationRemovesNodeAndEmptyAncestors(t *testing.T) {
	tree := NewTree()
	_, err := tree.AddLocation("/a/b/c.txt", NewLocation(KindFile, "/src/c.txt", "/a/b/c.txt"))
	require.NoError(t, err)

	removed, err := tree.RemoveLocation("/a/b/c.txt", "/src/c.txt")
	require.NoError(t, err)

	assert.Equal(t, []string{"/a/b/c.txt", "/a/b", "/a"}, removed)
	assert.Equal(t, 1, tree.Len())
}

func TestTree_RemoveLocationErrors(t *testing.T) {
	tree := NewTree()
	_, err := tree.AddLocation("/a", NewLocation(KindFile, "/src/a", "/a"))
	require.NoError(t, err)

	_, err = tree.RemoveLocation("/missing", "/src/a")
	assert.True(t, rerrors.IsNotFound(err))

	_, err = tree.RemoveLocation("/a", "/elsewhere")
	assert.True(t, rerrors.IsNotFound(err))
}

func TestTree_RemoveNode(t *testing.T) {
	tree := NewTree()
	for _, p := range []string{"/a/b/c", "/a/b/d", "/a/e"} {
		_, err := tree.AddLocation(p, NewLocation(KindFile, "/src"+p, p))
		require.NoError(t, err)
	}

	removed, err := tree.RemoveNode("/a/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/b", "/a/b/c", "/a/b/d"}, removed)
	assert.True(t, tree.Contains("/a/e"))

	removed, err = tree.RemoveNode("/a/e")
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/e", "/a"}, removed, "empty implicit parent is pruned")

	_, err = tree.RemoveNode("/")
	assert.ErrorIs(t, err, rerrors.ErrRemovalNotAllowed)

	_, err = tree.RemoveNode("/a")
	assert.ErrorIs(t, err, rerrors.ErrNotFound)
}

func TestTree_ReplaceLocations(t *testing.T) {
	tree := NewTree()

	node, err := tree.ReplaceLocations("/x/y", []Location{NewLocation(KindFile, "/src/y", "/x/y")})
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, KindFile, node.Kind())

	node, err = tree.ReplaceLocations("/x/y", nil)
	require.NoError(t, err)
	assert.Nil(t, node)
	assert.Equal(t, 1, tree.Len())

	node, err = tree.ReplaceLocations("/nothing", nil)
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestTree_WalkPreOrder(t *testing.T) {
	tree := NewTree()
	for _, p := range []string{"/b/x", "/a", "/b/y/z"} {
		_, err := tree.AddLocation(p, NewLocation(KindFile, "/src"+p, p))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"/", "/b", "/b/x", "/b/y", "/b/y/z", "/a"}, tree.Paths())
	assert.Empty(t, tree.Subtree("/missing"))
}

func TestKind(t *testing.T) {
	for _, k := range Kinds() {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, parsed)
		assert.True(t, k.Valid())
	}

	assert.Equal(t, "unknown", Kind(42).String())
	assert.False(t, Kind(42).Valid())
	_, ok := ParseKind("symlink")
	assert.False(t, ok)
}
