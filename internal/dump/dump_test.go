package dump

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/locator"
	"github.com/conneroisu/resrepo/internal/repository"
	"github.com/conneroisu/resrepo/internal/resource"
	"github.com/conneroisu/resrepo/internal/testutils"
)

func buildRepo(t *testing.T) *repository.Repository {
	t.Helper()

	fs := testutils.NewMemFs(t, "/src", map[string]string{
		"base/css/style.css":  "body{}",
		"base/css/reset.css":  "*{}",
		"base/index.html":     "<html></html>",
		"theme/css/style.css": "body{color:red}",
		"theme/css/theme.css": ".t{}",
	})

	repo := repository.New(repository.WithLocator(locator.New(fs)))
	_, err := repo.Add("/", "/src/base")
	require.NoError(t, err)
	_, err = repo.Add("/css", "/src/theme/css")
	require.NoError(t, err)
	_, err = repo.Link("/archive/item", "zip:///bundle.zip#item")
	require.NoError(t, err)
	_, err = repo.Tag("/css/*", "stylesheet")
	require.NoError(t, err)
	_, err = repo.Tag("/index.html", "page")
	require.NoError(t, err)

	return repo
}

func TestExport_Shape(t *testing.T) {
	d := Export(buildRepo(t), "/src")

	assert.Equal(t, FormatVersion, d.Version)
	assert.Equal(t, "/src", d.Config.RootDir)

	assert.Equal(t, []string{
		"/", "/css",
		"/css/reset.css", "/css/style.css", "/css/theme.css", "/index.html", "/archive/item",
	}, d.Paths.Keys())

	css, ok := d.Paths.Get("/css")
	require.True(t, ok)
	assert.Equal(t, []string{"base/css/", "theme/css/"}, css)

	style, _ := d.Paths.Get("/css/style.css")
	assert.Equal(t, []string{"base/css/style.css", "theme/css/style.css"}, style)

	item, _ := d.Paths.Get("/archive/item")
	assert.Equal(t, []string{"ref:zip:///bundle.zip#item"}, item)

	assert.Equal(t, []string{"stylesheet", "page"}, d.Tags.Keys())
	members, _ := d.Tags.Get("stylesheet")
	assert.Equal(t, []string{"/css/reset.css", "/css/style.css"}, members)
}

func TestExport_PathsOutsideRootStayAbsolute(t *testing.T) {
	d := Export(buildRepo(t), "/elsewhere")

	root, _ := d.Paths.Get("/")
	assert.Equal(t, []string{"/src/base/"}, root)
}

func TestRestore_RebuildsEquivalentRepository(t *testing.T) {
	original := buildRepo(t)

	fs := afero.NewMemMapFs()
	require.NoError(t, Write(fs, "/cache/.resrepo/dump.yml", Export(original, "/src")))

	d, err := Read(fs, "/cache/.resrepo/dump.yml")
	require.NoError(t, err)

	restored, err := Restore(d)
	require.NoError(t, err)

	assert.Equal(t, original.Paths(), restored.Paths())
	original.Walk(func(n *resource.Node) {
		other, err := restored.Get(n.Path())
		require.NoError(t, err)
		assert.Equal(t, n.Locations(), other.Locations(), n.Path())
		assert.Equal(t, n.Kind(), other.Kind(), n.Path())
	})

	assert.Equal(t, original.Tags(), restored.Tags())
	for _, tag := range original.Tags() {
		want, got := []string{}, []string{}
		for _, n := range original.GetByTag(tag) {
			want = append(want, n.Path())
		}
		for _, n := range restored.GetByTag(tag) {
			got = append(got, n.Path())
		}
		assert.Equal(t, want, got, tag)
	}

	pruned, err := restored.RemoveLocation("/css", "/src/theme/css")
	require.NoError(t, err)
	assert.Equal(t, []string{"/css/theme.css"}, pruned)
}

func TestRestore_KeepsChildOrder(t *testing.T) {
	fs := testutils.NewMemFs(t, "/src", map[string]string{
		"app/a.txt":   "a",
		"app/b/c.txt": "c",
	})

	original := repository.New(repository.WithLocator(locator.New(fs)))
	_, err := original.Add("/", "/src/app")
	require.NoError(t, err)
	_, err = original.Link("/m/item", "zip:///m.zip#item")
	require.NoError(t, err)
	_, err = original.Add("/n.txt", "/src/app/a.txt")
	require.NoError(t, err)
	require.Equal(t, []string{"/", "/a.txt", "/b", "/b/c.txt", "/m", "/m/item", "/n.txt"}, original.Paths())

	restored, err := Restore(Export(original, "/src"))
	require.NoError(t, err)
	assert.Equal(t, original.Paths(), restored.Paths())

	want, err := original.ListChildren("/")
	require.NoError(t, err)
	got, err := restored.ListChildren("/")
	require.NoError(t, err)
	assert.Equal(t, paths(want), paths(got))
}

func TestExport_AnchorsPathsThatLookLikeReferences(t *testing.T) {
	fs := testutils.NewMemFs(t, "/src", map[string]string{
		"ref:x":         "x",
		"ref:dir/y.txt": "y",
	})

	original := repository.New(repository.WithLocator(locator.New(fs)))
	_, err := original.Add("/x", "/src/ref:x")
	require.NoError(t, err)
	_, err = original.Add("/dir", "/src/ref:dir")
	require.NoError(t, err)

	d := Export(original, "/src")
	x, _ := d.Paths.Get("/x")
	assert.Equal(t, []string{"./ref:x"}, x)
	dir, _ := d.Paths.Get("/dir")
	assert.Equal(t, []string{"./ref:dir/"}, dir)

	restored, err := Restore(d)
	require.NoError(t, err)

	node, err := restored.Get("/x")
	require.NoError(t, err)
	assert.Equal(t, resource.KindFile, node.Kind())
	loc, _ := node.Location()
	assert.Equal(t, "/src/ref:x", loc.Path)

	node, err = restored.Get("/dir/y.txt")
	require.NoError(t, err)
	loc, _ = node.Location()
	assert.Equal(t, "/src/ref:dir/y.txt", loc.Path)
	assert.Equal(t, "/dir", loc.Mount)
}

func TestRestore_AnyEntryOrder(t *testing.T) {
	d := &Dump{
		Version: FormatVersion,
		Config:  Config{RootDir: "/root"},
		Paths: OrderedMap{
			{Key: "/a/b/file.txt", Values: []string{"lib/b/file.txt"}},
			{Key: "/a", Values: []string{"lib/"}},
			{Key: "/a/b", Values: []string{"lib/b/"}},
		},
		Tags: OrderedMap{{Key: "docs", Values: []string{"/a/b/file.txt"}}},
	}

	repo, err := Restore(d, ReadOnly())
	require.NoError(t, err)
	assert.True(t, repo.ReadOnly())

	node, err := repo.Get("/a/b/file.txt")
	require.NoError(t, err)
	loc, ok := node.Location()
	require.True(t, ok)
	assert.Equal(t, "/root/lib/b/file.txt", loc.Path)
	assert.Equal(t, "/a", loc.Mount)
	assert.Equal(t, "/root/lib", loc.Source)

	assert.Len(t, repo.GetByTag("docs"), 1)

	_, err = repo.Tag("/a", "x")
	assert.True(t, rerrors.IsReadOnly(err))
}

func TestRestore_RootDirOverride(t *testing.T) {
	d := &Dump{
		Version: FormatVersion,
		Config:  Config{RootDir: "/old"},
		Paths:   OrderedMap{{Key: "/f", Values: []string{"f.txt"}}},
	}

	repo, err := Restore(d, WithRootDir("/new"))
	require.NoError(t, err)

	node, err := repo.Get("/f")
	require.NoError(t, err)
	loc, _ := node.Location()
	assert.Equal(t, "/new/f.txt", loc.Path)
}

func TestRestore_Errors(t *testing.T) {
	_, err := Restore(&Dump{Version: 99})
	assert.Error(t, err)

	_, err = Restore(&Dump{
		Version: FormatVersion,
		Tags:    OrderedMap{{Key: "t", Values: []string{"/missing"}}},
	})
	assert.True(t, rerrors.IsNotFound(err))

	_, err = Read(afero.NewMemMapFs(), "/none.yml")
	assert.True(t, rerrors.IsNotFound(err))

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad.yml", []byte("paths: [1, 2]"), 0o644))
	_, err = Read(fs, "/bad.yml")
	assert.Error(t, err)
}

func TestOrderedMap_YAMLKeepsOrder(t *testing.T) {
	m := OrderedMap{
		{Key: "/z", Values: []string{"z/"}},
		{Key: "/a", Values: nil},
		{Key: "/m", Values: []string{"m1", "m2"}},
	}

	data, err := yaml.Marshal(struct {
		Paths OrderedMap `yaml:"paths"`
	}{m})
	require.NoError(t, err)
	assert.Equal(t, "paths:\n    /z:\n        - z/\n    /a: []\n    /m:\n        - m1\n        - m2\n", string(data))

	var back struct {
		Paths OrderedMap `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, []string{"/z", "/a", "/m"}, back.Paths.Keys())
	assert.Equal(t, map[string][]string{"/z": {"z/"}, "/a": nil, "/m": {"m1", "m2"}}, back.Paths.Map())
}

func paths(nodes []*resource.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Path()
	}

	return out
}
