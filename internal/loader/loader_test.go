package loader

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/internal/testutil"
	"github.com/vk/graphproc/procedure"
)

type Alpha struct{}
type Beta struct{}
type Late struct{}

func newCatalog() *Catalog {
	c := NewCatalog()
	c.Add(procedure.ClassOf[Alpha]("ext", nil))
	c.Add(procedure.ClassOf[Beta]("ext", nil))
	return c
}

const manifest = `
name    = "ext"
classes = ["ext.Alpha", "ext.Beta"]
`

func TestCatalog(t *testing.T) {
	c := newCatalog()
	c.AddBuiltin(procedure.ClassOf[Late]("core", nil))

	require.Equal(t, []string{"core.Late", "ext.Alpha", "ext.Beta"}, c.Names())
	require.Len(t, c.Builtins(), 1)
	require.Equal(t, "core.Late", c.Builtins()[0].FullName())

	_, ok := c.Lookup("ext.Alpha")
	require.True(t, ok)
	require.Panics(t, func() { c.Add(procedure.ClassOf[Alpha]("ext", nil)) })
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest(strings.NewReader(manifest + "ambient = true\n"))
	require.NoError(t, err)
	require.Equal(t, Manifest{Name: "ext", Classes: []string{"ext.Alpha", "ext.Beta"}, Ambient: true}, m)

	_, err = ParseManifest(strings.NewReader(manifest + "extra = 1\n"))
	require.ErrorContains(t, err, `unknown key "extra"`)

	_, err = ParseManifest(strings.NewReader(`name = "empty"`))
	require.ErrorContains(t, err, "no classes listed")

	_, err = ParseManifest(strings.NewReader(`name = `))
	require.ErrorContains(t, err, "invalid extension.toml")
}

func TestLoad_SelectsScope(t *testing.T) {
	dir := t.TempDir()
	plain := testutil.WriteArchive(t, dir, "plain.zip", map[string]string{ManifestName: manifest})
	ambient := testutil.WriteArchive(t, dir, "ambient.zip", map[string]string{ManifestName: manifest + "ambient = true\n"})

	tests := []struct {
		name      string
		hotReload bool
		path      string
		isolated  bool
	}{
		{name: "hot reload isolates", hotReload: true, path: plain, isolated: true},
		{name: "ambient manifest wins", hotReload: true, path: ambient, isolated: false},
		{name: "no hot reload", hotReload: false, path: plain, isolated: false},
		{name: "no hot reload ambient", hotReload: false, path: ambient, isolated: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scopes, err := New(newCatalog(), tt.hotReload).Load(context.Background(), tt.path)
			require.NoError(t, err)
			require.Len(t, scopes, 1)
			require.Equal(t, tt.isolated, scopes[0].Isolated())
			require.NotEmpty(t, scopes[0].ID)

			classes, err := scopes[0].Classes()
			require.NoError(t, err)
			require.Len(t, classes, 2)
		})
	}
}

func TestLoad_IsolatedScopeIsASnapshot(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteArchive(t, dir, "late.zip", map[string]string{
		ManifestName: `classes = ["ext.Late"]`,
	})

	catalog := newCatalog()
	_, err := New(catalog, true).Load(context.Background(), path)
	require.ErrorContains(t, err, "declares class `ext.Late`, which is not available.")

	scopes, err := New(catalog, false).Load(context.Background(), path)
	require.NoError(t, err)
	_, err = scopes[0].Classes()
	require.Error(t, err)

	catalog.Add(procedure.ClassOf[Late]("ext", nil))
	classes, err := scopes[0].Classes()
	require.NoError(t, err)
	require.Equal(t, "ext.Late", classes[0].FullName())
}

func TestLoad_CorruptedArchives(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteArchive(t, dir, "good.zip", map[string]string{ManifestName: manifest})
	bad1 := testutil.WriteCorruptArchive(t, dir, "bad1.zip")
	bad2 := testutil.WriteCorruptArchive(t, dir, "bad2.zip")
	ctx, logs := testutil.LogContext(t)

	scopes, err := New(newCatalog(), false).Load(ctx, bad1, good, bad2)
	require.Len(t, scopes, 1)
	require.EqualError(t, err, "Some extension archives (bad1.zip, bad2.zip) are invalid, see log for details.")
	status, _ := procerr.StatusOf(err)
	require.Equal(t, procerr.ArchiveCorrupted, status)

	abs, _ := filepath.Abs(bad1)
	require.Contains(t, logs.String(), "Plugin archive file: "+abs+" corrupted.")
}

func TestLoad_ArchiveWithoutManifest(t *testing.T) {
	path := testutil.WriteArchive(t, t.TempDir(), "lib.zip", map[string]string{"README": "hi"})
	_, err := New(newCatalog(), false).Load(context.Background(), path)
	require.ErrorContains(t, err, "no extension.toml found")
	status, _ := procerr.StatusOf(err)
	require.NotEqual(t, procerr.ArchiveCorrupted, status)
}

func TestLoadDir(t *testing.T) {
	scopes, err := New(newCatalog(), false).LoadDir(context.Background(), "")
	require.NoError(t, err)
	require.Nil(t, scopes)

	dir := t.TempDir()
	scopes, err = New(newCatalog(), false).LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Empty(t, scopes)

	testutil.WriteArchive(t, dir, "a.zip", map[string]string{ManifestName: manifest})
	testutil.WriteArchive(t, dir, "b.zip", map[string]string{ManifestName: manifest})
	scopes, err = New(newCatalog(), false).LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, scopes, 2)

	classes, err := Classes(scopes)
	require.NoError(t, err)
	require.Len(t, classes, 4)
}
