package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/graphproc/internal/config"
	"github.com/vk/graphproc/internal/loader"
	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/internal/testutil"
	"github.com/vk/graphproc/procedure"
	"github.com/zclconf/go-cty/cty"
)

type Plugin struct{}

func (Plugin) Members() []procedure.Member {
	return []procedure.Member{
		procedure.Function("Hello", procedure.Name("name")),
	}
}

func (Plugin) Hello(name string) string { return "hello " + name }

type pluginModule struct{}

func (pluginModule) Register(c *loader.Catalog) {
	c.Add(procedure.ClassOf[Plugin]("ext", nil))
}

const pluginManifest = `
name    = "ext"
classes = ["ext.Plugin"]
`

func withPlugin() []loader.Module {
	return append(slices.Clone(coreModules), pluginModule{})
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Config{}},
		{name: "bad format", cfg: Config{LogFormat: "xml"}, wantErr: "invalid log format"},
		{name: "bad level", cfg: Config{LogLevel: "loud"}, wantErr: "invalid log level"},
		{name: "bad port", cfg: Config{HealthcheckPort: 70000}, wantErr: "invalid healthcheck port"},
		{
			name:    "bad pattern",
			cfg:     Config{Procedures: config.Procedures{Allowlist: []string{"a. b"}}},
			wantErr: "invalid procedure settings",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.cfg)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "text", cfg.LogFormat)
			require.Equal(t, "info", cfg.LogLevel)
		})
	}
}

func TestCall_Builtins(t *testing.T) {
	a, _ := SetupAppTest(t, Config{})
	ctx := context.Background()

	res, err := a.Call(ctx, "text.upper", []string{"'graph'"})
	require.NoError(t, err)
	require.Equal(t, []string{"text.upper"}, res.Columns)
	require.Equal(t, cty.StringVal("GRAPH"), res.Rows[0][0])

	res, err = a.Call(ctx, "text.upper", []string{"bare words"})
	require.NoError(t, err)
	require.Equal(t, cty.StringVal("BARE WORDS"), res.Rows[0][0])

	res, err = a.Call(ctx, "text.join", []string{"['a', 'b']"})
	require.NoError(t, err)
	require.Equal(t, cty.StringVal("a,b"), res.Rows[0][0])

	res, err = a.Call(ctx, "text.split", []string{"'x-y'", "'-'"})
	require.NoError(t, err)
	require.Equal(t, []string{"index", "value"}, res.Columns)
	require.Len(t, res.Rows, 2)
	require.Equal(t, cty.StringVal("y"), res.Rows[1][1])

	res, err = a.Call(ctx, "coll.countDistinct", []string{"1", "1", "'a'", "null"})
	require.NoError(t, err)
	require.True(t, res.Rows[0][0].Equals(cty.NumberIntVal(2)).True())
}

func TestCall_DBMSListsRegistry(t *testing.T) {
	a, _ := SetupAppTest(t, Config{})

	res, err := a.Call(context.Background(), "dbms.procedures", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"name", "signature", "description", "mode", "deprecated"}, res.Columns)

	var names []string
	for _, row := range res.Rows {
		names = append(names, row[0].AsString())
	}
	require.Equal(t, []string{"dbms.functions", "dbms.procedures", "env.vars", "text.split"}, names)
}

func TestCall_NotFound(t *testing.T) {
	a, _ := SetupAppTest(t, Config{})

	_, err := a.Call(context.Background(), "text.uper", nil)
	require.ErrorContains(t, err, "There is no procedure with the name `text.uper`")
	status, _ := procerr.StatusOf(err)
	require.Equal(t, procerr.NotFound, status)
}

func TestCall_SandboxedUnlessUnrestricted(t *testing.T) {
	t.Setenv("GRAPHPROC_TEST_VALUE", "42")
	ctx := context.Background()

	sandboxed, _ := SetupAppTest(t, Config{})
	_, err := sandboxed.Call(ctx, "env.get", []string{"'GRAPHPROC_TEST_VALUE'"})
	require.ErrorContains(t, err, "env.get is unavailable because it is sandboxed")

	open, _ := SetupAppTest(t, Config{Procedures: config.Procedures{Unrestricted: []string{"env.*"}}})
	res, err := open.Call(ctx, "env.get", []string{"'GRAPHPROC_TEST_VALUE'"})
	require.NoError(t, err)
	require.Equal(t, cty.StringVal("42"), res.Rows[0][0])

	res, err = open.Call(ctx, "env.get", []string{"'GRAPHPROC_TEST_UNSET'", "'none'"})
	require.NoError(t, err)
	require.Equal(t, cty.StringVal("none"), res.Rows[0][0])
}

func TestCall_Allowlist(t *testing.T) {
	a, logs := SetupAppTest(t, Config{Procedures: config.Procedures{Allowlist: []string{"text.*"}}})
	ctx := context.Background()

	_, err := a.Call(ctx, "text.upper", []string{"'ok'"})
	require.NoError(t, err)

	_, err = a.Call(ctx, "dbms.procedures", nil)
	require.ErrorContains(t, err, "dbms.procedures is not available due to not being on the allowlist.")

	_, err = a.Procedures().LookupFunction("coll.size")
	require.Error(t, err)
	require.Contains(t, logs.String(), "The function 'coll.size' is not on the allowlist and won't be loaded.")
}

func TestReload_PluginDir(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteArchive(t, dir, "ext.zip", map[string]string{loader.ManifestName: pluginManifest})
	ctx := context.Background()

	a, _ := SetupAppTest(t, Config{Procedures: config.Procedures{PluginDir: dir, HotReload: true}}, withPlugin()...)
	res, err := a.Call(ctx, "ext.hello", []string{"'world'"})
	require.NoError(t, err)
	require.Equal(t, cty.StringVal("hello world"), res.Rows[0][0])

	before, err := a.Procedures().LookupFunction("ext.hello")
	require.NoError(t, err)
	generation := a.Procedures().Generation()

	require.NoError(t, a.Reload(ctx))
	after, err := a.Procedures().LookupFunction("ext.hello")
	require.NoError(t, err)
	require.Equal(t, before.ID, after.ID)
	require.NotEqual(t, generation, a.Procedures().Generation())

	require.NoError(t, os.Remove(filepath.Join(dir, "ext.zip")))
	require.NoError(t, a.Reload(ctx))
	_, err = a.Procedures().LookupFunction("ext.hello")
	require.Error(t, err)

	// Builtins survive every reload.
	_, err = a.Call(ctx, "text.upper", []string{"'still here'"})
	require.NoError(t, err)
}

func TestNewApp_CorruptArchive(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteArchive(t, dir, "ext.zip", map[string]string{loader.ManifestName: pluginManifest})
	testutil.WriteCorruptArchive(t, dir, "broken.zip")

	cfg, err := NewConfig(Config{Procedures: config.Procedures{PluginDir: dir}})
	require.NoError(t, err)
	logs := &testutil.SafeBuffer{}
	a, err := NewApp(context.Background(), logs, cfg, withPlugin()...)
	require.ErrorContains(t, err, "Some extension archives (broken.zip) are invalid, see log for details.")
	require.NotNil(t, a)
	require.Contains(t, logs.String(), "broken.zip corrupted.")

	_, err = a.Call(context.Background(), "ext.hello", []string{"'x'"})
	require.NoError(t, err)
}

func TestHandler(t *testing.T) {
	a, _ := SetupAppTest(t, Config{})
	_, err := a.Call(context.Background(), "text.lower", []string{"'ABC'"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK\n", rec.Body.String())

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `graphproc_invocations_total{kind="function",outcome="success"} 1`)
	require.Contains(t, rec.Body.String(), `graphproc_registered{kind="procedure"}`)
}
