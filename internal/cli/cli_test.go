package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	cmd := NewRootCommand(&out, &logs)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, "graphproc version: dev\n", out)
}

func TestList(t *testing.T) {
	out, err := execute(t, "list", "text.")
	require.NoError(t, err)
	require.Contains(t, out, "KIND")
	require.Contains(t, out, "text.upper(value :: STRING) :: STRING")
	require.Contains(t, out, "text.split(value :: STRING, separator = \",\" :: STRING) :: (index :: INTEGER, value :: STRING)")
	require.NotContains(t, out, "dbms.procedures")
}

func TestList_YAML(t *testing.T) {
	out, err := execute(t, "list", "--kind", "procedures", "-o", "yaml", "dbms")
	require.NoError(t, err)

	var rows []signatureRow
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	require.Equal(t, "dbms.functions", rows[0].Name)
	require.Equal(t, "DBMS", rows[0].Mode)
	require.Equal(t, "procedure", rows[0].Kind)
}

func TestList_InvalidKind(t *testing.T) {
	_, err := execute(t, "list", "--kind", "widgets")
	require.ErrorContains(t, err, "invalid kind")
	require.Equal(t, 2, ExitCode(err))
}

func TestCall(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "function", args: []string{"call", "text.upper", "'abc'"}, want: "ABC"},
		{name: "verbatim string", args: []string{"call", "text.lower", "Hello World"}, want: "hello world"},
		{name: "procedure", args: []string{"call", "text.split", "'a;b'", "';'"}, want: "1      b"},
		{name: "aggregation", args: []string{"call", "coll.countDistinct", "1", "2", "2"}, want: "2"},
		{name: "list result", args: []string{"call", "coll.collect", "1", "'x'"}, want: `[1,"x"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			require.Contains(t, out, tt.want)
		})
	}
}

func TestCall_YAML(t *testing.T) {
	out, err := execute(t, "call", "text.split", "'a;b'", "';'", "-o", "yaml")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Equal(t, []map[string]any{
		{"index": 0, "value": "a"},
		{"index": 1, "value": "b"},
	}, rows)
}

func TestCall_Errors(t *testing.T) {
	_, err := execute(t, "call", "text.splt")
	require.ErrorContains(t, err, "Procedure.ProcedureNotFound")
	require.ErrorContains(t, err, "Did you mean `text.split`")
	require.Equal(t, 1, ExitCode(err))

	_, err = execute(t, "call", "text.upper", "'a'", "'b'")
	require.ErrorContains(t, err, "Too many arguments")

	_, err = execute(t, "call")
	require.Error(t, err)
}

func TestConfig_Environment(t *testing.T) {
	t.Setenv("GRAPHPROC_CLI_TEST", "from env")

	_, err := execute(t, "call", "env.get", "'GRAPHPROC_CLI_TEST'")
	require.ErrorContains(t, err, "sandboxed")

	t.Setenv("GRAPHPROC_PROCEDURES_UNRESTRICTED", "env.*")
	out, err := execute(t, "call", "env.get", "'GRAPHPROC_CLI_TEST'")
	require.NoError(t, err)
	require.Contains(t, out, "from env")
}

func TestConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graphproc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
procedures:
  allowlist: ["text.*"]
`), 0o644))

	out, err := execute(t, "--config", path, "list", "--kind", "functions")
	require.NoError(t, err)
	require.Contains(t, out, "text.upper")
	require.NotContains(t, out, "coll.size")

	_, err = execute(t, "--config", filepath.Join(dir, "missing.yaml"), "list")
	require.ErrorContains(t, err, "failed to read config file")
	require.Equal(t, 2, ExitCode(err))

	_, err = execute(t, "--log-format", "xml", "list")
	require.ErrorContains(t, err, "invalid log format")
}

func TestServe_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, logs bytes.Buffer
	cmd := NewRootCommand(&out, &logs)
	cmd.SetArgs([]string{"serve", "--log-level", "info"})
	require.NoError(t, cmd.ExecuteContext(ctx))
	require.Contains(t, logs.String(), "Serving extensions.")
}
