package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vk/graphproc/internal/app"
	"github.com/vk/graphproc/internal/typemap"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatYAML  = "yaml"
)

func checkFormat(format string) error {
	if format != formatTable && format != formatYAML {
		return usageError(fmt.Errorf("invalid output format %q: must be '%s' or '%s'", format, formatTable, formatYAML))
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

// renderResult prints a call result as a table or as a YAML list of rows.
func renderResult(w io.Writer, res *app.Result, format string, noColor bool) error {
	if format == formatYAML {
		rows := make([]map[string]any, 0, len(res.Rows))
		for _, row := range res.Rows {
			m := make(map[string]any, len(row))
			for i, v := range row {
				native, err := typemap.ToNative(v)
				if err != nil {
					return err
				}
				m[res.Columns[i]] = native
			}
			rows = append(rows, m)
		}
		return writeYAML(w, rows)
	}

	t := newTable(w, noColor, res.Columns...)
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		t.addRow(cells...)
	}
	t.render()
	return nil
}

// formatValue renders a value for a table cell. Strings are printed bare
// and containers as JSON.
func formatValue(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	native, err := typemap.ToNative(v)
	if err != nil {
		return v.GoString()
	}
	switch x := native.(type) {
	case string:
		return x
	case []any, map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
	return strings.TrimSpace(fmt.Sprint(native))
}
