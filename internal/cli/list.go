package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vk/graphproc/procedure"
)

// signatureRow is one listed entry point.
type signatureRow struct {
	Kind        string `yaml:"kind"`
	Name        string `yaml:"name"`
	Signature   string `yaml:"signature"`
	Mode        string `yaml:"mode,omitempty"`
	Description string `yaml:"description,omitempty"`
	Deprecated  bool   `yaml:"deprecated,omitempty"`
}

var listKinds = map[string][]procedure.Kind{
	"all":          {procedure.KindProcedure, procedure.KindFunction, procedure.KindAggregation},
	"procedures":   {procedure.KindProcedure},
	"functions":    {procedure.KindFunction},
	"aggregations": {procedure.KindAggregation},
}

func newListCommand(opts *options) *cobra.Command {
	var kind, format string

	cmd := &cobra.Command{
		Use:   "list [filter]",
		Short: "List the registered procedures and functions",
		Long: `List every registered entry point with its signature. An optional filter
keeps the names containing it, ignoring case.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, ok := listKinds[kind]
			if !ok {
				return usageError(fmt.Errorf("invalid kind %q: must be 'all', 'procedures', 'functions' or 'aggregations'", kind))
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			filter := ""
			if len(args) == 1 {
				filter = strings.ToLower(args[0])
			}
			var rows []signatureRow
			for _, k := range kinds {
				infos := a.Procedures().Signatures(k)
				sort.SliceStable(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
				for _, info := range infos {
					if !strings.Contains(strings.ToLower(info.Name), filter) {
						continue
					}
					row := signatureRow{
						Kind:        k.String(),
						Name:        info.Name,
						Signature:   info.Signature,
						Description: info.Description,
						Deprecated:  info.Deprecated,
					}
					if k == procedure.KindProcedure {
						row.Mode = info.Mode.String()
					}
					rows = append(rows, row)
				}
			}

			if format == formatYAML {
				return writeYAML(opts.outW, rows)
			}
			return renderSignatures(opts, rows)
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "all", "Kinds to list: 'all', 'procedures', 'functions' or 'aggregations'.")
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "Output format: 'table' or 'yaml'.")
	return cmd
}

func renderSignatures(opts *options, rows []signatureRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(opts.outW, "No matching entry points.")
		return nil
	}
	deprecated := color.New(color.FgYellow)
	if opts.noColor {
		deprecated.DisableColor()
	}

	t := newTable(opts.outW, opts.noColor, "KIND", "MODE", "SIGNATURE", "DESCRIPTION")
	for _, r := range rows {
		desc := r.Description
		if r.Deprecated {
			desc = deprecated.Sprint("(deprecated) ") + desc
		}
		t.addRow(r.Kind, r.Mode, r.Signature, desc)
	}
	t.render()
	return nil
}
