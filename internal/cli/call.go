package cli

import (
	"github.com/spf13/cobra"
)

func newCallCommand(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "call <name> [arguments...]",
		Short: "Call a procedure, function or aggregation function",
		Long: `Call resolves name as a procedure, then a function, then an aggregation
function. Arguments are literals such as 42, 'text', [1, 2] or {a: 1}; a
string argument that is not a valid literal is passed verbatim. For an
aggregation function every argument is one input row.`,
		Example: `  graphproc call text.upper "'hello'"
  graphproc call coll.countDistinct 1 2 2 3
  graphproc call dbms.procedures -o yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			res, err := a.Call(cmd.Context(), args[0], args[1:])
			if err != nil {
				return callError(err)
			}
			return renderResult(opts.outW, res, format, opts.noColor)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "Output format: 'table' or 'yaml'.")
	return cmd
}
