package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vk/graphproc/internal/app"
	"github.com/vk/graphproc/internal/procerr"
)

// Version is set at build time.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks invalid input; it exits with code 2.
func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if err != nil {
		return 1
	}
	return 0
}

// options are the settings shared by every command.
type options struct {
	outW       io.Writer
	configFile string
	noColor    bool
	v          *viper.Viper
}

// NewRootCommand creates the graphproc command tree. Results go to outW,
// logs and warnings to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &options{outW: outW, v: viper.New()}

	root := &cobra.Command{
		Use:   "graphproc",
		Short: "Compile, register and call graph database extensions",
		Long: color.CyanString(`graphproc - extension runtime for an embedded graph database

Extension classes declare procedures, functions and aggregation functions.
graphproc compiles them into callable entry points, applies the allowlist and
sandbox policy, and loads extension archives from a plugin directory.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to a config file (default ./graphproc.yaml if present).")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable coloured output.")
	flags.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.String("plugin-dir", "", "Directory scanned for extension archives.")
	flags.StringSlice("allowlist", nil, "Names that may be loaded. Patterns may use '*'.")
	flags.StringSlice("unrestricted", nil, "Names that may use components outside the sandbox.")
	flags.Bool("hot-reload", false, "Load every archive into its own isolated scope.")
	flags.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")

	for key, flag := range map[string]string{
		"log_level":               "log-level",
		"log_format":              "log-format",
		"healthcheck_port":        "healthcheck-port",
		"procedures.plugin_dir":   "plugin-dir",
		"procedures.allowlist":    "allowlist",
		"procedures.unrestricted": "unrestricted",
		"procedures.hot_reload":   "hot-reload",
	} {
		if err := opts.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(newVersionCommand(opts))
	root.AddCommand(newListCommand(opts))
	root.AddCommand(newCallCommand(opts))
	root.AddCommand(newServeCommand(opts))
	return root
}

// loadConfig merges flags, GRAPHPROC_* environment variables and the config
// file, in that order of precedence.
func (o *options) loadConfig() (*app.Config, error) {
	v := o.v
	v.SetEnvPrefix("graphproc")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
	} else {
		v.SetConfigName("graphproc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.configFile != "" || !errors.As(err, &notFound) {
			return nil, usageError(fmt.Errorf("failed to read config file: %w", err))
		}
	}

	var cfg app.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, usageError(fmt.Errorf("failed to unmarshal config: %w", err))
	}
	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return appConfig, nil
}

// newApp builds the application for a command. Archive failures are
// reported but do not stop the builtins from being served.
func (o *options) newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(cmd.Context(), cmd.ErrOrStderr(), cfg)
	if a == nil {
		return nil, err
	}
	if err != nil {
		o.warn(cmd, err)
	}
	return a, nil
}

func (o *options) warn(cmd *cobra.Command, err error) {
	c := color.New(color.FgYellow)
	if o.noColor {
		c.DisableColor()
	}
	c.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
}

// callError keeps the status code of a procedure error visible to the user.
func callError(err error) error {
	if status, ok := procerr.StatusOf(err); ok {
		return fmt.Errorf("%s: %w", status, err)
	}
	return err
}

func newVersionCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			title := color.New(color.FgCyan, color.Bold)
			if opts.noColor {
				title.DisableColor()
			}
			title.Fprint(opts.outW, "graphproc version: ")
			fmt.Fprintln(opts.outW, Version)
		},
	}
}
