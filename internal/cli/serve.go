package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Keep the runtime loaded and serve health and metrics",
		Long: `Serve loads the builtins and the plugin directory, starts the health check
server when a port is configured and waits for SIGINT or SIGTERM. SIGHUP
reloads the plugin directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			a.StartHealthCheck(ctx)
			a.Logger().Info("Serving extensions.", "generation", a.Procedures().Generation())
			for {
				select {
				case <-ctx.Done():
					return a.Close(context.WithoutCancel(ctx))
				case <-hup:
					if err := a.Reload(ctx); err != nil {
						opts.warn(cmd, err)
					}
				}
			}
		},
	}
}
