package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/graphproc/internal/cli"
)

// main is the entrypoint for the graphproc application.
func main() {
	// The real main function handles errors and exit codes.
	if err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) (err error) {
	// Extension constructors run user code; a panic escaping the compiler
	// still ends in a clean message.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	cmd := cli.NewRootCommand(outW, errW)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
