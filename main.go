package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tinkerfai/tinkerfai/cli"
	"github.com/tinkerfai/tinkerfai/cli/helpers"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd := cli.RootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		// command errors were already reported in the command's output mode
		var cliErr *helpers.CliError
		if !errors.As(err, &cliErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
