// Command ncparams edits NC program template parameters from the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"nc-param-manager/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
