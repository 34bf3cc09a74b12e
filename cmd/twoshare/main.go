// Command twoshare edits a 2share portfolio from the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bug-createdme/2share/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
