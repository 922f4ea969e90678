package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Makepad-fr/tada/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hand the arguments to the command tree.
	err := cli.NewRootCommand(cli.Env{}, version).ExecuteContext(ctx)
	code := cli.ExitCode(err, os.Stderr)
	stop()
	os.Exit(code)
}
