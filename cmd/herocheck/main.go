// Command herocheck runs verification scenarios against the hero API and
// its database, and serves the simulated API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/herocheck/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
