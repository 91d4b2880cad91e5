// Command storefront is the terminal client for the storefront API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/THE-DEEPDAS/HTT/internal/cli"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cli.SetVersion(version)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
