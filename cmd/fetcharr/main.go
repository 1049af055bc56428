// Package main is the entrypoint of fetcharr.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fetcharr/internal/cfg"
	"fetcharr/internal/domain/paths"
)

// init runs before the program begins.
func init() {
	if err := paths.InitProgFilesDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "fetcharr: %v\n", err)
	}
}

func main() {
	// create cancellable context for shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	if err := cfg.InitCommands(); err != nil {
		fmt.Fprintf(os.Stderr, "fetcharr: %v\n", err)
		cancel()
		os.Exit(1)
	}

	runErr := cfg.Execute(ctx)
	cancel()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "fetcharr: %v\n", runErr)
		os.Exit(1)
	}
}
