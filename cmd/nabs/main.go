// Package main is the entry point for the nabs CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.nabs.build/nabs/cmd/nabs/commands"
	"go.nabs.build/nabs/internal/adapters/logger"
	"go.nabs.build/nabs/internal/app"
	_ "go.nabs.build/nabs/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, _, err := graft.ExecuteFor[*app.App](ctx)
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	cli := commands.New(a)

	if err := cli.Execute(ctx); err != nil {
		logger.New().Error(err)
		return 1
	}
	return 0
}
