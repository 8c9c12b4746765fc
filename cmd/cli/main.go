// Package main is the entry point for the azure-pricing CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pratham7049/azure-pricing-calculator/cmd/cli/cmd"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer logging.Sync()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
