package main

import (
	"context"
	"fmt"
	"os"

	"github.com/amirasaad/ledger/infra/initializer"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/fatih/color"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stdout)
		return
	}
	if err := run(os.Args[1:]); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx := context.Background()
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	deps, cleanup, err := initializer.InitializeDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer cleanup() //nolint: errcheck

	c := &cli{app: app.New(deps, cfg), out: os.Stdout}
	return c.exec(ctx, args)
}
