package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RezaEskandarii/lrrctl/app"
	"github.com/RezaEskandarii/lrrctl/internal/cli"
	"github.com/RezaEskandarii/lrrctl/internal/observability"
	"github.com/RezaEskandarii/lrrctl/types/config"
	"github.com/joho/godotenv"
)

func main() {
	// a missing .env is fine, the environment and the config file still apply
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commandLine := cli.New(os.Stdout, os.Stderr, config.Load, newContainer)
	if err := commandLine.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newContainer(ctx context.Context, cfg *config.ConsoleConfig) (*app.Container, error) {
	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	return app.NewContainer(ctx, cfg, app.WithLogger(logger))
}
