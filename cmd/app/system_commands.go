package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/xambitlan/disclosure/cmd/app/commands"
	"github.com/xambitlan/disclosure/internal/app"
	"github.com/xambitlan/disclosure/internal/config"
)

func runServer(version string) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		return commands.RunServer(ctx, version)
	}
}

// runMigrate only borrows the container for its configured logger.
func runMigrate(ctx context.Context, _ *cli.Command) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()

	return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
}

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{Name: "server", Usage: "Start the HTTP server and the outbox worker", Action: runServer(version)},
		{Name: "migrate", Usage: "Apply pending database migrations", Action: runMigrate},
	}
}
