package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/xambitlan/disclosure/cmd/app/commands"
	"github.com/xambitlan/disclosure/internal/app"
	"github.com/xambitlan/disclosure/internal/config"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getMaintenanceCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "verify-audit-chain",
			Usage: "Recompute audit hash chains and report tampering",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "resource-type",
					Aliases: []string{"t"},
					Usage:   "Resource type (reveal_request, contact, identity); all chains when omitted",
				},
				&cli.StringFlag{
					Name:    "resource-id",
					Aliases: []string{"i"},
					Usage:   "Resource ID, required with --resource-type",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				auditUseCase, err := container.AuditUseCase()
				if err != nil {
					return err
				}

				return commands.RunVerifyAuditChain(
					ctx,
					auditUseCase,
					container.Logger(),
					os.Stdout,
					cmd.String("resource-type"),
					cmd.String("resource-id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "expire-reveal-requests",
			Usage: "Expire overdue pending and approved reveal requests",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   500,
					Usage:   "Maximum number of requests to expire in one run",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Usage:   "Show how many requests would expire without changing them",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				revealUseCase, err := container.RevealUseCase()
				if err != nil {
					return err
				}

				return commands.RunExpireRevealRequests(
					ctx,
					revealUseCase,
					container.Logger(),
					os.Stdout,
					int(cmd.Int("limit")),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "clean-expired-sessions",
			Usage: "Delete sessions and challenges expired longer than the given days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Delete sessions expired more than this many days ago",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Usage:   "Show how many sessions would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				identityUseCase, err := container.IdentityUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanExpiredSessions(
					ctx,
					identityUseCase,
					container.Logger(),
					os.Stdout,
					int(cmd.Int("days")),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
