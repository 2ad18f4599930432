package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/xambitlan/disclosure/cmd/app/commands"
	"github.com/xambitlan/disclosure/internal/app"
	"github.com/xambitlan/disclosure/internal/config"
	cryptoService "github.com/xambitlan/disclosure/internal/crypto/service"
)

func kmsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "kms-provider",
			Usage: "KMS provider (localsecrets, gcpkms, awskms, azurekeyvault, hashivault)",
		},
		&cli.StringFlag{
			Name:  "kms-key-uri",
			Usage: "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
		},
	}
}

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-root-key",
			Usage: "Generate a ROOT_KEY for contact envelope encryption",
			Flags: kmsFlags(),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateRootKey(
					ctx,
					cryptoService.NewKMSService(),
					container.Logger(),
					os.Stdout,
					cmd.String("kms-provider"),
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "create-access-token-secret",
			Usage: "Generate an ACCESS_TOKEN_SECRET for signing reveal access tokens",
			Flags: kmsFlags(),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateAccessTokenSecret(
					ctx,
					cryptoService.NewKMSService(),
					container.Logger(),
					os.Stdout,
					cmd.String("kms-provider"),
					cmd.String("kms-key-uri"),
				)
			},
		},
	}
}
