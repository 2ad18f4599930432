package main

import (
	"slices"

	"github.com/urfave/cli/v3"
)

// getCommands groups subcommands in the order they appear in --help.
func getCommands(version string) []*cli.Command {
	return slices.Concat(
		getSystemCommands(version),
		getKeyCommands(),
		getMaintenanceCommands(),
	)
}
