// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/compvault/cmd/app/commands"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:     "compvault",
		Usage:    "Client-side encrypted compensation records",
		Version:  version,
		Commands: getCommands(version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		// The reason has already been written to the output.
		if !errors.Is(err, commands.ErrDecryptionFailed) {
			slog.Error("application error", slog.Any("error", err))
		}
		os.Exit(1)
	}
}
