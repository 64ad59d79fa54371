package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/compvault/cmd/app/commands"
	"github.com/allisson/compvault/internal/app"
	"github.com/allisson/compvault/internal/config"
	cryptoService "github.com/allisson/compvault/internal/crypto/service"
)

func getCryptoCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "encrypt",
			Usage: "Encrypt a value and print the envelope as JSON",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "plaintext",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Value to encrypt",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.EncryptionUseCase()
				if err != nil {
					return err
				}
				opts, err := container.KDFOptions()
				if err != nil {
					return err
				}

				stdio := commands.DefaultIO()
				password, err := commands.ReadPassword(
					commands.IOTuple{Reader: stdio.Reader, Writer: os.Stderr},
					"Password: ",
				)
				if err != nil {
					return err
				}

				return commands.RunEncrypt(
					ctx,
					useCase,
					opts,
					container.Logger(),
					stdio.Writer,
					cmd.String("plaintext"),
					password,
				)
			},
		},
		{
			Name:  "decrypt",
			Usage: "Decrypt a JSON envelope read from a file or stdin",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "envelope-file",
					Aliases: []string{"e"},
					Usage:   "Path to the envelope JSON (defaults to stdin)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.EncryptionUseCase()
				if err != nil {
					return err
				}
				opts, err := container.KDFOptions()
				if err != nil {
					return err
				}

				var envelope io.Reader = os.Stdin
				if path := cmd.String("envelope-file"); path != "" {
					f, err := os.Open(path)
					if err != nil {
						return err
					}
					defer func() { _ = f.Close() }()
					envelope = f
				} else if os.Getenv(commands.PasswordEnvVar) == "" {
					return fmt.Errorf("%s must be set when the envelope is read from stdin", commands.PasswordEnvVar)
				}

				password, err := commands.ReadPassword(
					commands.IOTuple{Reader: os.Stdin, Writer: os.Stderr},
					"Password: ",
				)
				if err != nil {
					return err
				}

				return commands.RunDecrypt(
					ctx,
					useCase,
					opts,
					container.Logger(),
					envelope,
					commands.DefaultIO().Writer,
					password,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "validate-password",
			Usage: "Score a password without encrypting anything",
			Flags: []cli.Flag{
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.EncryptionUseCase()
				if err != nil {
					return err
				}

				stdio := commands.DefaultIO()
				password, err := commands.ReadPassword(
					commands.IOTuple{Reader: stdio.Reader, Writer: os.Stderr},
					"Password: ",
				)
				if err != nil {
					return err
				}

				return commands.RunValidatePassword(useCase, stdio.Writer, password, cmd.String("format"))
			},
		},
		{
			Name:  "probe-kdf",
			Usage: "Check Argon2id availability and time one derivation with the configured parameters",
			Flags: []cli.Flag{
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				opts, err := container.KDFOptions()
				if err != nil {
					return err
				}

				return commands.RunProbeKDF(
					ctx,
					cryptoService.NewArgon2idDeriver(),
					opts.Params(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
