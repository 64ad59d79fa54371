package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/compvault/cmd/app/commands"
	"github.com/allisson/compvault/internal/app"
	"github.com/allisson/compvault/internal/config"
)

func userIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user-id",
		Aliases:  []string{"u"},
		Required: true,
		Usage:    "Owner of the records",
	}
}

// promptIO prompts on stderr so stdout stays machine readable.
func promptIO() commands.IOTuple {
	return commands.IOTuple{Reader: os.Stdin, Writer: os.Stderr}
}

func getRecordsCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "add-record",
			Usage: "Encrypt a value and store it as a record",
			Flags: []cli.Flag{
				userIDFlag(),
				&cli.StringFlag{
					Name:    "label",
					Aliases: []string{"l"},
					Usage:   "Non-secret label such as 'base-salary-2026'",
				},
				&cli.StringFlag{
					Name:     "plaintext",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Value to encrypt",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.RecordUseCase()
				if err != nil {
					return err
				}

				password, err := commands.ReadPassword(promptIO(), "Password: ")
				if err != nil {
					return err
				}

				return commands.RunAddRecord(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					cmd.String("label"),
					cmd.String("plaintext"),
					password,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-records",
			Usage: "Decrypt and print every record of a user",
			Flags: []cli.Flag{
				userIDFlag(),
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.RecordUseCase()
				if err != nil {
					return err
				}

				password, err := commands.ReadPassword(promptIO(), "Password: ")
				if err != nil {
					return err
				}

				return commands.RunListRecords(
					ctx,
					useCase,
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					password,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "audit-records",
			Usage: "Find records that no longer decrypt and delete them within the failure tolerance",
			Flags: []cli.Flag{
				userIDFlag(),
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Report corrupted records without deleting",
				},
				&cli.IntFlag{
					Name:  "max-failures",
					Usage: "Delete nothing when more records than this fail (defaults to AUDIT_MAX_FAILURES)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.RecordUseCase()
				if err != nil {
					return err
				}

				maxFailures := cfg.AuditMaxFailures
				if cmd.IsSet("max-failures") {
					maxFailures = int(cmd.Int("max-failures"))
				}

				password, err := commands.ReadPassword(promptIO(), "Password: ")
				if err != nil {
					return err
				}

				return commands.RunAuditRecords(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					password,
					cmd.Bool("dry-run"),
					maxFailures,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "change-password",
			Usage: "Re-encrypt every record of a user under a new password",
			Flags: []cli.Flag{
				userIDFlag(),
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.RecordUseCase()
				if err != nil {
					return err
				}
				manager, err := container.SessionManager()
				if err != nil {
					return err
				}

				oldPassword, err := commands.ReadPassword(promptIO(), "Current password: ")
				if err != nil {
					return err
				}
				newPassword, err := commands.ReadNewPassword(promptIO(), "New password: ")
				if err != nil {
					return err
				}

				return commands.RunChangePassword(
					ctx,
					useCase,
					manager,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					oldPassword,
					newPassword,
					cmd.String("format"),
				)
			},
		},
	}
}
