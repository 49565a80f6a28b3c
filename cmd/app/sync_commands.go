package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pensionworks/pensync/cmd/app/commands"
	"github.com/pensionworks/pensync/internal/app"
	"github.com/pensionworks/pensync/internal/config"
)

func getSyncCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "sync",
			Usage: "Run a single warehouse sync and exit",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "branch-codes",
					Aliases: []string{"b"},
					Usage:   "Comma-separated branch codes to restrict the run (omit for full sync)",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Classify records without writing anything",
				},
				&cli.BoolFlag{
					Name:    "record-changes",
					Aliases: []string{"c"},
					Value:   false,
					Usage:   "Record per-field change history for updated records",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.SyncUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize sync use case: %w", err)
				}

				return commands.RunSync(
					ctx,
					useCase,
					container.Logger(),
					os.Stdout,
					cmd.String("branch-codes"),
					cmd.Bool("dry-run"),
					cmd.Bool("record-changes"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "preview",
			Usage: "Fetch raw warehouse rows without writing anything",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "branch-codes",
					Aliases: []string{"b"},
					Usage:   "Comma-separated branch codes to restrict the preview",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   10,
					Usage:   "Maximum number of rows to fetch",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.SyncUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize sync use case: %w", err)
				}

				return commands.RunPreview(
					ctx,
					useCase,
					container.Logger(),
					os.Stdout,
					cmd.String("branch-codes"),
					cmd.Int("limit"),
					cmd.String("format"),
				)
			},
		},
	}
}
