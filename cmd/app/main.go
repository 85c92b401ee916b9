// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/tillware/posd/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "posd",
		Usage:   "Point-of-sale terminal resilience daemon",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the terminal API server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "sync-sales",
				Usage: "Drain the sale queue to the remote system once",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunSyncSales(ctx)
				},
			},
			{
				Name:  "sync-pricing",
				Usage: "Refresh the local pricing snapshot once",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunSyncPricing(ctx)
				},
			},
			{
				Name:  "list-pending",
				Usage: "List sales still waiting to reach the remote system",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   50,
						Usage:   "Maximum number of sales to list",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunListPending(ctx, cmd.Int("limit"), cmd.String("format"))
				},
			},
			{
				Name:  "drain-prints",
				Usage: "Retry every print job in the persisted retry queue",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunDrainPrints(ctx)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
