package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lclrke/dawa-dashboard/internal/app"
)

type commandContext struct {
	jsonOutput bool
	newApp     func(ctx context.Context) (*app.App, error)
}

// withApp wires the application for one command and tears it down after.
func (c *commandContext) withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := c.newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{newApp: app.New}

	rootCmd := &cobra.Command{
		Use:           "trainctl",
		Short:         "Manage training items and dataset exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVar(&ctx.jsonOutput, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(newItemsCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newArchivesCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))

	return rootCmd
}

func parseArtistFlag(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("--artist is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --artist %q: %w", raw, err)
	}
	return id, nil
}
