package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lclrke/dawa-dashboard/internal/app"
	types "github.com/lclrke/dawa-dashboard/internal/domain"
)

func newItemsCommand(ctx *commandContext) *cobra.Command {
	itemsCmd := &cobra.Command{
		Use:   "items",
		Short: "Inspect and manage training items",
	}
	itemsCmd.AddCommand(newItemsListCommand(ctx))
	itemsCmd.AddCommand(newItemsStatusCommand(ctx))
	itemsCmd.AddCommand(newItemTransitionCommand(ctx, "fail", "Mark a ready item as failed"))
	itemsCmd.AddCommand(newItemTransitionCommand(ctx, "requeue", "Return a failed item to ready"))
	return itemsCmd
}

func newItemsListCommand(ctx *commandContext) *cobra.Command {
	var artist string
	var statuses []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an artist's training items, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := parseArtistFlag(artist)
			if err != nil {
				return err
			}
			filter := make([]types.TrainingStatus, 0, len(statuses))
			for _, s := range statuses {
				filter = append(filter, types.TrainingStatus(strings.ToLower(strings.TrimSpace(s))))
			}
			return ctx.withApp(cmd, func(a *app.App) error {
				items, err := a.Services.Items.ListForOwner(cmd.Context(), ownerID, filter...)
				if err != nil {
					return err
				}
				if ctx.jsonOutput {
					return writeJSON(cmd, items)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No training items")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Status", "Source", "Created", "Audio"},
					buildItemRows(items),
					nil,
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&artist, "artist", "", "Artist id")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (ready, exported, failed)")
	return cmd
}

func newItemsStatusCommand(ctx *commandContext) *cobra.Command {
	var artist string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-status item counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := parseArtistFlag(artist)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app.App) error {
				counts, err := a.Services.Items.Summary(cmd.Context(), ownerID)
				if err != nil {
					return err
				}
				if ctx.jsonOutput {
					return writeJSON(cmd, counts)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Status", "Count"},
					buildStatusRows(counts),
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&artist, "artist", "", "Artist id")
	return cmd
}

func newItemTransitionCommand(ctx *commandContext, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <item-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid item id %q: %w", args[0], err)
			}
			return ctx.withApp(cmd, func(a *app.App) error {
				transition := a.Services.Items.MarkFailed
				if verb == "requeue" {
					transition = a.Services.Items.Requeue
				}
				item, err := transition(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput {
					return writeJSON(cmd, item)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %s is now %s\n", item.ID, item.Status)
				return nil
			})
		},
	}
}

func buildItemRows(items []*types.TrainingItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		source := it.SourceFilename
		if source == "" && it.SourceTrackRef != nil {
			source = it.SourceTrackRef.String()
		}
		rows = append(rows, []string{
			it.ID.String(),
			string(it.Status),
			source,
			it.CreatedAt.UTC().Format(time.RFC3339),
			it.AudioPath,
		})
	}
	return rows
}

func buildStatusRows(counts map[types.TrainingStatus]int64) [][]string {
	order := []types.TrainingStatus{types.TrainingStatusReady, types.TrainingStatusExported, types.TrainingStatusFailed}
	seen := map[types.TrainingStatus]bool{}
	rows := make([][]string, 0, len(counts))
	for _, s := range order {
		seen[s] = true
		rows = append(rows, []string{string(s), strconv.FormatInt(counts[s], 10)})
	}
	var extra []string
	for s := range counts {
		if !seen[s] {
			extra = append(extra, string(s))
		}
	}
	sort.Strings(extra)
	for _, s := range extra {
		rows = append(rows, []string{s, strconv.FormatInt(counts[types.TrainingStatus(s)], 10)})
	}
	return rows
}
