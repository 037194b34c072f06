package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lclrke/dawa-dashboard/internal/app"
	"github.com/lclrke/dawa-dashboard/internal/services"
)

func newArchivesCommand(ctx *commandContext) *cobra.Command {
	var artist string
	cmd := &cobra.Command{
		Use:   "archives",
		Short: "List an artist's dataset archives, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := parseArtistFlag(artist)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app.App) error {
				archives, err := a.Services.Exporter.ListArchives(cmd.Context(), ownerID)
				if err != nil {
					return err
				}
				if ctx.jsonOutput {
					return writeJSON(cmd, archives)
				}
				if len(archives) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No archives")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Archive", "Size", "Updated"},
					buildArchiveRows(archives),
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&artist, "artist", "", "Artist id")
	return cmd
}

func buildArchiveRows(archives []services.ArchiveInfo) [][]string {
	rows := make([][]string, 0, len(archives))
	for _, a := range archives {
		updated := ""
		if !a.Updated.IsZero() {
			updated = a.Updated.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{a.Key, formatBytes(a.Size), updated})
	}
	return rows
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
