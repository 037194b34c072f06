package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lclrke/dawa-dashboard/internal/app"
	"github.com/lclrke/dawa-dashboard/internal/services"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var artist string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Package an artist's ready items into a dataset archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := parseArtistFlag(artist)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app.App) error {
				res, err := a.Services.Exporter.Export(cmd.Context(), ownerID)
				if err != nil {
					return err
				}
				if ctx.jsonOutput {
					return writeJSON(cmd, res)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, buildExportRows(res), nil))
				if !res.StatusUpdated {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: archive uploaded but items are still marked ready")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&artist, "artist", "", "Artist id")
	return cmd
}

func buildExportRows(res services.ExportResult) [][]string {
	return [][]string{
		{"Archive", res.ArchiveKey},
		{"URL", res.ArchiveURL},
		{"Included", strconv.Itoa(res.IncludedCount)},
		{"Skipped", strconv.Itoa(len(res.SkippedIDs))},
		{"Status updated", strconv.FormatBool(res.StatusUpdated)},
	}
}
