package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"appbinhub/internal/catalog"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the conversion state of every cataloged application",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			catalogStore := catalog.NewStore(cfg.CatalogPath(), cfg.LockPath())
			cat, err := catalogStore.Load()
			if err != nil {
				return err
			}

			var filter catalog.ConversionStatus
			if statusFilter != "" {
				parsed, ok := catalog.ParseStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q", statusFilter)
				}
				filter = parsed
			}

			rows := statusRows(cat, filter)
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "no applications in catalog")
				return nil
			}

			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Version", "Arch", "Status", "deb", "rpm", "tarball"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d applications, updated %s\n",
				cat.Metadata.TotalApplications,
				cat.Metadata.LastUpdated.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show applications with this conversion status")
	return cmd
}

func statusRows(cat *catalog.Catalog, filter catalog.ConversionStatus) [][]string {
	rows := make([][]string, 0, len(cat.Applications))
	for _, app := range cat.Applications {
		if filter != "" && app.ConversionStatus != filter {
			continue
		}
		rows = append(rows, []string{
			app.ID,
			app.Version,
			string(app.Architecture),
			string(app.ConversionStatus),
			artifactCell(app, catalog.FormatDeb),
			artifactCell(app, catalog.FormatRPM),
			artifactCell(app, catalog.FormatTarball),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	return rows
}

func artifactCell(app catalog.ApplicationRecord, format catalog.Format) string {
	artifact, ok := app.ConvertedPackages[format]
	if !ok {
		return "-"
	}
	switch artifact.Status {
	case catalog.ArtifactAvailable:
		return artifact.Size
	case catalog.ArtifactPending:
		return "pending"
	case catalog.ArtifactSkippedArch:
		return "skipped"
	case catalog.ArtifactToolUnavailable:
		return "no tool"
	default:
		return string(artifact.Status)
	}
}
