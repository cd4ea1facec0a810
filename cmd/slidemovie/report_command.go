package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"slidemovie/internal/report"
)

func newReportCommand(cmdCtx *commandContext) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show slide durations and write the CSV report",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, proj, err := cmdCtx.resolveProject("")
			if err != nil {
				return err
			}
			store, err := cmdCtx.openStore(proj)
			if err != nil {
				return err
			}

			rows := report.Rows(store)
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintf(out, "No build state recorded for project %s yet\n", proj.Name)
				return nil
			}

			fmt.Fprintln(out, renderDurationTable(rows))
			fmt.Fprintf(out, "Total length: %s\n", formatSeconds(report.TotalSec(rows)))

			target := strings.TrimSpace(csvPath)
			if target == "" {
				target = proj.ReportPath
			}
			if err := report.WriteCSV(target, rows); err != nil {
				return err
			}
			fmt.Fprintf(out, "Report written to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV output path (defaults to video_length.csv beside the script)")
	return cmd
}
